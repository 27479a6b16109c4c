package vmem

import (
	"log/slog"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Histogram tracks a distribution of samples with percentile support
type Histogram struct {
	samples []float64
	mu      sync.RWMutex
	maxSize int  // Maximum samples to retain
	sorted  bool // Track if samples are sorted
}

// NewHistogram creates a new histogram with a max sample size
func NewHistogram(maxSize int) *Histogram {
	if maxSize <= 0 {
		maxSize = 10000
	}
	return &Histogram{
		samples: make([]float64, 0, maxSize),
		maxSize: maxSize,
		sorted:  true,
	}
}

// Record adds a sample, dropping the oldest one when full
func (h *Histogram) Record(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.samples) >= h.maxSize {
		copy(h.samples, h.samples[1:])
		h.samples = h.samples[:len(h.samples)-1]
	}

	h.samples = append(h.samples, v)
	h.sorted = false
}

func (h *Histogram) sortLocked() {
	if !h.sorted {
		sort.Float64s(h.samples)
		h.sorted = true
	}
}

// Percentile calculates the given percentile (0-100) with linear interpolation
func (h *Histogram) Percentile(p float64) float64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.samples) == 0 {
		return 0
	}
	h.sortLocked()

	rank := (p / 100.0) * float64(len(h.samples)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))

	if lower == upper {
		return h.samples[lower]
	}

	weight := rank - float64(lower)
	return h.samples[lower]*(1-weight) + h.samples[upper]*weight
}

// Mean calculates the average sample
func (h *Histogram) Mean() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.meanLocked()
}

func (h *Histogram) meanLocked() float64 {
	if len(h.samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range h.samples {
		sum += v
	}
	return sum / float64(len(h.samples))
}

// Variance returns the population variance of the samples
func (h *Histogram) Variance() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.samples) == 0 {
		return 0
	}
	mean := h.meanLocked()
	sum := 0.0
	for _, v := range h.samples {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(h.samples))
}

// Min returns the smallest sample
func (h *Histogram) Min() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.samples) == 0 {
		return 0
	}
	min := h.samples[0]
	for _, v := range h.samples {
		if v < min {
			min = v
		}
	}
	return min
}

// Max returns the largest sample
func (h *Histogram) Max() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.samples) == 0 {
		return 0
	}
	max := h.samples[0]
	for _, v := range h.samples {
		if v > max {
			max = v
		}
	}
	return max
}

// Count returns the number of samples
func (h *Histogram) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.samples)
}

// HistogramSnapshot holds point-in-time statistics of a histogram
type HistogramSnapshot struct {
	Count    int
	Min      float64
	Max      float64
	Mean     float64
	Variance float64
	StdDev   float64
	P95      float64
}

// Snapshot captures current histogram statistics
func (h *Histogram) Snapshot() HistogramSnapshot {
	variance := h.Variance()
	return HistogramSnapshot{
		Count:    h.Count(),
		Min:      h.Min(),
		Max:      h.Max(),
		Mean:     h.Mean(),
		Variance: variance,
		StdDev:   math.Sqrt(variance),
		P95:      h.Percentile(95),
	}
}

// Stats summarizes the per-process fault counts of one policy run
type Stats struct {
	Sum      int     `json:"sum"`
	Mean     float64 `json:"mean"`
	Median   int     `json:"median"`
	StdDev   float64 `json:"std_deviation"`
	Variance float64 `json:"variance"`
	Min      int     `json:"min"`
	Max      int     `json:"max"`
	P95      float64 `json:"p95"`
}

// ComputeStats summarizes fault counts. The median of an even-sized set is
// the mean of the two middle values rounded down. Variance and standard
// deviation are taken over the whole population (divided by n).
func ComputeStats(faults []int) Stats {
	if len(faults) == 0 {
		return Stats{}
	}

	h := NewHistogram(len(faults))
	sum := 0
	for _, f := range faults {
		h.Record(float64(f))
		sum += f
	}

	sorted := append([]int(nil), faults...)
	sort.Ints(sorted)
	mid := len(sorted) / 2
	median := sorted[mid]
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	}

	snap := h.Snapshot()
	return Stats{
		Sum:      sum,
		Mean:     snap.Mean,
		Median:   median,
		StdDev:   snap.StdDev,
		Variance: snap.Variance,
		Min:      int(snap.Min),
		Max:      int(snap.Max),
		P95:      snap.P95,
	}
}

// Metrics tracks allocator events of one policy run
type Metrics struct {
	pageFaults    atomic.Uint64
	pageHits      atomic.Uint64
	selfEvictions atomic.Uint64
	steals        atomic.Uint64
	halts         atomic.Uint64
	resumes       atomic.Uint64
	deferrals     atomic.Uint64
	completions   atomic.Uint64

	// Peak number of occupied frames
	peakResident atomic.Uint64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker
func NewMetrics() *Metrics {
	return &Metrics{
		startTime: time.Now(),
	}
}

func (m *Metrics) RecordFault() {
	m.pageFaults.Add(1)
}

func (m *Metrics) RecordHit() {
	m.pageHits.Add(1)
}

func (m *Metrics) RecordSelfEviction() {
	m.selfEvictions.Add(1)
}

func (m *Metrics) RecordSteal() {
	m.steals.Add(1)
}

func (m *Metrics) RecordHalt() {
	m.halts.Add(1)
}

func (m *Metrics) RecordResume() {
	m.resumes.Add(1)
}

func (m *Metrics) RecordDeferral() {
	m.deferrals.Add(1)
}

func (m *Metrics) RecordCompletion() {
	m.completions.Add(1)
}

// RecordResident raises the peak resident frame count if n exceeds it
func (m *Metrics) RecordResident(n int) {
	for {
		peak := m.peakResident.Load()
		if uint64(n) <= peak || m.peakResident.CompareAndSwap(peak, uint64(n)) {
			return
		}
	}
}

// Getters

func (m *Metrics) GetFaults() uint64 {
	return m.pageFaults.Load()
}

func (m *Metrics) GetHits() uint64 {
	return m.pageHits.Load()
}

func (m *Metrics) GetHitRate() float64 {
	hits := m.pageHits.Load()
	total := hits + m.pageFaults.Load()
	if total == 0 {
		return 0.0
	}
	return float64(hits) / float64(total)
}

func (m *Metrics) GetSelfEvictions() uint64 {
	return m.selfEvictions.Load()
}

func (m *Metrics) GetSteals() uint64 {
	return m.steals.Load()
}

func (m *Metrics) GetHalts() uint64 {
	return m.halts.Load()
}

func (m *Metrics) GetResumes() uint64 {
	return m.resumes.Load()
}

func (m *Metrics) GetDeferrals() uint64 {
	return m.deferrals.Load()
}

func (m *Metrics) GetCompletions() uint64 {
	return m.completions.Load()
}

func (m *Metrics) GetPeakResident() uint64 {
	return m.peakResident.Load()
}

func (m *Metrics) GetUptime() time.Duration {
	return time.Since(m.startTime)
}

// LogMetrics logs all metrics using structured logging
func (m *Metrics) LogMetrics(logger *slog.Logger, policy string) {
	logger.Info("Allocator metrics",
		slog.String("policy", policy),
		slog.Group("references",
			slog.Uint64("faults", m.GetFaults()),
			slog.Uint64("hits", m.GetHits()),
			slog.Float64("hit_rate", m.GetHitRate()),
		),
		slog.Group("frames",
			slog.Uint64("self_evictions", m.GetSelfEvictions()),
			slog.Uint64("steals", m.GetSteals()),
			slog.Uint64("peak_resident", m.GetPeakResident()),
		),
		slog.Group("scheduling",
			slog.Uint64("halts", m.GetHalts()),
			slog.Uint64("resumes", m.GetResumes()),
			slog.Uint64("deferrals", m.GetDeferrals()),
			slog.Uint64("completions", m.GetCompletions()),
		),
		slog.Duration("uptime", m.GetUptime()),
	)
}
