package vmem

import "log/slog"

// Proportional gives each active process a share of memory proportional to
// its distinct page count, recomputed every time a process finishes.
type Proportional struct {
	memorySize int
	logger     *slog.Logger
	metrics    *Metrics
}

// NewProportional creates a proportional allocator over memorySize frames
func NewProportional(memorySize int, opts ...Option) (*Proportional, error) {
	if memorySize <= 0 {
		return nil, ErrInvalidMemorySize("NewProportional")
	}
	o := buildOptions(opts)
	return &Proportional{
		memorySize: memorySize,
		logger:     o.logger,
		metrics:    o.metrics,
	}, nil
}

// Name returns the policy name
func (pa *Proportional) Name() string {
	return "Proportional"
}

// Metrics returns the metrics the engine records into
func (pa *Proportional) Metrics() *Metrics {
	return pa.metrics
}

// Emulate runs every trace to completion
func (pa *Proportional) Emulate(traces []Trace) ([]int, error) {
	pool := NewFramePool(pa.memorySize)
	faults := make([]int, len(traces))

	processes := make([]*quotaProcess, len(traces))
	done := 0
	for i, t := range traces {
		processes[i] = newQuotaProcess(i, t, 0)
		if t.IsEmpty() {
			processes[i].finished = true
			done++
		}
	}
	pa.assignQuotas(processes)

	for done < len(processes) {
		progressed := false
		for _, p := range processes {
			if p.finished {
				continue
			}
			n, result, err := p.step(pool, pa.metrics)
			if err != nil {
				return nil, err
			}
			faults[p.id] += n
			if result != stepNoMemory {
				progressed = true
			}
			if !p.finished {
				continue
			}

			done++
			pa.metrics.RecordCompletion()
			pa.logger.Debug("process finished",
				slog.String("policy", pa.Name()),
				slog.Int("process", p.id),
				slog.Int("faults", faults[p.id]))

			pa.assignQuotas(processes)
			for _, q := range processes {
				if q.finished {
					continue
				}
				if err := q.trim(pool, pa.metrics); err != nil {
					return nil, err
				}
			}
		}

		if done < len(processes) && !progressed {
			return nil, ErrStarvation("Proportional.Emulate", firstActive(processes))
		}
	}

	return faults, nil
}

// assignQuotas recomputes quotas over the processes that are still running
func (pa *Proportional) assignQuotas(processes []*quotaProcess) {
	weights := make([]int, len(processes))
	for i, p := range processes {
		if !p.finished {
			weights[i] = p.trace.DistinctPageCount()
		}
	}
	for i, quota := range Distribute(pa.memorySize, weights) {
		processes[i].availableSize = quota
	}
}

func firstActive(processes []*quotaProcess) int {
	for _, p := range processes {
		if !p.finished {
			return p.id
		}
	}
	return -1
}
