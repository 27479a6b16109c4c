package vmem

import (
	"fmt"
	"log/slog"
)

// faultWindow is a ring of the last period fault/hit bits of a process
type faultWindow struct {
	bits   []bool
	head   int
	size   int
	faults int
}

func newFaultWindow(period int) *faultWindow {
	return &faultWindow{bits: make([]bool, period)}
}

// push records one access, forgetting the oldest once the window is full
func (w *faultWindow) push(fault bool) {
	if w.size == len(w.bits) {
		if w.bits[w.head] {
			w.faults--
		}
		w.size--
		w.head = (w.head + 1) % len(w.bits)
	}
	w.bits[(w.head+w.size)%len(w.bits)] = fault
	w.size++
	if fault {
		w.faults++
	}
}

// PageFaultFrequency grows a process's desired space while its recent fault
// count is above maxFaults and shrinks it while below minFaults. Frames owed
// by shrunken processes are reclaimed lazily by processes that want more.
type PageFaultFrequency struct {
	memorySize int
	minFaults  int
	maxFaults  int
	period     int
	logger     *slog.Logger
	metrics    *Metrics
}

// NewPageFaultFrequency creates a PFF allocator.
// Fault thresholds are counted over a sliding window of period accesses.
func NewPageFaultFrequency(memorySize, minFaults, maxFaults, period int, opts ...Option) (*PageFaultFrequency, error) {
	if memorySize <= 0 {
		return nil, ErrInvalidMemorySize("NewPageFaultFrequency")
	}
	if period <= 0 {
		return nil, ErrInvalidParameters("NewPageFaultFrequency", "period must be greater than 0")
	}
	if minFaults < 0 || maxFaults < minFaults {
		return nil, ErrInvalidParameters("NewPageFaultFrequency",
			fmt.Sprintf("fault thresholds must satisfy 0 <= min <= max, got min=%d max=%d", minFaults, maxFaults))
	}
	o := buildOptions(opts)
	return &PageFaultFrequency{
		memorySize: memorySize,
		minFaults:  minFaults,
		maxFaults:  maxFaults,
		period:     period,
		logger:     o.logger,
		metrics:    o.metrics,
	}, nil
}

// Name returns the policy name
func (pff *PageFaultFrequency) Name() string {
	return "PageFaultFrequency"
}

// Metrics returns the metrics the engine records into
func (pff *PageFaultFrequency) Metrics() *Metrics {
	return pff.metrics
}

// Emulate visits processes round robin, one burst per visit, until every
// trace is exhausted.
func (pff *PageFaultFrequency) Emulate(traces []Trace) ([]int, error) {
	r := newFeedbackRun(pff.Name(), pff.memorySize, traces, pff.metrics, pff.logger)
	windows := make([]*faultWindow, len(traces))
	for i := range windows {
		windows[i] = newFaultWindow(pff.period)
	}

	for r.done < len(r.processes) {
		progressed := false
		for _, p := range r.processes {
			if p.finished {
				continue
			}
			// A process without frames waits until one is free or owed.
			if p.usedSpace == 0 && r.pool.Free() == 0 && r.memoryToTake == 0 {
				pff.metrics.RecordDeferral()
				continue
			}
			progressed = true

			if burst, ok := p.trace.NextBurst(); ok {
				for _, page := range burst {
					if err := pff.access(r, p, windows[p.id], page); err != nil {
						return nil, err
					}
				}
			}
			if p.trace.IsEmpty() {
				if err := r.finish(p); err != nil {
					return nil, err
				}
			}
			if err := r.checkInvariants(); err != nil {
				return nil, err
			}
		}

		if r.done < len(r.processes) && !progressed {
			return nil, ErrStarvation("PageFaultFrequency.Emulate", pff.firstRunning(r))
		}
	}

	return r.faults, nil
}

// access handles one page reference of p and adapts its desired space
func (pff *PageFaultFrequency) access(r *feedbackRun, p *feedbackProcess, window *faultWindow, page PageID) error {
	fault := !r.pool.Contains(FrameKey{Owner: p.id, Page: page})
	if fault {
		if err := pff.fault(r, p, page); err != nil {
			return err
		}
	} else {
		pff.metrics.RecordHit()
	}
	r.touch(p, page)

	window.push(fault)
	r.update(p, func() {
		if window.faults > pff.maxFaults && p.desiredSpace < pff.memorySize {
			p.desiredSpace++
		}
		if window.faults < pff.minFaults && p.desiredSpace > 1 {
			p.desiredSpace--
		}
	})
	return nil
}

// fault brings page in for p, in priority order: a free frame, a frame owed
// by another process, or p's own least recently used frame.
//
// A free frame is taken even when p already holds its desired space, and the
// surplus is owed back once the pool fills up. A process therefore never
// evicts its own page while a frame is free, which yields fewer faults than
// admitting from free memory only below the desired space.
func (pff *PageFaultFrequency) fault(r *feedbackRun, p *feedbackProcess, page PageID) error {
	wantsMore := p.desiredSpace > p.usedSpace
	switch {
	case r.pool.Free() > 0:
		return r.admit(p, page)
	case wantsMore && r.memoryToTake > 0:
		return r.steal(p, page)
	case p.usedSpace > 0:
		return r.evictOwn(p, page)
	default:
		return ErrStarvation("PageFaultFrequency.fault", p.id)
	}
}

func (pff *PageFaultFrequency) firstRunning(r *feedbackRun) int {
	for _, p := range r.processes {
		if !p.finished {
			return p.id
		}
	}
	return noProcess
}
