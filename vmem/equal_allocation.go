package vmem

import (
	"log/slog"
	"slices"
)

// EqualAllocation splits memory equally among a bounded number of slots.
// Each slot runs one process to completion and then hands its quota to the
// next process that has not started yet.
type EqualAllocation struct {
	memorySize int
	logger     *slog.Logger
	metrics    *Metrics
}

// NewEqualAllocation creates an equal-split allocator over memorySize frames
func NewEqualAllocation(memorySize int, opts ...Option) (*EqualAllocation, error) {
	if memorySize <= 0 {
		return nil, ErrInvalidMemorySize("NewEqualAllocation")
	}
	o := buildOptions(opts)
	return &EqualAllocation{
		memorySize: memorySize,
		logger:     o.logger,
		metrics:    o.metrics,
	}, nil
}

// Name returns the policy name
func (ea *EqualAllocation) Name() string {
	return "EqualAllocation"
}

// Metrics returns the metrics the engine records into
func (ea *EqualAllocation) Metrics() *Metrics {
	return ea.metrics
}

// Emulate runs every trace to completion
func (ea *EqualAllocation) Emulate(traces []Trace) ([]int, error) {
	pool := NewFramePool(ea.memorySize)
	faults := make([]int, len(traces))

	nextToStart := min(len(traces), ea.memorySize)
	slots := make([]*quotaProcess, nextToStart)
	for i := range slots {
		slots[i] = newQuotaProcess(i, traces[i], EqualShare(ea.memorySize, nextToStart, i))
	}

	for len(slots) > 0 {
		progressed := false
		for i := 0; i < len(slots); {
			p := slots[i]
			n, result, err := p.step(pool, ea.metrics)
			if err != nil {
				return nil, err
			}
			faults[p.id] += n
			if result != stepNoMemory {
				progressed = true
			}

			if !p.finished {
				i++
				continue
			}

			ea.metrics.RecordCompletion()
			ea.logger.Debug("process finished",
				slog.String("policy", ea.Name()),
				slog.Int("process", p.id),
				slog.Int("faults", faults[p.id]))

			if nextToStart < len(traces) {
				// The vacated slot keeps its quota for the next process.
				slots[i] = newQuotaProcess(nextToStart, traces[nextToStart], p.availableSize)
				nextToStart++
				continue
			}

			slots = slices.Delete(slots, i, i+1)
			for j, s := range slots {
				s.availableSize = EqualShare(ea.memorySize, len(slots), j)
				if err := s.trim(pool, ea.metrics); err != nil {
					return nil, err
				}
			}
		}

		if len(slots) > 0 && !progressed {
			return nil, ErrStarvation("EqualAllocation.Emulate", slots[0].id)
		}
	}

	return faults, nil
}
