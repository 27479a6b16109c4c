package vmem

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Result is the outcome of one policy over a workload
type Result struct {
	Name    string        `json:"name"`
	Faults  []int         `json:"faults"`
	Stats   Stats         `json:"stats"`
	Elapsed time.Duration `json:"elapsed"`
	Metrics *Metrics      `json:"-"`
}

// WorkloadSummary describes a workload before it is simulated. Pages is the
// sum of distinct pages over all processes and LargestProcess the most
// distinct pages of a single one.
type WorkloadSummary struct {
	Processes      int `json:"processes"`
	Pages          int `json:"pages"`
	Bursts         int `json:"bursts"`
	References     int `json:"references"`
	EmptyProcesses int `json:"empty_processes"`
	LargestProcess int `json:"largest_process"`
}

// Summarize computes the summary of a workload
func Summarize(processes []*Process) WorkloadSummary {
	summary := WorkloadSummary{Processes: len(processes)}
	for _, p := range processes {
		pages := p.DistinctPageCount()
		summary.Pages += pages
		summary.Bursts += len(p.Bursts())
		summary.References += p.TotalReferences()
		summary.LargestProcess = max(summary.LargestProcess, pages)
		if len(p.Bursts()) == 0 {
			summary.EmptyProcesses++
		}
	}
	return summary
}

// Simulator runs the configured policies over one workload
type Simulator struct {
	config *Config
	kinds  []PolicyKind
	logger *slog.Logger
}

// NewSimulator creates a simulator from a validated configuration
func NewSimulator(config *Config, logger *slog.Logger) (*Simulator, error) {
	if config.MemorySize <= 0 {
		return nil, ErrInvalidMemorySize("NewSimulator")
	}
	kinds, err := config.PolicyKinds()
	if err != nil {
		return nil, err
	}
	if len(kinds) == 0 {
		return nil, ErrInvalidParameters("NewSimulator", "no policy selected")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Simulator{
		config: config.Clone(),
		kinds:  kinds,
		logger: logger,
	}, nil
}

// Run emulates every policy on its own copy of the processes. Results are
// returned in policy order. If any engine fails, the errors of all failed
// engines are joined and no result is returned.
func (s *Simulator) Run(processes []*Process) ([]Result, error) {
	summary := Summarize(processes)
	s.logger.Info("simulation started",
		slog.Int("memory_size", s.config.MemorySize),
		slog.Int("processes", summary.Processes),
		slog.Int("pages", summary.Pages),
		slog.Int("references", summary.References),
		slog.Bool("parallel", s.config.Parallel))

	results := make([]Result, len(s.kinds))
	errs := make([]error, len(s.kinds))

	if s.config.Parallel {
		var wg sync.WaitGroup
		for i, kind := range s.kinds {
			wg.Add(1)
			go func(i int, kind PolicyKind) {
				defer wg.Done()
				results[i], errs[i] = s.runOne(kind, CloneTraces(processes))
			}(i, kind)
		}
		wg.Wait()
	} else {
		for i, kind := range s.kinds {
			results[i], errs[i] = s.runOne(kind, CloneTraces(processes))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return results, nil
}

// runOne emulates a single policy with its own metrics
func (s *Simulator) runOne(kind PolicyKind, traces []Trace) (Result, error) {
	metrics := NewMetrics()
	policy, err := NewPolicy(kind, s.config,
		WithLogger(s.logger),
		WithMetrics(metrics))
	if err != nil {
		return Result{}, err
	}

	start := time.Now()
	faults, err := policy.Emulate(traces)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", policy.Name(), err)
	}
	elapsed := time.Since(start)

	stats := ComputeStats(faults)
	s.logger.Info("policy finished",
		slog.String("policy", policy.Name()),
		slog.Int("faults", stats.Sum),
		slog.Duration("elapsed", elapsed))
	if s.config.EnableMetrics {
		metrics.LogMetrics(s.logger, policy.Name())
	}

	return Result{
		Name:    policy.Name(),
		Faults:  faults,
		Stats:   stats,
		Elapsed: elapsed,
		Metrics: metrics,
	}, nil
}
