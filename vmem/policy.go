package vmem

import (
	"log/slog"
	"strings"
)

// AllocationPolicy distributes a bounded pool of frames among processes.
// Emulate consumes every trace and returns the fault count of each process,
// aligned with the input order.
type AllocationPolicy interface {
	Name() string
	Emulate(traces []Trace) ([]int, error)
}

// PolicyKind names a frame allocation policy
type PolicyKind string

const (
	PolicyEqual              PolicyKind = "equal"
	PolicyProportional       PolicyKind = "proportional"
	PolicyPageFaultFrequency PolicyKind = "pff"
	PolicyWorkingSetSize     PolicyKind = "wss"
)

// AllPolicies lists every policy in report order
var AllPolicies = []PolicyKind{
	PolicyEqual,
	PolicyProportional,
	PolicyPageFaultFrequency,
	PolicyWorkingSetSize,
}

// ParsePolicyKind accepts a short or long policy name
func ParsePolicyKind(name string) (PolicyKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "equal", "equalallocation", "equal-allocation":
		return PolicyEqual, nil
	case "proportional":
		return PolicyProportional, nil
	case "pff", "pagefaultfrequency", "page-fault-frequency":
		return PolicyPageFaultFrequency, nil
	case "wss", "workingsetsize", "working-set-size":
		return PolicyWorkingSetSize, nil
	}
	return "", ErrUnknownPolicy("ParsePolicyKind", name)
}

type engineOptions struct {
	logger  *slog.Logger
	metrics *Metrics
}

// Option configures a policy engine
type Option func(*engineOptions)

// WithLogger sets the logger engines report completions, halts and resumes to
func WithLogger(logger *slog.Logger) Option {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// WithMetrics sets the metrics an engine records its events into
func WithMetrics(metrics *Metrics) Option {
	return func(o *engineOptions) {
		o.metrics = metrics
	}
}

func buildOptions(opts []Option) engineOptions {
	o := engineOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.metrics == nil {
		o.metrics = NewMetrics()
	}
	return o
}

// NewPolicy creates an allocation policy of the given kind from cfg
func NewPolicy(kind PolicyKind, cfg *Config, opts ...Option) (AllocationPolicy, error) {
	switch kind {
	case PolicyEqual:
		return NewEqualAllocation(cfg.MemorySize, opts...)
	case PolicyProportional:
		return NewProportional(cfg.MemorySize, opts...)
	case PolicyPageFaultFrequency:
		return NewPageFaultFrequency(cfg.MemorySize, cfg.PFF.MinFaults, cfg.PFF.MaxFaults, cfg.PFF.Period, opts...)
	case PolicyWorkingSetSize:
		return NewWorkingSetSize(cfg.MemorySize, cfg.WSS.Period, opts...)
	default:
		return nil, ErrUnknownPolicy("NewPolicy", string(kind))
	}
}
