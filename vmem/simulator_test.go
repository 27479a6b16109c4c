package vmem

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSimulatorRun(t *testing.T) {
	processes := smallWorkload(7)

	var buf bytes.Buffer
	cfg := testConfig(12)
	cfg.EnableMetrics = true
	sim, err := NewSimulator(cfg, NewLogger("info", &buf))
	require.NoError(t, err)

	results, err := sim.Run(processes)
	require.NoError(t, err)
	require.Len(t, results, len(AllPolicies))

	expectedNames := []string{"EqualAllocation", "Proportional", "PageFaultFrequency", "WorkingSetSize"}
	for i, r := range results {
		require.Equal(t, expectedNames[i], r.Name)
		require.Len(t, r.Faults, len(processes))
		require.Equal(t, ComputeStats(r.Faults), r.Stats)
		require.NotNil(t, r.Metrics)
		require.Equal(t, uint64(r.Stats.Sum), r.Metrics.GetFaults())
	}

	// The caller's processes are never consumed
	for _, p := range processes {
		require.False(t, p.IsEmpty())
	}

	out := buf.String()
	require.True(t, strings.Contains(out, "simulation started"), out)
	require.True(t, strings.Contains(out, "Allocator metrics"), out)
}

func TestSimulatorParallelMatchesSequential(t *testing.T) {
	processes := smallWorkload(8)
	logger := NewLogger("error", &bytes.Buffer{})

	parallel := testConfig(10)
	parallel.Parallel = true
	sequential := parallel.Clone()
	sequential.Parallel = false

	simA, err := NewSimulator(parallel, logger)
	require.NoError(t, err)
	simB, err := NewSimulator(sequential, logger)
	require.NoError(t, err)

	a, err := simA.Run(processes)
	require.NoError(t, err)
	b, err := simB.Run(processes)
	require.NoError(t, err)

	for i := range a {
		require.Equal(t, a[i].Name, b[i].Name)
		require.Equal(t, a[i].Faults, b[i].Faults)
	}
}

func TestSimulatorPolicySubset(t *testing.T) {
	cfg := testConfig(5)
	cfg.Policies = []string{"wss", "equal"}

	sim, err := NewSimulator(cfg, nil)
	require.NoError(t, err)

	results, err := sim.Run([]*Process{NewProcess([]Burst{{1, 2}, {2, 3}})})
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "WorkingSetSize", results[0].Name)
	require.Equal(t, "EqualAllocation", results[1].Name)
	require.Equal(t, []int{3}, results[1].Faults)
}

func TestNewSimulatorErrors(t *testing.T) {
	cfg := testConfig(0)
	_, err := NewSimulator(cfg, nil)
	require.True(t, IsErrorCode(err, ErrCodeInvalidMemorySize))

	cfg = testConfig(4)
	cfg.Policies = []string{"random"}
	_, err = NewSimulator(cfg, nil)
	require.True(t, IsErrorCode(err, ErrCodeUnknownPolicy))

	cfg.Policies = nil
	_, err = NewSimulator(cfg, nil)
	require.True(t, IsErrorCode(err, ErrCodeInvalidParameters))
}

func TestSummarize(t *testing.T) {
	summary := Summarize([]*Process{
		NewProcess([]Burst{{1, 2}, {2}}),
		NewProcess(nil),
		NewProcess([]Burst{{5, 6, 7}}),
	})

	require.Equal(t, WorkloadSummary{
		Processes:      3,
		Pages:          5,
		Bursts:         3,
		References:     6,
		EmptyProcesses: 1,
		LargestProcess: 3,
	}, summary)
}
