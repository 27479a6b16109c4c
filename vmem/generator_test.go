package vmem

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func testGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		ProcessesMin: 3,
		ProcessesMax: 6,
		BurstsMin:    5,
		BurstsMax:    10,
		BurstLenMin:  1,
		BurstLenMax:  4,
		PagesMin:     2,
		PagesMax:     9,
	}
}

func TestGenerateWorkloadRanges(t *testing.T) {
	cfg := testGeneratorConfig()
	processes, err := GenerateWorkload(rand.New(rand.NewSource(3)), cfg)
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(processes), cfg.ProcessesMin)
	require.LessOrEqual(t, len(processes), cfg.ProcessesMax)

	for _, p := range processes {
		bursts := p.Bursts()
		require.GreaterOrEqual(t, len(bursts), cfg.BurstsMin)
		require.LessOrEqual(t, len(bursts), cfg.BurstsMax)
		for _, burst := range bursts {
			require.GreaterOrEqual(t, len(burst), cfg.BurstLenMin)
			require.LessOrEqual(t, len(burst), cfg.BurstLenMax)
		}
		require.LessOrEqual(t, p.DistinctPageCount(), cfg.PagesMax)
	}
}

func TestGenerateWorkloadDisjointPages(t *testing.T) {
	processes, err := GenerateWorkload(rand.New(rand.NewSource(11)), testGeneratorConfig())
	require.NoError(t, err)

	for i := 1; i < len(processes); i++ {
		prev := processes[i-1].UsedPages()
		cur := processes[i].UsedPages()
		require.Less(t, prev[len(prev)-1], cur[0], "process %d overlaps process %d", i, i-1)
	}
}

func TestGenerateWorkloadSeeded(t *testing.T) {
	a, err := GenerateWorkload(rand.New(rand.NewSource(5)), testGeneratorConfig())
	require.NoError(t, err)
	b, err := GenerateWorkload(rand.New(rand.NewSource(5)), testGeneratorConfig())
	require.NoError(t, err)

	require.Equal(t, len(a), len(b))
	for i := range a {
		require.Equal(t, a[i].Bursts(), b[i].Bursts())
	}
}

func TestGenerateWorkloadInvalidConfig(t *testing.T) {
	cfg := testGeneratorConfig()
	cfg.PagesMin = 0

	_, err := GenerateWorkload(rand.New(rand.NewSource(1)), cfg)
	require.True(t, IsErrorCode(err, ErrCodeInvalidParameters))
}

func TestRandomizeConfig(t *testing.T) {
	base := DefaultConfig()
	ranges := DefaultParameterRanges()
	rng := rand.New(rand.NewSource(9))

	for i := 0; i < 50; i++ {
		cfg := RandomizeConfig(rng, base, ranges)
		require.NoError(t, cfg.Validate())
		require.GreaterOrEqual(t, cfg.MemorySize, ranges.MemoryMin)
		require.LessOrEqual(t, cfg.MemorySize, ranges.MemoryMax)
		require.LessOrEqual(t, cfg.PFF.MinFaults, cfg.PFF.MaxFaults)
		require.GreaterOrEqual(t, cfg.WSS.Period, ranges.WSSPeriodMin)
	}
	require.Equal(t, 1000, base.MemorySize, "base config must not change")
}

func TestRandomizeConfigNormalizesRanges(t *testing.T) {
	ranges := ParameterRanges{
		MemoryMin: 0,
		MemoryMax: 0,
		PFFMinMin: 20,
		PFFMinMax: 10,
		PFFMaxMin: 5,
		PFFMaxMax: 1,
	}

	cfg := RandomizeConfig(rand.New(rand.NewSource(1)), DefaultConfig(), ranges)
	require.Equal(t, 1, cfg.MemorySize)
	require.Equal(t, 20, cfg.PFF.MinFaults)
	require.Equal(t, 20, cfg.PFF.MaxFaults)
	require.Equal(t, 1, cfg.PFF.Period)
	require.Equal(t, 1, cfg.WSS.Period)
	require.NoError(t, cfg.Validate())
}
