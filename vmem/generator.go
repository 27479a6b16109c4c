package vmem

import "math/rand"

// intn draws uniformly from the inclusive range [lo, hi]
func intn(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}

// GenerateWorkload builds a random set of processes. Each process references
// pages uniformly from its own contiguous range; ranges of different
// processes never overlap.
func GenerateWorkload(rng *rand.Rand, cfg GeneratorConfig) ([]*Process, error) {
	if err := cfg.Validate(); err != nil {
		return nil, ErrInvalidParameters("GenerateWorkload", err.Error())
	}

	count := intn(rng, cfg.ProcessesMin, cfg.ProcessesMax)
	processes := make([]*Process, count)

	offset := 0
	for i := range processes {
		pages := intn(rng, cfg.PagesMin, cfg.PagesMax)
		bursts := make([]Burst, intn(rng, cfg.BurstsMin, cfg.BurstsMax))
		for b := range bursts {
			burst := make(Burst, intn(rng, cfg.BurstLenMin, cfg.BurstLenMax))
			for r := range burst {
				burst[r] = PageID(offset + rng.Intn(pages))
			}
			bursts[b] = burst
		}
		processes[i] = NewProcess(bursts)
		offset += pages
	}

	return processes, nil
}

// ParameterRanges bounds the random draw of simulation parameters.
// Every range is inclusive.
type ParameterRanges struct {
	MemoryMin    int `json:"memory_min"`
	MemoryMax    int `json:"memory_max"`
	PFFMinMin    int `json:"pff_min_min"`
	PFFMinMax    int `json:"pff_min_max"`
	PFFMaxMin    int `json:"pff_max_min"`
	PFFMaxMax    int `json:"pff_max_max"`
	PFFPeriodMin int `json:"pff_period_min"`
	PFFPeriodMax int `json:"pff_period_max"`
	WSSPeriodMin int `json:"wss_period_min"`
	WSSPeriodMax int `json:"wss_period_max"`
}

// DefaultParameterRanges returns the ranges used by randomized runs
func DefaultParameterRanges() ParameterRanges {
	return ParameterRanges{
		MemoryMin:    100,
		MemoryMax:    1000,
		PFFMinMin:    5,
		PFFMinMax:    15,
		PFFMaxMin:    15,
		PFFMaxMax:    25,
		PFFPeriodMin: 10,
		PFFPeriodMax: 30,
		WSSPeriodMin: 10,
		WSSPeriodMax: 30,
	}
}

// normalized raises every bound that would make a draw invalid: periods and
// memory are at least 1, every maximum is at least its minimum, and the PFF
// upper threshold never falls below the lower one.
func (pr ParameterRanges) normalized() ParameterRanges {
	pr.MemoryMin = max(pr.MemoryMin, 1)
	pr.MemoryMax = max(pr.MemoryMax, pr.MemoryMin)
	pr.PFFMinMin = max(pr.PFFMinMin, 1)
	pr.PFFMinMax = max(pr.PFFMinMax, pr.PFFMinMin)
	pr.PFFMaxMin = max(pr.PFFMaxMin, pr.PFFMinMax)
	pr.PFFMaxMax = max(pr.PFFMaxMax, pr.PFFMaxMin)
	pr.PFFPeriodMin = max(pr.PFFPeriodMin, 1)
	pr.PFFPeriodMax = max(pr.PFFPeriodMax, pr.PFFPeriodMin)
	pr.WSSPeriodMin = max(pr.WSSPeriodMin, 1)
	pr.WSSPeriodMax = max(pr.WSSPeriodMax, pr.WSSPeriodMin)
	return pr
}

// RandomizeConfig returns a copy of cfg whose memory size and PFF/WSS
// parameters are drawn from ranges.
func RandomizeConfig(rng *rand.Rand, cfg *Config, ranges ParameterRanges) *Config {
	r := ranges.normalized()
	out := cfg.Clone()
	out.MemorySize = intn(rng, r.MemoryMin, r.MemoryMax)
	out.PFF = PFFConfig{
		MinFaults: intn(rng, r.PFFMinMin, r.PFFMinMax),
		MaxFaults: intn(rng, r.PFFMaxMin, r.PFFMaxMax),
		Period:    intn(rng, r.PFFPeriodMin, r.PFFPeriodMax),
	}
	out.WSS = WSSConfig{
		Period: intn(rng, r.WSSPeriodMin, r.WSSPeriodMax),
	}
	return out
}
