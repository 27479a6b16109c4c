package vmem

import "sort"

//go:generate mockgen -source trace.go -destination trace_mocks.go -package vmem

// PageID identifies a page within one process
type PageID uint32

// Burst is a group of page references issued together in one short quantum
type Burst []PageID

// Trace is the page reference stream of a single process
type Trace interface {
	// NextBurst pops the next burst, or returns false once the trace is exhausted
	NextBurst() (Burst, bool)

	// IsEmpty reports whether every burst has been consumed
	IsEmpty() bool

	// DistinctPageCount is the number of distinct pages the process ever references
	DistinctPageCount() int

	// UsedPages returns every page the process references, used for bulk cleanup
	UsedPages() []PageID
}

// Process is an in-memory Trace over an immutable list of bursts
type Process struct {
	bursts    []Burst
	next      int
	usedPages []PageID
}

// NewProcess creates a process trace from the given bursts.
// The bursts are not copied and must not be modified afterwards.
func NewProcess(bursts []Burst) *Process {
	seen := make(map[PageID]struct{})
	for _, burst := range bursts {
		for _, page := range burst {
			seen[page] = struct{}{}
		}
	}

	used := make([]PageID, 0, len(seen))
	for page := range seen {
		used = append(used, page)
	}
	sort.Slice(used, func(i, j int) bool { return used[i] < used[j] })

	return &Process{
		bursts:    bursts,
		usedPages: used,
	}
}

// NextBurst pops the next burst
func (p *Process) NextBurst() (Burst, bool) {
	if p.next >= len(p.bursts) {
		return nil, false
	}
	burst := p.bursts[p.next]
	p.next++
	return burst, true
}

// IsEmpty reports whether the trace is exhausted
func (p *Process) IsEmpty() bool {
	return p.next >= len(p.bursts)
}

// DistinctPageCount returns the number of distinct pages in the trace
func (p *Process) DistinctPageCount() int {
	return len(p.usedPages)
}

// UsedPages returns the sorted set of pages referenced by the trace
func (p *Process) UsedPages() []PageID {
	return p.usedPages
}

// Bursts returns all bursts, including those already consumed
func (p *Process) Bursts() []Burst {
	return p.bursts
}

// TotalReferences returns the number of page references in the whole trace
func (p *Process) TotalReferences() int {
	total := 0
	for _, burst := range p.bursts {
		total += len(burst)
	}
	return total
}

// Clone returns an independent cursor positioned at the start of the trace
func (p *Process) Clone() *Process {
	return &Process{
		bursts:    p.bursts,
		usedPages: p.usedPages,
	}
}

// CloneTraces gives every process a fresh cursor, so one engine never
// observes another engine's consumption.
func CloneTraces(processes []*Process) []Trace {
	traces := make([]Trace, len(processes))
	for i, p := range processes {
		traces[i] = p.Clone()
	}
	return traces
}
