package vmem

import (
	"fmt"
	"log/slog"
)

// noProcess marks an empty process slot
const noProcess = -1

// feedbackProcess is the allocation state of a process under a policy that
// resizes its desired space from observed behaviour.
type feedbackProcess struct {
	id           int
	trace        Trace
	lru          *LRUTracker[PageID] // resident pages of this process only
	usedSpace    int
	desiredSpace int
	finished     bool
	halted       bool
}

// excess is the number of frames the process holds beyond its desire that
// other processes may reclaim. Halted and finished processes owe nothing.
func (p *feedbackProcess) excess() int {
	if p.finished || p.halted || p.usedSpace <= p.desiredSpace {
		return 0
	}
	return p.usedSpace - p.desiredSpace
}

// haltedHolding is the number of frames parked by a halted process
func (p *feedbackProcess) haltedHolding() int {
	if p.halted && !p.finished {
		return p.usedSpace
	}
	return 0
}

// feedbackRun is the shared state of one PFF or WSS emulation
type feedbackRun struct {
	policy     string
	memorySize int
	pool       *FramePool
	global     *LRUTracker[FrameKey] // resident pages of every running process
	processes  []*feedbackProcess
	faults     []int
	done       int
	clock      uint64

	// memoryToTake is the sum of excess() over all processes
	memoryToTake int
	// heldByHalted is the sum of haltedHolding() over all processes
	heldByHalted int

	onChange func(p *feedbackProcess)
	metrics  *Metrics
	logger   *slog.Logger
}

// newFeedbackRun seeds every desired space from the proportional split,
// floored at one frame. Empty traces start out finished.
func newFeedbackRun(policy string, memorySize int, traces []Trace, metrics *Metrics, logger *slog.Logger) *feedbackRun {
	r := &feedbackRun{
		policy:     policy,
		memorySize: memorySize,
		pool:       NewFramePool(memorySize),
		global:     NewLRUTracker[FrameKey](),
		processes:  make([]*feedbackProcess, len(traces)),
		faults:     make([]int, len(traces)),
		metrics:    metrics,
		logger:     logger,
	}

	weights := make([]int, len(traces))
	for i, t := range traces {
		if !t.IsEmpty() {
			weights[i] = t.DistinctPageCount()
		}
	}
	quotas := FloorQuotas(Distribute(memorySize, weights), 1)

	for i, t := range traces {
		p := &feedbackProcess{
			id:           i,
			trace:        t,
			lru:          NewLRUTracker[PageID](),
			desiredSpace: min(quotas[i], memorySize),
		}
		if t.IsEmpty() {
			p.finished = true
			p.desiredSpace = 0
			r.done++
		}
		r.processes[i] = p
	}
	return r
}

// update applies mutate to p and keeps the run-wide counters in sync
func (r *feedbackRun) update(p *feedbackProcess, mutate func()) {
	excess := p.excess()
	held := p.haltedHolding()
	mutate()
	r.memoryToTake += p.excess() - excess
	r.heldByHalted += p.haltedHolding() - held
	if r.onChange != nil {
		r.onChange(p)
	}
}

// touch marks page as used now in both the process and the global tracker
func (r *feedbackRun) touch(p *feedbackProcess, page PageID) {
	r.global.Use(FrameKey{Owner: p.id, Page: page}, r.clock)
	p.lru.Use(page, r.clock)
	r.clock++
}

// admit places a faulting page into a free frame on behalf of p
func (r *feedbackRun) admit(p *feedbackProcess, page PageID) error {
	if err := r.pool.Admit(FrameKey{Owner: p.id, Page: page}); err != nil {
		return err
	}
	r.update(p, func() { p.usedSpace++ })
	r.faults[p.id]++
	r.metrics.RecordFault()
	r.metrics.RecordResident(r.pool.Len())
	return nil
}

// takeFrom evicts the least recently used page of victim
func (r *feedbackRun) takeFrom(victim *feedbackProcess) error {
	page, ok := victim.lru.PopLRU()
	if !ok {
		return ErrStarvation(r.policy+".takeFrom", victim.id)
	}
	key := FrameKey{Owner: victim.id, Page: page}
	if err := r.pool.Release(key); err != nil {
		return err
	}
	r.global.Remove(key)
	r.update(victim, func() { victim.usedSpace-- })
	return nil
}

// evictOwn replaces the least recently used page of p with page
func (r *feedbackRun) evictOwn(p *feedbackProcess, page PageID) error {
	if err := r.takeFrom(p); err != nil {
		return err
	}
	r.metrics.RecordSelfEviction()
	return r.admit(p, page)
}

// steal reclaims the globally least recently used frame whose owner holds
// more than it desires, and gives it to p.
func (r *feedbackRun) steal(p *feedbackProcess, page PageID) error {
	victim := FrameKey{Owner: noProcess}
	r.global.Ascend(func(key FrameKey, _ uint64) bool {
		q := r.processes[key.Owner]
		if q.usedSpace > 1 && q.usedSpace > q.desiredSpace {
			victim = key
			return false
		}
		return true
	})
	if victim.Owner == noProcess {
		return NewSimulationError(
			ErrCodeInternal,
			r.policy+".steal",
			"memory to take is positive but no frame is reclaimable",
			nil,
		)
	}

	owner := r.processes[victim.Owner]
	if err := r.pool.Release(victim); err != nil {
		return err
	}
	r.global.Remove(victim)
	owner.lru.Remove(victim.Page)
	r.update(owner, func() { owner.usedSpace-- })
	r.metrics.RecordSteal()
	return r.admit(p, page)
}

// finish returns every frame of p and removes it from all bookkeeping
func (r *feedbackRun) finish(p *feedbackProcess) error {
	pages := p.trace.UsedPages()
	freed := r.pool.ReleaseOwner(p.id, pages)
	if freed != p.usedSpace {
		return NewSimulationError(
			ErrCodeFrameNotReleased,
			r.policy+".finish",
			"not all frames of the process were released",
			nil,
		)
	}
	for _, page := range pages {
		r.global.Remove(FrameKey{Owner: p.id, Page: page})
	}
	p.lru = NewLRUTracker[PageID]()
	r.update(p, func() {
		p.finished = true
		p.halted = false
		p.usedSpace = 0
		p.desiredSpace = 0
	})
	r.done++

	r.metrics.RecordCompletion()
	r.logger.Debug("process finished",
		slog.String("policy", r.policy),
		slog.Int("process", p.id),
		slog.Int("faults", r.faults[p.id]))
	return nil
}

// checkInvariants verifies the pool bound and the run-wide counters between
// bursts. Once nothing is owed, no running process holds more than it wants.
func (r *feedbackRun) checkInvariants() error {
	if r.pool.Len() > r.memorySize {
		return ErrPoolOverflow(r.policy, r.pool.Len(), r.memorySize)
	}
	if r.memoryToTake < 0 {
		return NewSimulationError(ErrCodeInternal, r.policy, "negative memory to take", nil)
	}

	owed, held := 0, 0
	for _, p := range r.processes {
		if r.memoryToTake == 0 && !p.finished && !p.halted && p.usedSpace > p.desiredSpace {
			return NewSimulationError(
				ErrCodeInternal,
				r.policy,
				fmt.Sprintf("process %d uses %d frames but desires %d while nothing is owed",
					p.id, p.usedSpace, p.desiredSpace),
				nil,
			)
		}
		owed += p.excess()
		held += p.haltedHolding()
	}
	if owed != r.memoryToTake || held != r.heldByHalted {
		return NewSimulationError(
			ErrCodeInternal,
			r.policy,
			fmt.Sprintf("frame counters out of sync: owed %d (tracked %d), held by halted %d (tracked %d)",
				owed, r.memoryToTake, held, r.heldByHalted),
			nil,
		)
	}
	return nil
}
