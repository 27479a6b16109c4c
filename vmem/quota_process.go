package vmem

// stepResult is the outcome of offering one turn to a process
type stepResult int

const (
	stepDone     stepResult = iota // a burst was processed
	stepNoMemory                   // the process has no quota and was not scheduled
	stepNoWork                     // the trace was already exhausted
)

// quotaProcess is the allocation state of a process under a fixed-quota
// policy: it only ever evicts its own pages.
type quotaProcess struct {
	id            int
	trace         Trace
	lru           *LRUTracker[PageID]
	usedSpace     int
	availableSize int
	clock         uint64
	finished      bool
}

func newQuotaProcess(id int, trace Trace, quota int) *quotaProcess {
	return &quotaProcess{
		id:            id,
		trace:         trace,
		lru:           NewLRUTracker[PageID](),
		availableSize: quota,
	}
}

// step runs the next burst. Each fault beyond the quota evicts the process's
// own least recently used page. Once the trace is exhausted all of its
// frames are returned to the pool.
func (p *quotaProcess) step(pool *FramePool, metrics *Metrics) (int, stepResult, error) {
	if p.trace.IsEmpty() {
		p.finished = true
		return 0, stepNoWork, nil
	}
	if p.availableSize == 0 && p.trace.DistinctPageCount() > 0 {
		metrics.RecordDeferral()
		return 0, stepNoMemory, nil
	}

	burst, ok := p.trace.NextBurst()
	if !ok {
		p.finished = true
		return 0, stepNoWork, nil
	}

	faults := 0
	for _, page := range burst {
		key := FrameKey{Owner: p.id, Page: page}
		if pool.Contains(key) {
			metrics.RecordHit()
		} else {
			for p.usedSpace >= p.availableSize {
				if err := p.evictLRU(pool, metrics); err != nil {
					return faults, stepDone, err
				}
			}
			if err := pool.Admit(key); err != nil {
				return faults, stepDone, err
			}
			p.usedSpace++
			faults++
			metrics.RecordFault()
			metrics.RecordResident(pool.Len())
		}
		p.lru.Use(page, p.clock)
		p.clock++
	}

	if p.trace.IsEmpty() {
		if err := p.release(pool); err != nil {
			return faults, stepDone, err
		}
	}
	return faults, stepDone, nil
}

// evictLRU frees the process's least recently used frame
func (p *quotaProcess) evictLRU(pool *FramePool, metrics *Metrics) error {
	page, ok := p.lru.PopLRU()
	if !ok {
		return ErrStarvation("evictLRU", p.id)
	}
	if err := pool.Release(FrameKey{Owner: p.id, Page: page}); err != nil {
		return err
	}
	p.usedSpace--
	metrics.RecordSelfEviction()
	return nil
}

// trim evicts until the process fits its quota again
func (p *quotaProcess) trim(pool *FramePool, metrics *Metrics) error {
	for p.usedSpace > p.availableSize {
		if err := p.evictLRU(pool, metrics); err != nil {
			return err
		}
	}
	return nil
}

// release returns every frame of the process to the pool
func (p *quotaProcess) release(pool *FramePool) error {
	freed := pool.ReleaseOwner(p.id, p.trace.UsedPages())
	if freed != p.usedSpace {
		return NewSimulationError(
			ErrCodeFrameNotReleased,
			"release",
			"not all frames of the process were released",
			nil,
		)
	}
	p.usedSpace = 0
	p.lru = NewLRUTracker[PageID]()
	p.finished = true
	return nil
}
