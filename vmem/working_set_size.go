package vmem

import (
	"log/slog"

	"github.com/benbjohnson/immutable"
)

// pageWindow counts the distinct pages among the last period references
type pageWindow struct {
	pages  []PageID
	head   int
	size   int
	counts map[PageID]int
}

func newPageWindow(period int) *pageWindow {
	return &pageWindow{
		pages:  make([]PageID, period),
		counts: make(map[PageID]int),
	}
}

func (w *pageWindow) push(page PageID) {
	if w.size == len(w.pages) {
		old := w.pages[w.head]
		if w.counts[old] <= 1 {
			delete(w.counts, old)
		} else {
			w.counts[old]--
		}
		w.size--
		w.head = (w.head + 1) % len(w.pages)
	}
	w.pages[(w.head+w.size)%len(w.pages)] = page
	w.size++
	w.counts[page]++
}

// distinct returns the working set size
func (w *pageWindow) distinct() int {
	return len(w.counts)
}

// desireKey orders processes by desired space, then id
type desireKey struct {
	desired int
	id      int
}

type desireComparer struct{}

func (desireComparer) Compare(a, b desireKey) int {
	switch {
	case a.desired < b.desired:
		return -1
	case a.desired > b.desired:
		return 1
	case a.id < b.id:
		return -1
	case a.id > b.id:
		return 1
	}
	return 0
}

// WorkingSetSize sizes each process's desired space to the number of
// distinct pages it referenced in its last period accesses. When frames run
// out, the process with the largest desire is halted and its frames are
// handed to the processes still running.
type WorkingSetSize struct {
	memorySize int
	period     int
	logger     *slog.Logger
	metrics    *Metrics
}

// NewWorkingSetSize creates a WSS allocator with the given window length
func NewWorkingSetSize(memorySize, period int, opts ...Option) (*WorkingSetSize, error) {
	if memorySize <= 0 {
		return nil, ErrInvalidMemorySize("NewWorkingSetSize")
	}
	if period <= 0 {
		return nil, ErrInvalidParameters("NewWorkingSetSize", "period must be greater than 0")
	}
	o := buildOptions(opts)
	return &WorkingSetSize{
		memorySize: memorySize,
		period:     period,
		logger:     o.logger,
		metrics:    o.metrics,
	}, nil
}

// Name returns the policy name
func (wss *WorkingSetSize) Name() string {
	return "WorkingSetSize"
}

// Metrics returns the metrics the engine records into
func (wss *WorkingSetSize) Metrics() *Metrics {
	return wss.metrics
}

// wssRun extends the feedback state with halting bookkeeping
type wssRun struct {
	*feedbackRun
	windows []*pageWindow

	// desires holds every running process that holds at least one frame
	desires  *immutable.SortedMap[desireKey, struct{}]
	inDesire []*desireKey

	// recentlyHalted is the only halted process that may still hold frames.
	// A new victim is halted only once this slot is empty.
	recentlyHalted int
}

func (wss *WorkingSetSize) newRun(traces []Trace) *wssRun {
	r := &wssRun{
		feedbackRun:    newFeedbackRun(wss.Name(), wss.memorySize, traces, wss.metrics, wss.logger),
		windows:        make([]*pageWindow, len(traces)),
		desires:        immutable.NewSortedMap[desireKey, struct{}](desireComparer{}),
		inDesire:       make([]*desireKey, len(traces)),
		recentlyHalted: noProcess,
	}
	for i := range r.windows {
		r.windows[i] = newPageWindow(wss.period)
	}
	r.onChange = r.syncDesire
	return r
}

// syncDesire keeps p's entry in the desire set current
func (r *wssRun) syncDesire(p *feedbackProcess) {
	want := !p.finished && !p.halted && p.usedSpace > 0
	cur := r.inDesire[p.id]
	if cur != nil && (!want || cur.desired != p.desiredSpace) {
		r.desires = r.desires.Delete(*cur)
		r.inDesire[p.id] = nil
		cur = nil
	}
	if want && cur == nil {
		key := desireKey{desired: p.desiredSpace, id: p.id}
		r.desires = r.desires.Set(key, struct{}{})
		r.inDesire[p.id] = &key
	}
}

// haltVictim returns the running holder with the largest desire other than requester
func (r *wssRun) haltVictim(requester int) (*feedbackProcess, bool) {
	itr := r.desires.Iterator()
	itr.Last()
	for !itr.Done() {
		key, _, _ := itr.Prev()
		if key.id != requester {
			return r.processes[key.id], true
		}
	}
	return nil, false
}

// Emulate visits processes round robin, one burst per visit, until every
// trace is exhausted.
func (wss *WorkingSetSize) Emulate(traces []Trace) ([]int, error) {
	r := wss.newRun(traces)

	for r.done < len(r.processes) {
		progressed := false
		for _, p := range r.processes {
			if p.finished {
				continue
			}
			if p.halted {
				slack := r.pool.Free() + r.memoryToTake + r.heldByHalted
				if slack < p.desiredSpace {
					continue
				}
				wss.resume(r, p)
			}
			progressed = true

			if burst, ok := p.trace.NextBurst(); ok {
				for _, page := range burst {
					if err := wss.access(r, p, page); err != nil {
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
			return nil, ErrStarvation("WorkingSetSize.Emulate", r.recentlyHalted)
		}
	}

	return r.faults, nil
}

// access handles one page reference of p and resizes its working set
func (wss *WorkingSetSize) access(r *wssRun, p *feedbackProcess, page PageID) error {
	if r.pool.Contains(FrameKey{Owner: p.id, Page: page}) {
		wss.metrics.RecordHit()
	} else if err := wss.fault(r, p, page); err != nil {
		return err
	}
	r.touch(p, page)

	window := r.windows[p.id]
	window.push(page)
	r.update(p, func() {
		p.desiredSpace = min(window.distinct(), wss.memorySize)
	})
	return nil
}

// fault brings page in for p, in priority order: a free frame, a frame of
// the recently halted process, a frame owed by another process, a frame of
// a newly halted process, or p's own least recently used frame.
//
// As with PageFaultFrequency, a free frame is taken even when p already holds
// its working set, so p never evicts its own page while a frame is free.
func (wss *WorkingSetSize) fault(r *wssRun, p *feedbackProcess, page PageID) error {
	if r.pool.Free() > 0 {
		return r.admit(p, page)
	}
	if p.desiredSpace > p.usedSpace {
		if r.recentlyHalted != noProcess {
			return wss.takeFromHalted(r, p, page)
		}
		if r.memoryToTake > 0 {
			return r.steal(p, page)
		}
		if victim, ok := r.haltVictim(p.id); ok {
			wss.halt(r, victim)
			return wss.takeFromHalted(r, p, page)
		}
	}
	if p.usedSpace > 0 {
		return r.evictOwn(p, page)
	}
	return ErrStarvation("WorkingSetSize.fault", p.id)
}

// takeFromHalted moves one frame from the recently halted process to p
func (wss *WorkingSetSize) takeFromHalted(r *wssRun, p *feedbackProcess, page PageID) error {
	h := r.processes[r.recentlyHalted]
	if err := r.takeFrom(h); err != nil {
		return err
	}
	if h.usedSpace == 0 {
		r.recentlyHalted = noProcess
	}
	wss.metrics.RecordSteal()
	return r.admit(p, page)
}

// halt stops scheduling victim; its frames stay reserved until reclaimed
// or until it resumes.
func (wss *WorkingSetSize) halt(r *wssRun, victim *feedbackProcess) {
	r.update(victim, func() { victim.halted = true })
	victim.lru.Ascend(func(page PageID, _ uint64) bool {
		r.global.Remove(FrameKey{Owner: victim.id, Page: page})
		return true
	})
	r.recentlyHalted = victim.id

	wss.metrics.RecordHalt()
	wss.logger.Debug("process halted",
		slog.String("policy", wss.Name()),
		slog.Int("process", victim.id),
		slog.Int("desired", victim.desiredSpace),
		slog.Int("used", victim.usedSpace))
}

// resume puts p back in the schedule with its remaining frames
func (wss *WorkingSetSize) resume(r *wssRun, p *feedbackProcess) {
	r.update(p, func() { p.halted = false })
	p.lru.Ascend(func(page PageID, time uint64) bool {
		r.global.Use(FrameKey{Owner: p.id, Page: page}, time)
		return true
	})
	if r.recentlyHalted == p.id {
		r.recentlyHalted = noProcess
	}

	wss.metrics.RecordResume()
	wss.logger.Debug("process resumed",
		slog.String("policy", wss.Name()),
		slog.Int("process", p.id),
		slog.Int("desired", p.desiredSpace),
		slog.Int("used", p.usedSpace))
}
