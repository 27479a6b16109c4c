package vmem

import "github.com/benbjohnson/immutable"

// timeComparer orders use times; times are unique within one tracker
type timeComparer struct{}

func (timeComparer) Compare(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// LRUTracker orders values by their last use time.
// Every operation is logarithmic in the number of tracked values.
type LRUTracker[T comparable] struct {
	order   *immutable.SortedMap[uint64, T] // use time -> value, oldest first
	useTime map[T]uint64
}

// NewLRUTracker creates an empty tracker
func NewLRUTracker[T comparable]() *LRUTracker[T] {
	return &LRUTracker[T]{
		order:   immutable.NewSortedMap[uint64, T](timeComparer{}),
		useTime: make(map[T]uint64),
	}
}

// Use records that value was used at time, dropping its previous entry.
// Callers must never reuse a time for two different values.
func (lru *LRUTracker[T]) Use(value T, time uint64) {
	if last, exists := lru.useTime[value]; exists {
		lru.order = lru.order.Delete(last)
	}
	lru.useTime[value] = time
	lru.order = lru.order.Set(time, value)
}

// PopLRU removes and returns the least recently used value
func (lru *LRUTracker[T]) PopLRU() (T, bool) {
	itr := lru.order.Iterator()
	itr.First()
	time, value, ok := itr.Next()
	if !ok {
		var zero T
		return zero, false
	}
	lru.order = lru.order.Delete(time)
	delete(lru.useTime, value)
	return value, true
}

// Remove stops tracking value regardless of its recency
func (lru *LRUTracker[T]) Remove(value T) bool {
	last, exists := lru.useTime[value]
	if !exists {
		return false
	}
	lru.order = lru.order.Delete(last)
	delete(lru.useTime, value)
	return true
}

// Contains reports whether value is tracked
func (lru *LRUTracker[T]) Contains(value T) bool {
	_, exists := lru.useTime[value]
	return exists
}

// Len returns the number of tracked values
func (lru *LRUTracker[T]) Len() int {
	return len(lru.useTime)
}

// Ascend calls fn for every value from the least to the most recently used,
// stopping early when fn returns false. The tracker must not be modified
// from inside fn.
func (lru *LRUTracker[T]) Ascend(fn func(value T, time uint64) bool) {
	itr := lru.order.Iterator()
	itr.First()
	for !itr.Done() {
		time, value, _ := itr.Next()
		if !fn(value, time) {
			return
		}
	}
}
