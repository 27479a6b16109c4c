package vmem

import (
	"testing"
)

// TestLRUTrackerPopOrder tests that values come out oldest first
func TestLRUTrackerPopOrder(t *testing.T) {
	lru := NewLRUTracker[PageID]()

	lru.Use(1, 10)
	lru.Use(2, 11)
	lru.Use(3, 12)

	if lru.Len() != 3 {
		t.Errorf("Expected size 3, got %d", lru.Len())
	}

	value, ok := lru.PopLRU()
	if !ok {
		t.Fatal("Should have a value")
	}
	if value != 1 {
		t.Errorf("Expected 1, got %d", value)
	}

	// Touching 2 makes 3 the oldest
	lru.Use(2, 13)
	value, ok = lru.PopLRU()
	if !ok {
		t.Fatal("Should have a value")
	}
	if value != 3 {
		t.Errorf("Expected 3, got %d", value)
	}

	if lru.Len() != 1 {
		t.Errorf("Expected size 1, got %d", lru.Len())
	}
}

func TestLRUTrackerEmpty(t *testing.T) {
	lru := NewLRUTracker[PageID]()

	if _, ok := lru.PopLRU(); ok {
		t.Error("Empty tracker should not return a value")
	}
	if lru.Remove(7) {
		t.Error("Removing an untracked value should report false")
	}
}

// TestLRUTrackerRemove tests removal regardless of recency
func TestLRUTrackerRemove(t *testing.T) {
	lru := NewLRUTracker[FrameKey]()

	a := FrameKey{Owner: 0, Page: 5}
	b := FrameKey{Owner: 1, Page: 5}
	lru.Use(a, 1)
	lru.Use(b, 2)

	if !lru.Remove(a) {
		t.Fatal("Remove should report true for a tracked value")
	}
	if lru.Contains(a) {
		t.Error("Removed value should not be tracked")
	}
	if !lru.Contains(b) {
		t.Error("Other owner's page should still be tracked")
	}

	value, ok := lru.PopLRU()
	if !ok || value != b {
		t.Errorf("Expected %v, got %v", b, value)
	}
}

func TestLRUTrackerReuse(t *testing.T) {
	lru := NewLRUTracker[PageID]()
	lru.Use(4, 100)
	lru.Use(4, 200)

	var times []uint64
	lru.Ascend(func(_ PageID, time uint64) bool {
		times = append(times, time)
		return true
	})
	if len(times) != 1 || times[0] != 200 {
		t.Errorf("Expected a single entry at time 200, got %v", times)
	}
	if lru.Len() != 1 {
		t.Errorf("Re-using a value should not grow the tracker, got size %d", lru.Len())
	}
}

// TestLRUTrackerAscend tests iteration order and early stop
func TestLRUTrackerAscend(t *testing.T) {
	lru := NewLRUTracker[PageID]()
	lru.Use(30, 3)
	lru.Use(10, 1)
	lru.Use(20, 2)

	var seen []PageID
	lru.Ascend(func(page PageID, _ uint64) bool {
		seen = append(seen, page)
		return true
	})

	expected := []PageID{10, 20, 30}
	if len(seen) != len(expected) {
		t.Fatalf("Expected %d values, got %d", len(expected), len(seen))
	}
	for i := range expected {
		if seen[i] != expected[i] {
			t.Errorf("Position %d: expected %d, got %d", i, expected[i], seen[i])
		}
	}

	count := 0
	lru.Ascend(func(PageID, uint64) bool {
		count++
		return count < 2
	})
	if count != 2 {
		t.Errorf("Expected iteration to stop after 2 values, got %d", count)
	}
}
