package vmem

import (
	"sort"

	"golang.org/x/exp/constraints"
)

// remainderEntry is one process's share before the leftover frames are handed out
type remainderEntry struct {
	remainder uint64
	quota     int
	index     int
}

// Distribute splits memorySize frames proportionally to weights using the
// largest remainder method. Quotas sum to memorySize unless every weight is
// zero, in which case every quota is zero. Zero-weight entries never receive
// a frame.
func Distribute[W constraints.Integer](memorySize int, weights []W) []int {
	quotas := make([]int, len(weights))
	if memorySize <= 0 {
		return quotas
	}

	var total uint64
	for _, w := range weights {
		if w > 0 {
			total += uint64(w)
		}
	}
	if total == 0 {
		return quotas
	}

	entries := make([]remainderEntry, 0, len(weights))
	assigned := 0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		share := uint64(w) * uint64(memorySize)
		quota := int(share / total)
		quotas[i] = quota
		assigned += quota
		entries = append(entries, remainderEntry{
			remainder: share % total,
			quota:     quota,
			index:     i,
		})
	}

	sortRemainders(entries)

	for _, e := range entries {
		if assigned >= memorySize {
			break
		}
		quotas[e.index]++
		assigned++
	}

	return quotas
}

// sortRemainders orders entries by remainder descending, then quota ascending,
// then by process index.
func sortRemainders(entries []remainderEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.remainder != b.remainder {
			return a.remainder > b.remainder
		}
		return a.quota < b.quota
	})
}

// FloorQuotas raises every quota below min to min
func FloorQuotas(quotas []int, min int) []int {
	for i, q := range quotas {
		if q < min {
			quotas[i] = min
		}
	}
	return quotas
}

// EqualShare returns the quota of slot n when count frames are split equally
// among slots; the first count%slots slots get one extra frame.
func EqualShare(count, slots, n int) int {
	if slots <= 0 {
		return 0
	}
	share := count / slots
	if n < count%slots {
		share++
	}
	return share
}
