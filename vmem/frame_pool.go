package vmem

// FrameKey identifies a resident page by its owning process and page id
type FrameKey struct {
	Owner int
	Page  PageID
}

// FramePool is the set of resident pages, bounded by its capacity
type FramePool struct {
	capacity int
	resident map[FrameKey]struct{}
}

// NewFramePool creates an empty pool with capacity frames
func NewFramePool(capacity int) *FramePool {
	return &FramePool{
		capacity: capacity,
		resident: make(map[FrameKey]struct{}, capacity),
	}
}

// Capacity returns the number of frames in the pool
func (fp *FramePool) Capacity() int {
	return fp.capacity
}

// Len returns the number of occupied frames
func (fp *FramePool) Len() int {
	return len(fp.resident)
}

// Free returns the number of unoccupied frames
func (fp *FramePool) Free() int {
	return fp.capacity - len(fp.resident)
}

// Contains reports whether the page is resident
func (fp *FramePool) Contains(key FrameKey) bool {
	_, ok := fp.resident[key]
	return ok
}

// Admit brings a page into a free frame
func (fp *FramePool) Admit(key FrameKey) error {
	if _, ok := fp.resident[key]; ok {
		return nil
	}
	if len(fp.resident) >= fp.capacity {
		return ErrPoolOverflow("Admit", len(fp.resident)+1, fp.capacity)
	}
	fp.resident[key] = struct{}{}
	return nil
}

// Release evicts a resident page
func (fp *FramePool) Release(key FrameKey) error {
	if _, ok := fp.resident[key]; !ok {
		return ErrFrameNotReleased("Release", key)
	}
	delete(fp.resident, key)
	return nil
}

// ReleaseOwner evicts every listed page of owner that is resident and
// returns how many frames were freed.
func (fp *FramePool) ReleaseOwner(owner int, pages []PageID) int {
	freed := 0
	for _, page := range pages {
		key := FrameKey{Owner: owner, Page: page}
		if _, ok := fp.resident[key]; ok {
			delete(fp.resident, key)
			freed++
		}
	}
	return freed
}
