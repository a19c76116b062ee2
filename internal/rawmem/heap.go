package rawmem

import (
	"sync"
	"unsafe"
)

// Heap hands out blocks carved from the Go heap. The backend keeps every live slice in a
// map, which is what keeps the block reachable while only a raw address circulates.
type Heap struct {
	mu    sync.Mutex
	limit uint64 // 0 = unlimited
	used  uint64
	live  map[unsafe.Pointer][]byte
}

// NewHeap creates a Go-heap backend. A non-zero limit makes Allocate return nil once the
// live bytes would exceed it, which is how tests simulate exhaustion.
func NewHeap(limit uint64) *Heap {
	return &Heap{
		limit: limit,
		live:  make(map[unsafe.Pointer][]byte),
	}
}

// Allocate implements Allocator.
func (h *Heap) Allocate(size uint64) unsafe.Pointer {
	n, ok := blockSize(size)
	if !ok {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if overLimit(h.limit, h.used, uint64(n)) {
		return nil
	}
	buf := make([]byte, n)
	p := unsafe.Pointer(unsafe.SliceData(buf))
	h.live[p] = buf
	h.used += uint64(n)
	return p
}

// AllocateZeroed implements Allocator.
func (h *Heap) AllocateZeroed(count, size uint64) unsafe.Pointer {
	return allocateZeroed(h, count, size)
}

// Release implements Allocator.
func (h *Heap) Release(p unsafe.Pointer) {
	if p == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	buf, ok := h.live[p]
	if !ok {
		return
	}
	delete(h.live, p)
	h.used -= uint64(len(buf))
}

// Reallocate implements Allocator.
func (h *Heap) Reallocate(p unsafe.Pointer, size uint64) unsafe.Pointer {
	return reallocate(h, p, size)
}

// Stats returns the blocks currently held.
func (h *Heap) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Stats{Blocks: len(h.live), Bytes: h.used}
}

func (h *Heap) block(p unsafe.Pointer) ([]byte, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	buf, ok := h.live[p]
	return buf, ok
}
