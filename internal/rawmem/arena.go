package rawmem

import (
	"sync"
	"unsafe"
)

// DefaultArenaSize is the arena capacity used when NewArena is given 0.
const DefaultArenaSize = 1 << 20

// arenaAlign is the alignment of every block handed out by an Arena.
const arenaAlign = 8

// Arena is an append-only bump allocator over one fixed buffer.
//
// Key characteristics:
//   - O(1) allocation: pure bump pointer, 8-byte aligned
//   - Release only drops the bookkeeping; space is never reused
//   - Allocate returns nil once the buffer is exhausted
//
// Because addresses are never reissued, an Arena makes use-after-release and double
// release visible to the tracking layer instead of silently aliasing a newer block.
type Arena struct {
	mu   sync.Mutex
	buf  []byte
	next int // bump pointer: offset of the next block
	used uint64
	live map[unsafe.Pointer][]byte
}

// NewArena creates an arena of the given capacity in bytes.
func NewArena(capacity uint64) *Arena {
	n, ok := blockSize(capacity)
	if capacity == 0 || !ok {
		n = DefaultArenaSize
	}
	return &Arena{
		buf:  make([]byte, n),
		live: make(map[unsafe.Pointer][]byte),
	}
}

func align8(n int) int {
	return (n + arenaAlign - 1) &^ (arenaAlign - 1)
}

// Allocate implements Allocator.
func (a *Arena) Allocate(size uint64) unsafe.Pointer {
	n, ok := blockSize(size)
	if !ok {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	span := align8(n)
	if span < n || span > len(a.buf)-a.next {
		return nil
	}
	off := a.next
	a.next += span

	blk := a.buf[off : off+n : off+span]
	p := unsafe.Pointer(unsafe.SliceData(blk))
	a.live[p] = blk
	a.used += uint64(n)
	return p
}

// AllocateZeroed implements Allocator.
func (a *Arena) AllocateZeroed(count, size uint64) unsafe.Pointer {
	return allocateZeroed(a, count, size)
}

// Release implements Allocator. The space stays consumed.
func (a *Arena) Release(p unsafe.Pointer) {
	if p == nil {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	blk, ok := a.live[p]
	if !ok {
		return
	}
	delete(a.live, p)
	a.used -= uint64(len(blk))
}

// Reallocate implements Allocator.
func (a *Arena) Reallocate(p unsafe.Pointer, size uint64) unsafe.Pointer {
	return reallocate(a, p, size)
}

// Stats returns the blocks currently held.
func (a *Arena) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Stats{Blocks: len(a.live), Bytes: a.used}
}

// Remaining returns the bytes left before the arena is exhausted.
func (a *Arena) Remaining() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.buf) - a.next
}

func (a *Arena) block(p unsafe.Pointer) ([]byte, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	blk, ok := a.live[p]
	return blk, ok
}
