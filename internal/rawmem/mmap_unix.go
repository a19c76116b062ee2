//go:build linux || darwin || freebsd

package rawmem

import (
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Mmap backs every block with its own anonymous private mapping. Memory lives outside the
// Go heap, so a block is only ever reclaimed by an explicit Release.
type Mmap struct {
	mu    sync.Mutex
	limit uint64 // 0 = unlimited
	used  uint64
	live  map[unsafe.Pointer]mapping
}

type mapping struct {
	data []byte // whole mapping, as returned by unix.Mmap
	size int    // requested bytes
}

// NewMmap creates an mmap backend. A non-zero limit caps the requested bytes held at once.
func NewMmap(limit uint64) *Mmap {
	return &Mmap{
		limit: limit,
		live:  make(map[unsafe.Pointer]mapping),
	}
}

// Allocate implements Allocator.
func (m *Mmap) Allocate(size uint64) unsafe.Pointer {
	n, ok := blockSize(size)
	if !ok {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if overLimit(m.limit, m.used, uint64(n)) {
		return nil
	}
	data, err := unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil
	}
	p := unsafe.Pointer(unsafe.SliceData(data))
	m.live[p] = mapping{data: data, size: n}
	m.used += uint64(n)
	return p
}

// AllocateZeroed implements Allocator. Anonymous mappings are zero-filled by the kernel;
// the explicit clear is kept so the contract does not depend on that.
func (m *Mmap) AllocateZeroed(count, size uint64) unsafe.Pointer {
	return allocateZeroed(m, count, size)
}

// Release implements Allocator.
func (m *Mmap) Release(p unsafe.Pointer) {
	if p == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	mp, ok := m.live[p]
	if !ok {
		return
	}
	delete(m.live, p)
	m.used -= uint64(mp.size)
	// Munmap only fails for ranges that are not mapped; the entry is gone either way.
	_ = unix.Munmap(mp.data)
}

// Reallocate implements Allocator.
func (m *Mmap) Reallocate(p unsafe.Pointer, size uint64) unsafe.Pointer {
	return reallocate(m, p, size)
}

// Stats returns the mappings currently held.
func (m *Mmap) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{Blocks: len(m.live), Bytes: m.used}
}

func (m *Mmap) block(p unsafe.Pointer) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mp, ok := m.live[p]
	if !ok {
		return nil, false
	}
	return mp.data[:mp.size], true
}
