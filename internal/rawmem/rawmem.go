// Package rawmem provides the untracked allocation primitives that the tracking layer wraps.
//
// Every backend hands out raw addresses as unsafe.Pointer and signals exhaustion with nil.
// Backends keep a reference to each block they issued, so blocks carved from the Go heap
// stay reachable until Release is called.
package rawmem

import (
	"math"
	"math/bits"
	"unsafe"
)

// Allocator is the raw allocation capability: allocate, allocate-zeroed, release and
// reallocate with C semantics. Implementations must be safe for concurrent use.
type Allocator interface {
	// Allocate returns a unique address for size bytes, or nil when exhausted.
	Allocate(size uint64) unsafe.Pointer

	// AllocateZeroed returns a zero-filled block of count*size bytes, or nil when exhausted
	// or when count*size overflows.
	AllocateZeroed(count, size uint64) unsafe.Pointer

	// Release returns a block to the backend. nil and unknown addresses are ignored.
	Release(p unsafe.Pointer)

	// Reallocate resizes a block, moving it when needed. A nil p behaves like Allocate,
	// a zero size behaves like Release and returns nil.
	Reallocate(p unsafe.Pointer, size uint64) unsafe.Pointer
}

// Stats describes what a backend currently holds.
type Stats struct {
	Blocks int    // Live blocks
	Bytes  uint64 // Requested bytes across live blocks
}

// Kind names a backend.
type Kind string

const (
	KindHeap  Kind = "heap"
	KindMmap  Kind = "mmap"
	KindArena Kind = "arena"
)

// Kinds lists every supported backend.
func Kinds() []Kind { return []Kind{KindHeap, KindMmap, KindArena} }

// ParseKind converts a backend name into a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindHeap, KindMmap, KindArena:
		return k, nil
	case "":
		return KindHeap, nil
	default:
		return "", &KindError{Name: s}
	}
}

// New creates a backend of the given kind. For heap and mmap, limit caps the bytes held at
// once (0 means unlimited). For arena, limit is the arena capacity (0 means DefaultArenaSize).
func New(kind Kind, limit uint64) (Allocator, error) {
	switch kind {
	case KindHeap, "":
		return NewHeap(limit), nil
	case KindMmap:
		return NewMmap(limit), nil
	case KindArena:
		return NewArena(limit), nil
	default:
		return nil, &KindError{Name: string(kind)}
	}
}

// Bytes views n bytes starting at p. It returns nil for a nil p or zero n.
func Bytes(p unsafe.Pointer, n uint64) []byte {
	if p == nil || n == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(p), n)
}

// blockSize is the real size of a block for a request; zero-size requests still get a
// distinct address.
func blockSize(size uint64) (int, bool) {
	if size == 0 {
		return 1, true
	}
	if size > math.MaxInt {
		return 0, false
	}
	return int(size), true
}

// overLimit reports whether adding n bytes to used exceeds limit. A zero limit never trips.
func overLimit(limit, used, n uint64) bool {
	return limit != 0 && (n > limit || used > limit-n)
}

// blockLookup is implemented by backends that can report the block behind an address.
type blockLookup interface {
	Allocator
	block(p unsafe.Pointer) ([]byte, bool)
}

func allocateZeroed(a Allocator, count, size uint64) unsafe.Pointer {
	hi, total := bits.Mul64(count, size)
	if hi != 0 {
		return nil
	}
	p := a.Allocate(total)
	if p != nil {
		clear(Bytes(p, total))
	}
	return p
}

func reallocate(a blockLookup, p unsafe.Pointer, size uint64) unsafe.Pointer {
	if p == nil {
		return a.Allocate(size)
	}
	if size == 0 {
		a.Release(p)
		return nil
	}
	old, ok := a.block(p)
	if !ok {
		return nil
	}
	np := a.Allocate(size)
	if np == nil {
		return nil
	}
	copy(Bytes(np, size), old)
	a.Release(p)
	return np
}
