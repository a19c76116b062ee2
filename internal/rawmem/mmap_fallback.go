//go:build !(linux || darwin || freebsd)

package rawmem

// Mmap falls back to Go-heap blocks where anonymous mappings are not wired up.
type Mmap struct {
	*Heap
}

// NewMmap creates the fallback backend.
func NewMmap(limit uint64) *Mmap {
	return &Mmap{Heap: NewHeap(limit)}
}
