package track

import (
	"cmp"
	"slices"
	"unsafe"
)

// Record describes one live allocation.
type Record struct {
	Size uint64 // requested bytes
	Site Site   // call site that last produced this address or size
}

// Registry maps live addresses to their records. It is not safe for concurrent use.
type Registry struct {
	entries map[unsafe.Pointer]Record
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[unsafe.Pointer]Record)}
}

// Insert adds a record for p. It never overwrites an existing entry.
func (r *Registry) Insert(p unsafe.Pointer, rec Record) error {
	if p == nil {
		return ErrNilPointer
	}
	if _, ok := r.entries[p]; ok {
		return ErrDuplicate
	}
	r.entries[p] = rec
	return nil
}

// Find returns the record for p.
func (r *Registry) Find(p unsafe.Pointer) (Record, bool) {
	rec, ok := r.entries[p]
	return rec, ok
}

// Update replaces the record of a tracked address. It reports whether p was tracked.
func (r *Registry) Update(p unsafe.Pointer, rec Record) bool {
	if _, ok := r.entries[p]; !ok {
		return false
	}
	r.entries[p] = rec
	return true
}

// Remove drops p. It reports whether p was tracked.
func (r *Registry) Remove(p unsafe.Pointer) bool {
	if _, ok := r.entries[p]; !ok {
		return false
	}
	delete(r.entries, p)
	return true
}

// ForEach visits entries in ascending address order until fn returns false.
// fn must not mutate the registry.
func (r *Registry) ForEach(fn func(p unsafe.Pointer, rec Record) bool) {
	keys := make([]unsafe.Pointer, 0, len(r.entries))
	for p := range r.entries {
		keys = append(keys, p)
	}
	slices.SortFunc(keys, func(a, b unsafe.Pointer) int {
		return cmp.Compare(uintptr(a), uintptr(b))
	})
	for _, p := range keys {
		if !fn(p, r.entries[p]) {
			return
		}
	}
}

// Len returns the number of tracked addresses.
func (r *Registry) Len() int { return len(r.entries) }

// Clear drops every entry.
func (r *Registry) Clear() { clear(r.entries) }
