// Package track records every live allocation made through a Tracker and reports the ones
// still outstanding when the process finishes.
//
// # Overview
//
// A Tracker interposes on the four dynamic-memory primitives and keeps a Registry that maps
// each live address to a Record (requested size plus the call Site that produced it):
//
//   - Allocate(size, site): raw allocate, then register the address
//   - AllocateZeroed(count, size, site): Allocate of count*size bytes, zero-filled
//   - Release(p): raw release of a registered address, then unregister it
//   - Reallocate(p, size, site): shrink in place or allocate, copy, release
//
// Invalid operations never panic. Releasing nil, releasing an address the tracker never
// issued, releasing twice, or reallocating an untracked address are reported through the
// Logger and otherwise ignored. The only in-band failure signal is a nil address.
//
// # Reallocation
//
// Reallocate never grows a block in place:
//
//	size == 0            -> Release(p), returns nil
//	p not tracked        -> diagnostic, returns nil
//	size <= recorded     -> same address, record takes the new size and site
//	size >  recorded     -> new block, first recorded bytes copied, old block released
//
// When the new block cannot be allocated the old one stays valid and tracked.
//
// # Shutdown
//
// Enable registers the shutdown hook with the process exit hooks, at most once per
// Tracker. Finish runs the hook body at most once: every surviving entry is logged with its
// address, site and size, its memory is released, and the registry is cleared.
//
//	t := track.New(track.Options{Enabled: true, Logger: diag})
//	t.Enable()
//	p := t.Allocate(64, track.Caller(0))
//	...
//	report := t.Finish()
//
// # Thread Safety
//
// Tracker methods are safe for concurrent use; each operation runs as one critical section
// under the tracker's mutex. A Registry on its own is not synchronized.
package track
