package track

import (
	"math/bits"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/joshuapare/memtrack/internal/atexit"
	"github.com/joshuapare/memtrack/internal/rawmem"
)

// Raw is the untracked allocation capability a Tracker wraps. Any rawmem backend
// satisfies it. Allocate must return nil or an address that is not currently live.
type Raw = rawmem.Allocator

// HookRegistrar accepts a function to run at normal process exit.
type HookRegistrar interface {
	Register(fn func())
}

type processHooks struct{}

func (processHooks) Register(fn func()) { atexit.Register(fn) }

// Options configures a Tracker.
type Options struct {
	// Enabled routes calls through the registry. When false every operation passes
	// straight through to Raw and nothing is reported.
	Enabled bool

	// Raw is the underlying allocator. Default: a Go-heap backend without limit.
	Raw Raw

	// Logger receives diagnostics and the leak report. Default: Discard.
	Logger Logger

	// Hooks is where Enable installs the shutdown hook. Default: the process exit hooks.
	Hooks HookRegistrar
}

// Tracker is the allocation-tracking layer.
type Tracker struct {
	mu      sync.Mutex
	reg     *Registry
	raw     Raw
	log     Logger
	hooks   HookRegistrar
	enabled bool

	registered atomic.Bool
	finishOnce sync.Once
	report     *Report
}

// New creates a Tracker.
func New(opts Options) *Tracker {
	t := &Tracker{
		reg:     NewRegistry(),
		raw:     opts.Raw,
		log:     opts.Logger,
		hooks:   opts.Hooks,
		enabled: opts.Enabled,
	}
	if t.raw == nil {
		t.raw = rawmem.NewHeap(0)
	}
	if t.log == nil {
		t.log = Discard
	}
	if t.hooks == nil {
		t.hooks = processHooks{}
	}
	return t
}

// Enabled reports whether calls are tracked.
func (t *Tracker) Enabled() bool { return t.enabled }

// Allocate requests size bytes and tracks the result. It returns nil when the raw
// allocator is exhausted.
func (t *Tracker) Allocate(size uint64, site Site) unsafe.Pointer {
	if !t.enabled {
		return t.raw.Allocate(size)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.allocate(size, site)
}

// AllocateZeroed allocates count*size zero-filled bytes. A product that overflows uint64
// is refused with nil instead of wrapping.
func (t *Tracker) AllocateZeroed(count, size uint64, site Site) unsafe.Pointer {
	if !t.enabled {
		return t.raw.AllocateZeroed(count, size)
	}

	hi, total := bits.Mul64(count, size)

	t.mu.Lock()
	defer t.mu.Unlock()

	if hi != 0 {
		t.log.Logf("allocation of %d x %d bytes overflows at %s", count, size, site)
		return nil
	}
	p := t.allocate(total, site)
	if p != nil {
		clear(rawmem.Bytes(p, total))
	}
	return p
}

// Release frees a tracked address. nil and untracked addresses are reported and ignored.
func (t *Tracker) Release(p unsafe.Pointer) {
	if !t.enabled {
		t.raw.Release(p)
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.release(p)
}

// Reallocate resizes a tracked block.
//
// Shrinking (or keeping the size) updates the record in place and returns p. Growing
// allocates a new block, copies the recorded bytes, releases p and returns the new
// address. A zero size releases p and returns nil. Untracked addresses, including nil,
// are reported and return nil. When growth fails p stays valid and tracked.
func (t *Tracker) Reallocate(p unsafe.Pointer, size uint64, site Site) unsafe.Pointer {
	if !t.enabled {
		return t.raw.Reallocate(p, size)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if size == 0 {
		t.release(p)
		return nil
	}

	rec, ok := t.reg.Find(p)
	if !ok {
		t.log.Logf("allocation %p is not valid", p)
		return nil
	}

	if size <= rec.Size {
		t.reg.Update(p, Record{Size: size, Site: site})
		return p
	}

	np := t.allocate(size, site)
	if np == nil {
		t.log.Logf("reallocation of %p to %d bytes failed at %s", p, size, site)
		return nil
	}
	copy(rawmem.Bytes(np, size), rawmem.Bytes(p, rec.Size))
	t.release(p)
	return np
}

// Lookup returns the record of a tracked address.
func (t *Tracker) Lookup(p unsafe.Pointer) (Record, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reg.Find(p)
}

// Live returns the number of tracked addresses.
func (t *Tracker) Live() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reg.Len()
}

// Snapshot lists the tracked allocations in address order without releasing anything.
func (t *Tracker) Snapshot() []Leak {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []Leak
	t.reg.ForEach(func(p unsafe.Pointer, rec Record) bool {
		out = append(out, Leak{Addr: uintptr(p), Site: rec.Site, Size: rec.Size})
		return true
	})
	return out
}

// allocate must be called with t.mu held.
func (t *Tracker) allocate(size uint64, site Site) unsafe.Pointer {
	p := t.raw.Allocate(size)
	if p == nil {
		return nil
	}
	rec := Record{Size: size, Site: site}
	if err := t.reg.Insert(p, rec); err != nil {
		// The raw allocator reissued a live address; the old record is stale.
		t.log.Logf("allocation %p at %s: %v", p, site, err)
		t.reg.Update(p, rec)
	}
	return p
}

// release must be called with t.mu held.
func (t *Tracker) release(p unsafe.Pointer) {
	if p == nil {
		t.log.Logf("pointer is nil")
		return
	}
	if _, ok := t.reg.Find(p); !ok {
		t.log.Logf("allocation %p is not valid", p)
		return
	}
	t.raw.Release(p)
	t.reg.Remove(p)
}
