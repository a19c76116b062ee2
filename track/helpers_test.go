package track

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"unsafe"

	"github.com/joshuapare/memtrack/internal/rawmem"
)

// recorder is a Logger that keeps every rendered message.
type recorder struct {
	mu   sync.Mutex
	msgs []string
}

func (r *recorder) Logf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, fmt.Sprintf(format, args...))
}

func (r *recorder) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.msgs...)
}

func (r *recorder) contains(sub string) bool {
	for _, m := range r.messages() {
		if strings.Contains(m, sub) {
			return true
		}
	}
	return false
}

// hookList is a HookRegistrar that only collects hooks.
type hookList struct {
	fns []func()
}

func (h *hookList) Register(fn func()) { h.fns = append(h.fns, fn) }

func (h *hookList) run() {
	for _, fn := range h.fns {
		fn()
	}
}

// dirtyRaw hands out blocks pre-filled with 0xAA so zeroing is observable.
type dirtyRaw struct {
	*rawmem.Heap
}

func (d dirtyRaw) Allocate(size uint64) unsafe.Pointer {
	p := d.Heap.Allocate(size)
	buf := rawmem.Bytes(p, size)
	for i := range buf {
		buf[i] = 0xAA
	}
	return p
}

// stuckRaw returns the same address for every allocation.
type stuckRaw struct {
	*rawmem.Heap
	p unsafe.Pointer
}

func (s *stuckRaw) Allocate(size uint64) unsafe.Pointer {
	if s.p == nil {
		s.p = s.Heap.Allocate(64)
	}
	return s.p
}

type fixture struct {
	t    *Tracker
	raw  *rawmem.Heap
	log  *recorder
	hook *hookList
}

func newFixture(tb testing.TB, limit uint64) *fixture {
	tb.Helper()
	f := &fixture{raw: rawmem.NewHeap(limit), log: &recorder{}, hook: &hookList{}}
	f.t = New(Options{Enabled: true, Raw: f.raw, Logger: f.log, Hooks: f.hook})
	return f
}

func fill(p unsafe.Pointer, n uint64, seed byte) {
	buf := rawmem.Bytes(p, n)
	for i := range buf {
		buf[i] = seed + byte(i)
	}
}
