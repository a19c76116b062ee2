package track

import "unsafe"

// Leak is one allocation that was still tracked when the report was taken.
type Leak struct {
	Addr uintptr
	Site Site
	Size uint64
}

// Report is the result of the shutdown hook.
type Report struct {
	Leaks []Leak
	Bytes uint64 // sum of leaked sizes
}

// Empty reports whether nothing leaked.
func (r *Report) Empty() bool { return r == nil || len(r.Leaks) == 0 }

// Enable installs the shutdown hook. Repeated calls install it once.
func (t *Tracker) Enable() {
	if t.registered.CompareAndSwap(false, true) {
		t.hooks.Register(func() { t.Finish() })
	}
}

// Finish runs the shutdown hook body once and returns its report; later calls return the
// same report. Every surviving allocation is logged, released and forgotten.
func (t *Tracker) Finish() *Report {
	t.finishOnce.Do(func() {
		t.report = t.drain()
	})
	return t.report
}

func (t *Tracker) drain() *Report {
	rep := &Report{}
	if !t.enabled {
		return rep
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.reg.Len() == 0 {
		return rep
	}

	t.log.Logf("detected memory leaks")
	t.reg.ForEach(func(p unsafe.Pointer, rec Record) bool {
		t.log.Logf("pointer: %p\n%s\nsize: %d", p, rec.Site, rec.Size)
		rep.Leaks = append(rep.Leaks, Leak{Addr: uintptr(p), Site: rec.Site, Size: rec.Size})
		rep.Bytes += rec.Size
		t.raw.Release(p)
		return true
	})
	t.reg.Clear()
	return rep
}
