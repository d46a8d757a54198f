package reactor

import (
	"sync"
	"sync/atomic"
)

// Registry is the process-wide name -> Info map described in the design:
// reads are lock-free (a sync.Map lookup plus an atomic pointer load),
// writers CAS-loop on a per-name slot. A slot may exist holding only a
// listener list (subscribers waiting for a future Connector of that name)
// before any Frame ever registers under it.
type Registry struct {
	slots sync.Map // name string -> *atomic.Pointer[Info]
}

// globalRegistry is the single process-wide registry this package's Frames
// and Connectors register against. It is package-private: remote channel
// resolution and multi-registry scoping are out of scope here.
var globalRegistry = &Registry{}

func (r *Registry) slotFor(name string) *atomic.Pointer[Info] {
	if v, ok := r.slots.Load(name); ok {
		return v.(*atomic.Pointer[Info])
	}
	p := new(atomic.Pointer[Info])
	v, _ := r.slots.LoadOrStore(name, p)
	return v.(*atomic.Pointer[Info])
}

// ForName returns the current Info for name, or the empty sentinel Info if
// no slot exists yet.
func (r *Registry) ForName(name string) *Info {
	v, ok := r.slots.Load(name)
	if !ok {
		return emptyInfo
	}
	info := v.(*atomic.Pointer[Info]).Load()
	if info == nil {
		return emptyInfo
	}
	return info
}

// TryReplace atomically swaps the slot for name from expected to next,
// creating the slot on first use. Returns false if another mutator won the
// race; the caller restarts from ForName.
func (r *Registry) TryReplace(name string, expected, next *Info) bool {
	slot := r.slotFor(name)
	want := expected
	if want == emptyInfo {
		want = nil // slot was never written; its actual zero value is nil
	}
	return slot.CompareAndSwap(want, next)
}

// TryRelease removes the slot for name provided its Info has no remaining
// bound or pending connectors. Best-effort: a concurrent listener
// subscription attaching to the same name defeats it silently, matching
// the spec's documented race (see DESIGN.md).
func (r *Registry) TryRelease(name string) {
	v, ok := r.slots.Load(name)
	if !ok {
		return
	}
	slot := v.(*atomic.Pointer[Info])
	info := slot.Load()
	if info == nil || len(info.connectors) != 0 {
		return
	}
	r.slots.CompareAndDelete(name, v)
}

// retireAllConnectors drops every connector entry for name, so that a
// Terminated Frame's slot becomes eligible for TryRelease even if some of
// its connectors were never explicitly sealed. Invariant (spec §3, #2)
// requires the registry entry to be released "eventually" once a Frame
// terminates, regardless of how many connectors were still open.
func (r *Registry) retireAllConnectors(name string) {
	for {
		info := r.ForName(name)
		if len(info.connectors) == 0 {
			return
		}
		next := &Info{frame: info.frame, connectors: map[string]slotEntry{}}
		if r.TryReplace(name, info, next) {
			return
		}
	}
}

// registerFrame inserts f into the registry under f.name, failing with
// ErrNameInUse if a Frame is already registered there.
func registerFrame(f *Frame) error {
	for {
		info := globalRegistry.ForName(f.name)
		if info.frame != nil {
			return ErrNameInUse
		}
		next := info.withFrame(f)
		if globalRegistry.TryReplace(f.name, info, next) {
			return nil
		}
	}
}

// AwaitChannel returns a channel that receives the bound Channel value for
// connectorName once some Frame opens a Connector under that name inside
// the Frame registered as frameName. If already bound, the value is
// delivered immediately through a buffered, pre-closed channel.
func AwaitChannel(frameName, connectorName string) <-chan any {
	result := make(chan any, 1)
	for {
		info := globalRegistry.ForName(frameName)
		if entry, ok := info.connectors[connectorName]; ok && entry.isBound() {
			result <- entry.bound
			close(result)
			return result
		}
		next := info.withListener(connectorName, result)
		if globalRegistry.TryReplace(frameName, info, next) {
			return result
		}
	}
}
