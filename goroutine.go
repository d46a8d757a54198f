package reactor

import (
	"fmt"
	"runtime"
	"sync"
)

// currentGoroutineID parses the running goroutine's id out of its stack
// trace header ("goroutine 123 [running]:\n"). Go has no native
// goroutine-local storage, so this is the cheapest available substitute;
// it is only ever called on the cold paths of ExecuteBatch entry/exit and
// the debug-only assertions, never per event.
func currentGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	var id uint64
	_, _ = fmt.Sscanf(string(buf[:n]), "goroutine %d ", &id)
	return id
}

// executingFrames tracks which Frame, if any, a goroutine is currently
// running a batch for. It backs the NestedExecution precondition of
// ExecuteBatch (spec §4.5) and the debug-only isolation assertions.
var executingFrames sync.Map // goroutine id (uint64) -> *Frame

// enterExecution records that the calling goroutine is now executing f's
// batch. It fails with ErrNestedExecution if the goroutine is already
// executing some Frame's batch.
func enterExecution(f *Frame) error {
	gid := currentGoroutineID()
	if _, loaded := executingFrames.LoadOrStore(gid, f); loaded {
		return ErrNestedExecution
	}
	return nil
}

// exitExecution clears the calling goroutine's executing-Frame marker.
func exitExecution() {
	executingFrames.Delete(currentGoroutineID())
}

// currentExecutingFrame returns the Frame the calling goroutine is
// currently executing a batch for, if any.
func currentExecutingFrame() (*Frame, bool) {
	v, ok := executingFrames.Load(currentGoroutineID())
	if !ok {
		return nil, false
	}
	return v.(*Frame), true
}
