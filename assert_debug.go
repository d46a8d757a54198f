//go:build debug

package reactor

import "fmt"

// assertInside panics if the calling goroutine is not the one currently
// executing f's batch (debug only).
//
// SealConnector relies on this (spec: "assert the current thread is
// executing as the owning reactor").
func assertInside(f *Frame) {
	if current, _ := currentExecutingFrame(); current != f {
		panic(fmt.Sprintf(
			"reactor: contract violation: method must be called from frame %q's own batch goroutine",
			f.name,
		))
	}
}
