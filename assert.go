//go:build !debug

package reactor

// assertInside panics if the calling goroutine is not the one currently
// executing f's batch (debug only).
func assertInside(f *Frame) {}
