package reactor

import "sync/atomic"

var frameUIDCounter atomic.Uint64

// nextFrameUID allocates a process-unique monotonic Frame identifier.
func nextFrameUID() uint64 { return frameUIDCounter.Add(1) }
