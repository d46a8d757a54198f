package reactor

// slotEntry is the tagged variant stored per connector name inside an
// Info: either a pending list of listeners waiting for a future channel, or
// the bound channel itself. Go has no native sum type, so this is
// represented as a struct where exactly one of the two fields is
// meaningful at a time, per the design note on representing Info's
// polymorphic values as a tagged variant rather than an untyped reference.
type slotEntry struct {
	listeners []chan any // fired once with the channel value, then discarded
	bound     any        // the Channel[T] value, type-erased
}

func (e slotEntry) isBound() bool { return e.bound != nil }

// Info is the registry's per-name record: the Frame currently registered
// under that name (nil if only listeners are pending) and an immutable map
// of connector-name -> slotEntry. Info values are never mutated in place;
// the registry replaces them wholesale via CAS.
type Info struct {
	frame      *Frame
	connectors map[string]slotEntry
}

// emptyInfo is the sentinel returned by Registry.ForName when no slot
// exists for a name at all.
var emptyInfo = &Info{}

func (info *Info) withFrame(f *Frame) *Info {
	return &Info{frame: f, connectors: info.connectors}
}

func (info *Info) withConnector(name string, channel any) *Info {
	next := &Info{frame: info.frame, connectors: make(map[string]slotEntry, len(info.connectors)+1)}
	for k, v := range info.connectors {
		next.connectors[k] = v
	}
	next.connectors[name] = slotEntry{bound: channel}
	return next
}

func (info *Info) withoutConnector(name string) *Info {
	next := &Info{frame: info.frame, connectors: make(map[string]slotEntry, len(info.connectors))}
	for k, v := range info.connectors {
		if k != name {
			next.connectors[k] = v
		}
	}
	return next
}

func (info *Info) withListener(name string, listener chan any) *Info {
	next := &Info{frame: info.frame, connectors: make(map[string]slotEntry, len(info.connectors)+1)}
	for k, v := range info.connectors {
		next.connectors[k] = v
	}
	entry := next.connectors[name]
	entry.listeners = append(append([]chan any{}, entry.listeners...), listener)
	next.connectors[name] = entry
	return next
}
