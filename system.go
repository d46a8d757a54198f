package reactor

import (
	"fmt"

	"github.com/google/uuid"
)

// System is the Reactor System registry-level entry point described in
// spec §1/§6: the place Frames are spawned from and handed to a Scheduler.
// It owns no per-reactor mutable state itself — that lives in each Frame.
type System struct {
	scheduler Scheduler
	debug     DebugAPI
	cfg       Config
}

// SystemOptions configures NewSystem. A zero value is valid: it starts a
// default pool Scheduler, a no-op DebugAPI, and DefaultConfig.
type SystemOptions struct {
	Scheduler Scheduler
	Debug     DebugAPI
	Config    Config
}

// NewSystem constructs a System ready to Spawn Frames.
func NewSystem(opts SystemOptions) *System {
	if opts.Scheduler == nil {
		opts.Scheduler = NewPoolScheduler(PoolSchedulerOptions{})
	}
	if opts.Debug == nil {
		opts.Debug = noopDebugAPI{}
	}
	cfg := opts.Config
	if cfg == (Config{}) {
		cfg = DefaultConfig()
	}
	return &System{scheduler: opts.Scheduler, debug: opts.Debug, cfg: cfg}
}

// FrameOptions configures a new Frame.
type FrameOptions struct {
	// Name is the registry name; if empty, an anonymous name is
	// generated.
	Name string
	// URL is the stable channel-addressing identity; if empty, it is
	// derived from Name plus a generated uuid.
	URL string
	// Proto constructs the reactor object on the Frame's first batch.
	Proto Proto
	// Config overrides the System's default spindown Config for this
	// Frame only.
	Config *Config
}

// Spawn registers a new Frame, opens its default and internal Connectors,
// and activates it so its first batch (and reactor construction) runs on
// the System's Scheduler.
func (s *System) Spawn(opts FrameOptions) (*Frame, error) {
	if opts.Proto == nil {
		return nil, fmt.Errorf("reactor: FrameOptions.Proto is required")
	}

	name := opts.Name
	if name == "" {
		name = fmt.Sprintf("anon-%d", nextFrameUID())
	}
	url := opts.URL
	if url == "" {
		url = fmt.Sprintf("local://%s/%s", name, uuid.New().String())
	}

	cfg := s.cfg
	if opts.Config != nil {
		cfg = *opts.Config
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	f := newFrame(s, name, url, opts.Proto, cfg, int64(nextFrameUID()))
	if err := registerFrame(f); err != nil {
		return nil, err
	}

	def, err := OpenConnector(f, ConnectorOptions[any]{
		Name:    "default",
		Handler: func(event any) { f.Reactor().OnEvent(event) },
	})
	if err != nil {
		return nil, err
	}
	f.defaultConnector = def

	internal, err := OpenConnector(f, ConnectorOptions[any]{
		Name:     "internal",
		IsDaemon: true,
	})
	if err != nil {
		return nil, err
	}
	f.internalConnector = internal

	f.Activate(false)
	return f, nil
}
