package reactor

import "testing"

func boundsCheck(t *testing.T, s *spindownController, label string) {
	t.Helper()
	if s.spindown < s.cfg.SpindownMin || s.spindown > s.cfg.SpindownMax {
		t.Fatalf("%s: spindown = %d, want within [%d, %d]", label, s.spindown, s.cfg.SpindownMin, s.cfg.SpindownMax)
	}
}

// Invariant 6: after any batch, spindownMin <= spindown <= spindownMax.
func TestSpindownStaysWithinBounds(t *testing.T) {
	cfg := DefaultConfig()
	s := newSpindownController(cfg, 1)

	for batch := 0; batch < 2000; batch++ {
		s.beginBatch()
		score := batch % 3 // exercise both zero and nonzero scores
		s.afterBatch(score)
		boundsCheck(t, s, "after afterBatch")
	}
}

// Scenario 6: with a fixed low-throughput feed (one event per batch),
// spindown should settle near its floor; with a feed that lands a follow-up
// event shortly after each batch empties, spindown should climb above its
// initial value.
func TestSpindownAdaptsToFollowUpRate(t *testing.T) {
	cfg := Config{
		SpindownInitial:        16,
		SpindownMin:            4,
		SpindownMax:            64,
		SpindownMutationRate:   1.0,
		SpindownTestThreshold:  1,
		SpindownTestIterations: 1,
		SpindownCooldownRate:   4,
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("cfg.Validate: %v", err)
	}

	lowThroughput := newSpindownController(cfg, 42)
	for batch := 0; batch < 1000; batch++ {
		lowThroughput.beginBatch()
		// No follow-up event ever arrives during the spin window: score 0
		// every batch.
		lowThroughput.afterBatch(0)
	}
	if lowThroughput.spindown > cfg.SpindownMin+1 {
		t.Fatalf("low-throughput spindown = %d, want near the floor (%d)", lowThroughput.spindown, cfg.SpindownMin)
	}

	hitEvery := newSpindownController(cfg, 42)
	for batch := 0; batch < 1000; batch++ {
		hitEvery.beginBatch()
		// A follow-up event always lands: score 1 every batch.
		hitEvery.afterBatch(1)
	}
	if hitEvery.spindown <= cfg.SpindownInitial {
		t.Fatalf("steady-hit spindown = %d, want above the initial value (%d)", hitEvery.spindown, cfg.SpindownInitial)
	}
}

func TestSpindownSpinBreaksOnHit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SpindownInitial = 50
	s := newSpindownController(cfg, 7)
	s.beginBatch()

	calls := 0
	hitAtCall := 4 // polls happen at tick 10,20,...; this is the poll at tick 40
	popNextPending := func() (pendingConnector, bool) {
		calls++
		if calls == hitAtCall {
			return &fakePendingConnector{name: "hit"}, true
		}
		return nil, false
	}

	hit, score := s.spin(popNextPending)
	if hit == nil {
		t.Fatal("spin did not report a hit")
	}
	if score != 1 {
		t.Fatalf("spin score = %d, want 1", score)
	}
	if calls != hitAtCall {
		t.Fatalf("spin polled %d times before the hit, want exactly %d", calls, hitAtCall)
	}
}

func TestSpindownSpinExhaustsBudgetWithoutHit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SpindownInitial = 25
	s := newSpindownController(cfg, 7)
	s.beginBatch()

	hit, score := s.spin(func() (pendingConnector, bool) { return nil, false })
	if hit != nil {
		t.Fatalf("spin reported a hit with no pending connector ever offered: %v", hit)
	}
	if score != 0 {
		t.Fatalf("spin score = %d, want 0", score)
	}
	if s.spinsLeft != 0 {
		t.Fatalf("spinsLeft = %d after an exhausted spin, want 0", s.spinsLeft)
	}
}
