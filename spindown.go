package reactor

import "math/rand"

// spindownController is the per-Frame adaptive spin-count tuner of spec
// §4.7. Its random generator is seeded per Frame (design note) so that many
// Frames spinning concurrently never contend on a shared global source.
type spindownController struct {
	cfg Config

	spindown  int
	spinsLeft int

	totalBatches int64
	totalScore   int64

	rng *rand.Rand
}

func newSpindownController(cfg Config, seed int64) *spindownController {
	return &spindownController{
		cfg:      cfg,
		spindown: cfg.SpindownInitial,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// beginBatch resets the spin budget for the batch about to run.
func (s *spindownController) beginBatch() {
	s.spinsLeft = s.spindown
}

// spin runs up to spindown iterations, polling popNextPending every tenth
// tick. It returns the first hit (if any) and the score for this spin
// (0 or 1 — at most one hit breaks the spin, per spec: "A hit breaks the
// spin, resumes draining").
func (s *spindownController) spin(popNextPending func() (pendingConnector, bool)) (hit pendingConnector, score int) {
	tick := 0
	for s.spinsLeft > 0 {
		s.spinsLeft--
		tick++
		if tick%10 == 0 {
			if c, ok := popNextPending(); ok {
				return c, 1
			}
		}
	}
	return nil, 0
}

// afterBatch folds this batch's spindown score into the running totals and
// recomputes spindown per spec §4.7's formula.
func (s *spindownController) afterBatch(score int) {
	s.totalBatches++
	s.totalScore += int64(score)

	mutate := score >= 1
	if !mutate && s.rng.Float64() < s.cfg.SpindownMutationRate {
		mutate = true
	}

	if mutate {
		coef := float64(s.totalScore) / float64(s.totalBatches)
		if s.totalBatches >= int64(s.cfg.SpindownTestThreshold) {
			iters := s.cfg.SpindownTestIterations
			if iters <= 0 {
				iters = 1
			}
			ramp := 1 - float64(s.totalBatches-int64(s.cfg.SpindownTestThreshold))/float64(iters)
			if ramp < 0 {
				ramp = 0
			}
			coef += ramp
		}
		coef = clamp01(coef)
		s.spindown = int(float64(s.cfg.SpindownMax) * coef)
	}

	// Unconditional cooldown.
	s.spindown -= s.spindown/s.cfg.SpindownCooldownRate + 1

	if s.spindown < s.cfg.SpindownMin {
		s.spindown = s.cfg.SpindownMin
	}
	if s.spindown > s.cfg.SpindownMax {
		s.spindown = s.cfg.SpindownMax
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
