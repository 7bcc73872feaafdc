package engine

import (
	"math/rand"
	"sync"
)

// DefaultReentryProbability is the chance that a partial exit is followed
// by a rejection/retest re-entry.
const DefaultReentryProbability = 0.3

// ProbabilisticReentry draws a Bernoulli decision per partial exit. The
// generator is seeded explicitly so simulations can be replayed.
type ProbabilisticReentry struct {
	mu          sync.Mutex
	probability float64
	rng         *rand.Rand
}

// NewProbabilisticReentry creates the default re-entry policy.
func NewProbabilisticReentry(probability float64, seed int64) *ProbabilisticReentry {
	return &ProbabilisticReentry{
		probability: probability,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

// ShouldReenter implements core.ReentryPolicy.
func (p *ProbabilisticReentry) ShouldReenter(_, _ float64, _ bool) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.Float64() < p.probability
}
