package app

import (
	"math/rand"

	"geoplay-service/internal/domain"
)

// Sequencer holds the targets not yet asked in the current session and draws
// them uniformly at random without replacement.
type Sequencer struct {
	rnd  *rand.Rand
	pool []domain.Target
}

// NewSequencer builds a sequencer over an injected random source so draws are
// reproducible in tests.
func NewSequencer(rnd *rand.Rand) *Sequencer {
	return &Sequencer{rnd: rnd}
}

// Load replaces the pool. Targets sharing a name keep only the first entry.
func (q *Sequencer) Load(targets []domain.Target) {
	seen := make(map[string]struct{}, len(targets))
	pool := make([]domain.Target, 0, len(targets))
	for _, t := range targets {
		if t.Name == "" {
			continue
		}
		if _, dup := seen[t.Name]; dup {
			continue
		}
		seen[t.Name] = struct{}{}
		pool = append(pool, t)
	}
	q.pool = pool
}

// Draw removes and returns a random target, or ErrPoolExhausted once every
// target has been drawn.
func (q *Sequencer) Draw() (domain.Target, error) {
	if len(q.pool) == 0 {
		return domain.Target{}, domain.ErrPoolExhausted
	}
	i := q.rnd.Intn(len(q.pool))
	target := q.pool[i]
	q.pool = append(q.pool[:i:i], q.pool[i+1:]...)
	return target, nil
}

func (q *Sequencer) Remaining() int {
	return len(q.pool)
}

// Clear drops the remaining pool.
func (q *Sequencer) Clear() {
	q.pool = nil
}
