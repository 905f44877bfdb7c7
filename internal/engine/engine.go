// Package engine implements the habit check-in lifecycle: recording and
// deleting check-ins, streak recomputation, achievement unlocks, and
// encouragement selection. All state lives in the injected store; the engine
// itself is stateless apart from its clock and RNG.
package engine

import (
	"math/rand"
	"time"

	"github.com/sproutapp/sprout/internal/storage"
)

// Engine coordinates check-in writes and derived-state reads against a
// storage.Provider.
type Engine struct {
	store storage.Provider
	now   func() time.Time
	rng   *rand.Rand
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the engine's time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRand overrides the RNG used for weighted encouragement draws.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// New returns an Engine backed by the given store.
func New(store storage.Provider, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		now:   time.Now,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}
