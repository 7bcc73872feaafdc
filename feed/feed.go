// Package feed provides price feed adapters: a synthetic random-walk
// generator for simulations, a CSV replay feed and a live Binance tick
// stream. Feeders are resolved through a registry of named factories
// populated at startup.
package feed

import (
	"fmt"
	"sync"
	"time"

	"github.com/StudioSol/set"
	"github.com/raykavin/fibflow/core"
)

// Options carries the construction parameters shared by feeder factories.
// Factories ignore the fields they do not need.
type Options struct {
	Symbol     string
	StartPrice float64
	Volatility float64
	Drift      float64
	Step       time.Duration
	Seed       int64
	File       string
	Log        core.Logger
}

// Factory builds a feeder from shared options
type Factory func(opts Options) (core.Feeder, error)

var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
	names      = set.NewLinkedHashSetString()
)

// Register adds a named feeder factory. Factories are registered from
// package init functions, so the set is complete at startup.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	factories[name] = factory
	names.Add(name)
}

// New resolves a feeder factory by name and builds the feeder.
func New(name string, opts Options) (core.Feeder, error) {
	registryMu.RLock()
	factory, ok := factories[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown feed %q (available: %v)", name, Names())
	}

	return factory(opts)
}

// Names returns the registered feed names in registration order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]string, 0, len(factories))
	for name := range names.Iter() {
		result = append(result, name)
	}
	return result
}
