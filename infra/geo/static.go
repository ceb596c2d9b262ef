// Package geo provides distance provider adapters: a static table for tests
// and demo mode, an HTTP routing service client, and a Redis read-through
// cache that can wrap either.
package geo

import (
	"context"
	"fmt"
	"sync"

	coregeo "github.com/ChrisCryptoBot/meddropdispatch-sub004/core/geo"
)

// StaticProvider resolves distances from a fixed table keyed "from|to".
// Lookups fall back to the reverse direction before failing.
type StaticProvider struct {
	mu   sync.RWMutex
	legs map[string]coregeo.Leg
}

// NewStaticProvider builds a provider from the given table. The map may be
// nil; legs can be added later with Set.
func NewStaticProvider(legs map[string]coregeo.Leg) *StaticProvider {
	if legs == nil {
		legs = map[string]coregeo.Leg{}
	}
	return &StaticProvider{legs: legs}
}

// Set records the travel cost between two locations, both directions.
func (p *StaticProvider) Set(from, to string, leg coregeo.Leg) {
	p.mu.Lock()
	p.legs[key(from, to)] = leg
	p.legs[key(to, from)] = leg
	p.mu.Unlock()
}

func (p *StaticProvider) Distance(_ context.Context, from, to string) (coregeo.Leg, error) {
	if from == to {
		return coregeo.Leg{}, nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if leg, ok := p.legs[key(from, to)]; ok {
		return leg, nil
	}
	if leg, ok := p.legs[key(to, from)]; ok {
		return leg, nil
	}
	return coregeo.Leg{}, fmt.Errorf("no distance entry from %q to %q", from, to)
}

func key(from, to string) string { return from + "|" + to }
