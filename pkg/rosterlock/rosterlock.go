// Package rosterlock serializes ledger mutations per roster.
//
// Per-participant operations take a shared roster slot plus exclusive keyed
// locks on every name they touch (the mutated participant's names and any
// inviter named in the call) -- referral deltas land on a different record
// than the one being mutated, so keying by name is what actually serializes
// them. Full-roster operations (discount toggles, recompute) take the roster
// exclusively and block out all per-participant work for their duration.
//
// All acquisitions are bounded by the caller's context; an expired wait
// surfaces as ErrTimeout and the caller decides whether to retry.
package rosterlock

import (
	"context"
	"errors"
	"sort"
	"sync"

	"golang.org/x/sync/semaphore"
)

// ErrTimeout reports a lock wait that exceeded the caller's deadline.
var ErrTimeout = errors.New("lock wait timed out")

// maxShared bounds how many per-participant operations may run concurrently
// inside one roster. An exclusive acquisition claims all slots at once.
const maxShared = 64

// Guard hands out roster-scoped locks. The zero value is not usable; call New.
type Guard struct {
	mu      sync.Mutex
	rosters map[string]*rosterGuard
}

type rosterGuard struct {
	slots *semaphore.Weighted

	mu    sync.Mutex
	names map[string]*semaphore.Weighted
}

// New returns an empty Guard.
func New() *Guard {
	return &Guard{rosters: make(map[string]*rosterGuard)}
}

func (g *Guard) roster(key string) *rosterGuard {
	g.mu.Lock()
	defer g.mu.Unlock()
	rg, ok := g.rosters[key]
	if !ok {
		rg = &rosterGuard{
			slots: semaphore.NewWeighted(maxShared),
			names: make(map[string]*semaphore.Weighted),
		}
		g.rosters[key] = rg
	}
	return rg
}

func (rg *rosterGuard) name(key string) *semaphore.Weighted {
	rg.mu.Lock()
	defer rg.mu.Unlock()
	sem, ok := rg.names[key]
	if !ok {
		// Name semaphores are never evicted; rosters are event-sized, so the
		// map stays small for the process lifetime.
		sem = semaphore.NewWeighted(1)
		rg.names[key] = sem
	}
	return sem
}

// LockRoster acquires the roster exclusively. The returned release function
// must be called exactly once.
func (g *Guard) LockRoster(ctx context.Context, roster string) (func(), error) {
	rg := g.roster(roster)
	if err := rg.slots.Acquire(ctx, maxShared); err != nil {
		return nil, ErrTimeout
	}
	return func() { rg.slots.Release(maxShared) }, nil
}

// LockNames acquires a shared roster slot plus exclusive locks on the given
// names. Names are deduplicated and locked in sorted order so two operations
// touching the same pair can never deadlock. Empty names are ignored.
func (g *Guard) LockNames(ctx context.Context, roster string, names ...string) (func(), error) {
	keys := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		keys = append(keys, n)
	}
	sort.Strings(keys)

	rg := g.roster(roster)
	if err := rg.slots.Acquire(ctx, 1); err != nil {
		return nil, ErrTimeout
	}

	held := make([]*semaphore.Weighted, 0, len(keys))
	releaseAll := func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Release(1)
		}
		rg.slots.Release(1)
	}

	for _, key := range keys {
		sem := rg.name(key)
		if err := sem.Acquire(ctx, 1); err != nil {
			releaseAll()
			return nil, ErrTimeout
		}
		held = append(held, sem)
	}
	return releaseAll, nil
}
