package rosterlock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLockNamesBlocksSameName(t *testing.T) {
	g := New()
	ctx := context.Background()

	release, err := g.LockNames(ctx, "guests", "alice")
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = g.LockNames(waitCtx, "guests", "alice")
	require.ErrorIs(t, err, ErrTimeout)

	release()

	release2, err := g.LockNames(ctx, "guests", "alice")
	require.NoError(t, err)
	release2()
}

func TestLockNamesDisjointNamesRunConcurrently(t *testing.T) {
	g := New()
	ctx := context.Background()

	release1, err := g.LockNames(ctx, "guests", "alice", "bob")
	require.NoError(t, err)
	defer release1()

	release2, err := g.LockNames(ctx, "guests", "carol")
	require.NoError(t, err)
	release2()
}

func TestLockNamesIsolatedPerRoster(t *testing.T) {
	g := New()
	ctx := context.Background()

	release, err := g.LockNames(ctx, "guests", "alice")
	require.NoError(t, err)
	defer release()

	// The same name on another roster is a different lock.
	release2, err := g.LockNames(ctx, "members", "alice")
	require.NoError(t, err)
	release2()
}

func TestLockNamesOverlappingPairsNeverDeadlock(t *testing.T) {
	g := New()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Opposite acquisition orders on the same pair; sorted locking makes
	// this safe no matter how the goroutines interleave.
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		names := []string{"alice", "bob"}
		if i%2 == 1 {
			names = []string{"bob", "alice"}
		}
		wg.Add(1)
		go func(names []string) {
			defer wg.Done()
			release, err := g.LockNames(ctx, "guests", names...)
			if err != nil {
				t.Error(err)
				return
			}
			release()
		}(names)
	}
	wg.Wait()
}

func TestLockNamesIgnoresEmptyAndDuplicateNames(t *testing.T) {
	g := New()
	ctx := context.Background()

	release, err := g.LockNames(ctx, "guests", "", "alice", "alice", "")
	require.NoError(t, err)
	release()

	// The duplicate was collapsed, so the name is free again.
	release, err = g.LockNames(ctx, "guests", "alice")
	require.NoError(t, err)
	release()
}

func TestLockRosterExcludesNameLocks(t *testing.T) {
	g := New()
	ctx := context.Background()

	release, err := g.LockRoster(ctx, "guests")
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = g.LockNames(waitCtx, "guests", "alice")
	require.ErrorIs(t, err, ErrTimeout)

	release()

	release2, err := g.LockNames(ctx, "guests", "alice")
	require.NoError(t, err)
	release2()
}

func TestLockRosterWaitsForNameLocks(t *testing.T) {
	g := New()
	ctx := context.Background()

	release, err := g.LockNames(ctx, "guests", "alice")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		rosterRelease, err := g.LockRoster(ctx, "guests")
		if err != nil {
			t.Error(err)
			return
		}
		rosterRelease()
	}()

	select {
	case <-done:
		t.Fatal("exclusive acquisition completed while a shared slot was held")
	case <-time.After(50 * time.Millisecond):
	}

	release()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("exclusive acquisition never completed after release")
	}
}
