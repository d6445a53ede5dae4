package auth

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRevocationList(t *testing.T) {
	ctx := context.Background()
	list := NewMemoryRevocationList()

	revoked, err := list.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, list.Revoke(ctx, "a", time.Now().Add(time.Hour)))
	require.NoError(t, list.Revoke(ctx, "a", time.Now().Add(time.Hour)))
	assert.Equal(t, 1, list.Len())

	revoked, err = list.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestMemoryRevocationListSweep(t *testing.T) {
	ctx := context.Background()
	list := NewMemoryRevocationList()
	now := time.Now()

	require.NoError(t, list.Revoke(ctx, "expired", now.Add(-time.Minute)))
	require.NoError(t, list.Revoke(ctx, "live", now.Add(time.Hour)))

	assert.Equal(t, 1, list.Sweep(now))
	assert.Equal(t, 1, list.Len())

	revoked, err := list.IsRevoked(ctx, "live")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestMemoryRevocationListKeepsLatestExpiry(t *testing.T) {
	ctx := context.Background()
	list := NewMemoryRevocationList()
	now := time.Now()

	require.NoError(t, list.Revoke(ctx, "a", now.Add(time.Hour)))
	require.NoError(t, list.Revoke(ctx, "a", now.Add(-time.Hour)))

	assert.Zero(t, list.Sweep(now))
	assert.Equal(t, 1, list.Len())
}

func TestMemoryRevocationListConcurrentUse(t *testing.T) {
	ctx := context.Background()
	list := NewMemoryRevocationList()
	exp := time.Now().Add(time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			jti := fmt.Sprintf("jti-%d", i%10)
			_ = list.Revoke(ctx, jti, exp)
			_, _ = list.IsRevoked(ctx, jti)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, list.Len())
}

func TestRunSweeperStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	list := NewMemoryRevocationList()
	require.NoError(t, list.Revoke(ctx, "old", time.Now().Add(-time.Second)))

	swept := make(chan int, 1)
	done := make(chan struct{})
	go func() {
		list.RunSweeper(ctx, 5*time.Millisecond, func(removed int) {
			select {
			case swept <- removed:
			default:
			}
		})
		close(done)
	}()

	select {
	case removed := <-swept:
		assert.Equal(t, 1, removed)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not run")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
