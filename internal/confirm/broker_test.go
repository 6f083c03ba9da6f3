package confirm

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counter(n *atomic.Int32) Action {
	return func(context.Context) error {
		n.Add(1)
		return nil
	}
}

func TestBroker_ApproveRunsOnce(t *testing.T) {
	t.Parallel()

	b := NewBroker(time.Minute)
	ctx := context.Background()
	var runs atomic.Int32

	id := b.Ask(ctx, "delete dish 1", counter(&runs))
	assert.Equal(t, 1, b.Pending())

	out, err := b.Resolve(ctx, id, true)
	require.NoError(t, err)
	assert.True(t, out.Approved)
	assert.NoError(t, out.Err)
	assert.EqualValues(t, 1, runs.Load())

	_, err = b.Resolve(ctx, id, true)
	assert.ErrorIs(t, err, ErrAlreadyResolved)
	assert.EqualValues(t, 1, runs.Load())
	assert.Equal(t, 0, b.Pending())
}

func TestBroker_RejectDiscards(t *testing.T) {
	t.Parallel()

	b := NewBroker(time.Minute)
	ctx := context.Background()
	var runs atomic.Int32

	id := b.Ask(ctx, "delete dish 1", counter(&runs))
	out, err := b.Resolve(ctx, id, false)
	require.NoError(t, err)
	assert.False(t, out.Approved)
	assert.EqualValues(t, 0, runs.Load())

	_, err = b.Resolve(ctx, id, true)
	assert.ErrorIs(t, err, ErrAlreadyResolved)
	assert.EqualValues(t, 0, runs.Load())
}

func TestBroker_Unknown(t *testing.T) {
	t.Parallel()

	_, err := NewBroker(time.Minute).Resolve(context.Background(), "nope", true)
	assert.ErrorIs(t, err, ErrUnknown)
}

func TestBroker_ActionErrorIsReported(t *testing.T) {
	t.Parallel()

	b := NewBroker(time.Minute)
	boom := errors.New("boom")
	id := b.Ask(context.Background(), "fail", func(context.Context) error { return boom })

	out, err := b.Resolve(context.Background(), id, true)
	require.NoError(t, err)
	assert.ErrorIs(t, out.Err, boom)
}

func TestBroker_ExpiresAsReject(t *testing.T) {
	t.Parallel()

	b := NewBroker(20 * time.Millisecond)
	var runs atomic.Int32
	id := b.Ask(context.Background(), "slow admin", counter(&runs))

	require.Eventually(t, func() bool { return b.Pending() == 0 }, time.Second, 5*time.Millisecond)

	_, err := b.Resolve(context.Background(), id, true)
	assert.True(t, errors.Is(err, ErrAlreadyResolved) || errors.Is(err, ErrUnknown))
	assert.EqualValues(t, 0, runs.Load())
}

func TestBroker_ConcurrentResolveExactlyOnce(t *testing.T) {
	t.Parallel()

	b := NewBroker(time.Minute)
	ctx := context.Background()
	var runs atomic.Int32
	id := b.Ask(ctx, "race", counter(&runs))

	var (
		wg      sync.WaitGroup
		winners atomic.Int32
		losers  atomic.Int32
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := b.Resolve(ctx, id, true)
			switch {
			case err == nil:
				winners.Add(1)
			case errors.Is(err, ErrAlreadyResolved):
				losers.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, winners.Load())
	assert.EqualValues(t, 15, losers.Load())
	assert.EqualValues(t, 1, runs.Load())
}
