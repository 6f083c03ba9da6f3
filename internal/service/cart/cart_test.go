package cart

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/canteen/internal/models"
	"github.com/Skotchmaster/canteen/internal/repo"
	"github.com/Skotchmaster/canteen/internal/repo/repotest"
)

const profile = "p-1"

func dish(id, price int) models.Dish {
	return models.Dish{ID: id, Name: "dish", Price: price, Category: models.CategoryMains}
}

func newTestCart(t *testing.T) *CartService {
	t.Helper()
	return &CartService{Store: repotest.New(t)}
}

func TestCart_AddItem_IncrementsExistingLine(t *testing.T) {
	t.Parallel()

	svc := newTestCart(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, profile, dish(1, 150))
	require.NoError(t, err)
	lines, err := svc.AddItem(ctx, profile, dish(1, 150))
	require.NoError(t, err)

	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestCart_Total(t *testing.T) {
	t.Parallel()

	svc := newTestCart(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, profile, dish(1, 150))
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, profile, dish(1, 150))
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, profile, dish(2, 80))
	require.NoError(t, err)

	total, err := svc.Total(ctx, profile)
	require.NoError(t, err)
	assert.Equal(t, 380, total)

	count, err := svc.Count(ctx, profile)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestCart_UpdateQuantity(t *testing.T) {
	t.Parallel()

	svc := newTestCart(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, profile, dish(1, 100))
	require.NoError(t, err)

	lines, err := svc.UpdateQuantity(ctx, profile, 1, 5)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)

	lines, err = svc.UpdateQuantity(ctx, profile, 42, 3)
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}

func TestCart_QuantityIsCapped(t *testing.T) {
	t.Parallel()

	svc := newTestCart(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, profile, dish(1, 150))
	require.NoError(t, err)

	_, err = svc.UpdateQuantity(ctx, profile, 1, math.MaxInt64/100)
	require.ErrorIs(t, err, ErrValidation)

	total, err := svc.Total(ctx, profile)
	require.NoError(t, err)
	assert.Equal(t, 150, total)

	lines, err := svc.UpdateQuantity(ctx, profile, 1, MaxQuantity)
	require.NoError(t, err)
	assert.Equal(t, MaxQuantity, lines[0].Quantity)

	_, err = svc.AddItem(ctx, profile, dish(1, 150))
	require.ErrorIs(t, err, ErrValidation)

	total, err = svc.Total(ctx, profile)
	require.NoError(t, err)
	assert.Equal(t, 150*MaxQuantity, total)
}

func TestCart_TakeEmptiesCart(t *testing.T) {
	t.Parallel()

	svc := newTestCart(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, profile, dish(1, 100))
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, profile, dish(2, 50))
	require.NoError(t, err)

	taken, err := svc.Take(ctx, profile)
	require.NoError(t, err)
	assert.Len(t, taken, 2)

	again, err := svc.Take(ctx, profile)
	require.NoError(t, err)
	assert.Empty(t, again)

	lines, err := svc.Lines(ctx, profile)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestCart_RestoreMergesWithNewLines(t *testing.T) {
	t.Parallel()

	svc := newTestCart(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, profile, dish(1, 100))
	require.NoError(t, err)
	_, err = svc.UpdateQuantity(ctx, profile, 1, 3)
	require.NoError(t, err)

	taken, err := svc.Take(ctx, profile)
	require.NoError(t, err)

	// added while the taken lines were away
	_, err = svc.AddItem(ctx, profile, dish(1, 100))
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, profile, dish(3, 40))
	require.NoError(t, err)

	require.NoError(t, svc.Restore(ctx, profile, taken))

	lines, err := svc.Lines(ctx, profile)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, 1, lines[0].ID)
	assert.Equal(t, 4, lines[0].Quantity)
	assert.Equal(t, 3, lines[1].ID)
	assert.Equal(t, 1, lines[1].Quantity)
}

func TestCart_UpdateQuantityZeroEqualsRemove(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	viaUpdate := newTestCart(t)
	viaRemove := newTestCart(t)

	for _, svc := range []*CartService{viaUpdate, viaRemove} {
		_, err := svc.AddItem(ctx, profile, dish(1, 100))
		require.NoError(t, err)
		_, err = svc.AddItem(ctx, profile, dish(2, 50))
		require.NoError(t, err)
	}

	a, err := viaUpdate.UpdateQuantity(ctx, profile, 1, 0)
	require.NoError(t, err)
	b, err := viaRemove.RemoveItem(ctx, profile, 1)
	require.NoError(t, err)
	assert.Equal(t, b, a)

	rawA, _, err := viaUpdate.Store.Get(ctx, repo.CartKey(profile))
	require.NoError(t, err)
	rawB, _, err := viaRemove.Store.Get(ctx, repo.CartKey(profile))
	require.NoError(t, err)
	assert.Equal(t, string(rawB), string(rawA))

	lines, err := viaUpdate.UpdateQuantity(ctx, profile, 2, -3)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestCart_RemoveMissingIsNoop(t *testing.T) {
	t.Parallel()

	svc := newTestCart(t)
	lines, err := svc.RemoveItem(context.Background(), profile, 7)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestCart_NeverDuplicatesDish(t *testing.T) {
	t.Parallel()

	svc := newTestCart(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 200; i++ {
		id := rng.Intn(4) + 1
		var err error
		switch rng.Intn(3) {
		case 0:
			_, err = svc.AddItem(ctx, profile, dish(id, 10*id))
		case 1:
			_, err = svc.RemoveItem(ctx, profile, id)
		default:
			_, err = svc.UpdateQuantity(ctx, profile, id, rng.Intn(5)-1)
		}
		require.NoError(t, err)

		lines, err := svc.Lines(ctx, profile)
		require.NoError(t, err)

		seen := map[int]bool{}
		want := 0
		for _, l := range lines {
			require.False(t, seen[l.ID], "duplicate line for dish %d", l.ID)
			seen[l.ID] = true
			require.Positive(t, l.Quantity)
			want += l.Price * l.Quantity
		}

		total, err := svc.Total(ctx, profile)
		require.NoError(t, err)
		require.Equal(t, want, total)
	}
}

func TestCart_ProfilesAreIsolated(t *testing.T) {
	t.Parallel()

	svc := newTestCart(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "a", dish(1, 100))
	require.NoError(t, err)

	lines, err := svc.Lines(ctx, "b")
	require.NoError(t, err)
	assert.Empty(t, lines)

	require.NoError(t, svc.Clear(ctx, "a"))
	lines, err = svc.Lines(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestCart_RequiresProfile(t *testing.T) {
	t.Parallel()

	svc := newTestCart(t)
	_, err := svc.AddItem(context.Background(), "", dish(1, 100))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.AddItem(context.Background(), profile, dish(0, 100))
	assert.ErrorIs(t, err, ErrValidation)
}
