package repo_test

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/canteen/internal/repo"
	"github.com/Skotchmaster/canteen/internal/repo/repotest"
)

func exerciseStore(t *testing.T, s repo.Store) {
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, "k", []byte(`{"a":1}`)))
	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"a":1}`, string(got))

	require.NoError(t, s.Put(ctx, "k", []byte(`{"a":2}`)))
	got, _, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"a":2}`, string(got))

	require.NoError(t, s.Delete(ctx, "k"))
	_, ok, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGormRepo(t *testing.T) {
	exerciseStore(t, repotest.New(t))
}

func TestRedisRepo(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR is required for redis tests")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	exerciseStore(t, repo.NewRedisRepo(client, "canteen-test:"))
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	s := repotest.New(t)

	type payload struct {
		Lines []int `json:"lines"`
	}

	var dst payload
	ok, err := repo.GetJSON(ctx, s, repo.CartKey("p1"), &dst)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.PutJSON(ctx, s, repo.CartKey("p1"), payload{Lines: []int{1, 2}}))
	ok, err = repo.GetJSON(ctx, s, repo.CartKey("p1"), &dst)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []int{1, 2}, dst.Lines)

	require.NoError(t, s.Put(ctx, repo.KeyOrders, []byte("not json")))
	_, err = repo.GetJSON(ctx, s, repo.KeyOrders, &dst)
	require.Error(t, err)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "profile:abc:cart", repo.CartKey("abc"))
	assert.Equal(t, "profile:abc:session", repo.SessionKey("abc"))
}
