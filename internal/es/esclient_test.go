package es

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/canteen/internal/models"
)

type fakeES struct {
	mu       sync.Mutex
	requests []string
	bodies   []string
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	f.bodies = append(f.bodies, string(body))
	f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodDelete && strings.HasSuffix(r.URL.Path, "/404"):
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"result":"not_found"}`))
	case strings.HasSuffix(r.URL.Path, "/_search"):
		_, _ = w.Write([]byte(`{"hits":{"hits":[{"_id":"3"},{"_id":"x"},{"_id":"1"}]}}`))
	case r.URL.Path == "/":
		_, _ = w.Write([]byte(`{"version":{"number":"9.0.0"},"tagline":"You Know, for Search"}`))
	default:
		_, _ = w.Write([]byte(`{"result":"ok"}`))
	}
}

func newTestIndex(t *testing.T) (*MenuIndex, *fakeES) {
	t.Helper()
	fake := &fakeES{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return &MenuIndex{Client: client, IndexName: "dishes"}, fake
}

func TestMenuIndex_Index(t *testing.T) {
	t.Parallel()

	idx, fake := newTestIndex(t)
	err := idx.Index(context.Background(), models.Dish{ID: 5, Name: "Borscht", Price: 120, Category: models.CategorySoups})
	require.NoError(t, err)

	require.NotEmpty(t, fake.requests)
	assert.Equal(t, "PUT /dishes/_doc/5", fake.requests[len(fake.requests)-1])

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(fake.bodies[len(fake.bodies)-1]), &doc))
	assert.Equal(t, "Borscht", doc["name"])
	assert.Equal(t, "soups", doc["category"])
}

func TestMenuIndex_Remove(t *testing.T) {
	t.Parallel()

	idx, fake := newTestIndex(t)
	require.NoError(t, idx.Remove(context.Background(), 5))
	require.NoError(t, idx.Remove(context.Background(), 404))
	assert.Contains(t, fake.requests, "DELETE /dishes/_doc/5")
}

func TestMenuIndex_Search(t *testing.T) {
	t.Parallel()

	idx, fake := newTestIndex(t)
	ids, err := idx.Search(context.Background(), "borsch")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1}, ids)

	last := fake.bodies[len(fake.bodies)-1]
	assert.Contains(t, last, "multi_match")
	assert.Contains(t, last, "borsch")
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(&fakeES{})
	t.Cleanup(srv.Close)

	client, err := NewClient(context.Background(), Config{URL: srv.URL})
	require.NoError(t, err)
	assert.NotNil(t, client)
}
