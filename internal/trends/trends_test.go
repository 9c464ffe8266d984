package trends

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func newTestFetcher(t *testing.T, handler http.HandlerFunc) *Fetcher {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	f, err := NewFetcher(context.Background(), "test-api-key", 10,
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return f
}

func TestTrendingReturnsChartOrder(t *testing.T) {
	var gotQuery map[string][]string
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{
				{"id": "v1", "snippet": map[string]any{"title": "First Topic"}},
				{"id": "v2", "snippet": map[string]any{"title": "Second Topic"}},
			},
		})
	})

	topics, err := f.Trending(context.Background(), "US")
	require.NoError(t, err)

	require.Len(t, topics, 2)
	assert.Equal(t, Topic{Title: "First Topic", ID: "v1"}, topics[0])
	assert.Equal(t, Topic{Title: "Second Topic", ID: "v2"}, topics[1])

	assert.Equal(t, []string{"mostPopular"}, gotQuery["chart"])
	assert.Equal(t, []string{"US"}, gotQuery["regionCode"])
	assert.Equal(t, []string{"10"}, gotQuery["maxResults"])
}

func TestTrendingEmptyChartIsNotAnError(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"items": []any{}})
	})

	topics, err := f.Trending(context.Background(), "US")
	require.NoError(t, err)
	assert.Empty(t, topics)
}

func TestTrendingAPIError(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":403,"message":"quota exceeded"}}`, http.StatusForbidden)
	})

	_, err := f.Trending(context.Background(), "US")
	assert.Error(t, err)
}

func TestTrendingSkipsItemsWithoutSnippet(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{
				{"id": "v1"},
				{"id": "v2", "snippet": map[string]any{"title": "Kept"}},
			},
		})
	})

	topics, err := f.Trending(context.Background(), "US")
	require.NoError(t, err)
	require.Len(t, topics, 1)
	assert.Equal(t, "Kept", topics[0].Title)
}
