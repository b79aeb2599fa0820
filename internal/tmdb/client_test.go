package tmdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/movie/42", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "Bearer tkn", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id":42,"title":"Hitchhiker"}`))
	})
	mux.HandleFunc("/movie/500", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status_message":"boom"}`, http.StatusInternalServerError)
	})
	mux.HandleFunc("/search/movie", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "the matrix", r.URL.Query().Get("query"))
		_, _ = w.Write([]byte(`{"page":1,"results":[{"id":603,"title":"The Matrix"}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_GetMovieDetailsIsCached(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := newTestServer(t, &hits)
	c := NewClient(srv.URL+"/", "tkn", time.Minute)

	for i := 0; i < 3; i++ {
		d, err := c.GetMovieDetails(context.Background(), 42)
		require.NoError(t, err)
		assert.Equal(t, "Hitchhiker", d["title"])
	}
	assert.EqualValues(t, 1, hits.Load())
}

func TestClient_NoCache(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := newTestServer(t, &hits)
	c := NewClient(srv.URL, "tkn", 0)

	for i := 0; i < 2; i++ {
		_, err := c.GetMovieDetails(context.Background(), 42)
		require.NoError(t, err)
	}
	assert.EqualValues(t, 2, hits.Load())
}

func TestClient_Non200IsUpstreamError(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := newTestServer(t, &hits)
	c := NewClient(srv.URL, "tkn", time.Minute)

	_, err := c.GetMovieDetails(context.Background(), 500)
	require.ErrorIs(t, err, ErrUpstream)
	assert.Contains(t, err.Error(), "500")

	_, err = c.GetMovieDetails(context.Background(), 404)
	require.ErrorIs(t, err, ErrUpstream)
}

func TestClient_SearchMovies(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := newTestServer(t, &hits)
	c := NewClient(srv.URL, "tkn", 0)

	results, err := c.SearchMovies(context.Background(), "the matrix")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "The Matrix", results[0]["title"])
}

func TestClient_UnreachableHost(t *testing.T) {
	t.Parallel()

	c := NewClient("http://127.0.0.1:1", "tkn", 0)
	_, err := c.SearchMovies(context.Background(), "x")
	require.ErrorIs(t, err, ErrUpstream)
}
