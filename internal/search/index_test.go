package search

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

	"github.com/Skotchmaster/watchit/internal/models"
)

type recorded struct {
	method, path, body string
}

// fakeES answers like an Elasticsearch node and records every request.
func fakeES(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*elasticsearch.Client, *[]recorded) {
	t.Helper()
	var (
		mu   sync.Mutex
		reqs []recorded
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, recorded{method: r.Method, path: r.URL.Path, body: string(b)})
		mu.Unlock()
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return es, &reqs
}

func TestIndex_SearchMovies(t *testing.T) {
	t.Parallel()

	es, reqs := fakeES(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"hits":{"total":{"value":2},"hits":[
			{"_source":{"id":1,"title":"The Matrix","genre":"sci-fi","rating":8.7}},
			{"_source":{"id":3,"title":"Matrix Reloaded","genre":"sci-fi","rating":7.2}}]}}`)
	})
	idx := New(es, "movies")

	movies, total, err := idx.SearchMovies(context.Background(), "matrix", 10, 5)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, movies, 2)
	assert.Equal(t, "The Matrix", movies[0].Title)
	assert.EqualValues(t, 3, movies[1].ID)

	require.Len(t, *reqs, 1)
	req := (*reqs)[0]
	assert.Equal(t, "/movies/_search", req.path)
	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(req.body), &body))
	assert.EqualValues(t, 10, body["from"])
	assert.EqualValues(t, 5, body["size"])
}

func TestIndex_IndexMovie(t *testing.T) {
	t.Parallel()

	es, reqs := fakeES(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"result":"created"}`)
	})
	idx := New(es, "movies")

	err := idx.IndexMovie(context.Background(), models.Movie{ID: 7, Title: "Heat", Genre: "crime", Rating: 8.3})
	require.NoError(t, err)
	require.Len(t, *reqs, 1)
	assert.Equal(t, http.MethodPut, (*reqs)[0].method)
	assert.Equal(t, "/movies/_doc/7", (*reqs)[0].path)
	assert.Contains(t, (*reqs)[0].body, `"title":"Heat"`)
}

func TestIndex_EnsureIndex(t *testing.T) {
	t.Parallel()

	es, reqs := fakeES(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, `{"acknowledged":true}`)
	})
	idx := New(es, "movies")

	require.NoError(t, idx.EnsureIndex(context.Background()))
	require.Len(t, *reqs, 2)
	assert.Equal(t, http.MethodPut, (*reqs)[1].method)
	assert.True(t, strings.Contains((*reqs)[1].body, `"title"`))
}

func TestIndex_ErrorResponse(t *testing.T) {
	t.Parallel()

	es, _ := fakeES(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"error":"unavailable"}`)
	})
	idx := New(es, "movies")

	_, _, err := idx.SearchMovies(context.Background(), "x", 0, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}
