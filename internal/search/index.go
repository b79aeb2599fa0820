// Package search keeps the movie catalog in an Elasticsearch index.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"

	"github.com/Skotchmaster/watchit/internal/models"
)

type Index struct {
	es    *elasticsearch.Client
	index string
}

func NewClient(addr, user, password string) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{addr},
		Username:  user,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, responseError("info", res)
	}
	return client, nil
}

func New(es *elasticsearch.Client, index string) *Index {
	return &Index{es: es, index: index}
}

const mapping = `{
  "mappings": {
    "properties": {
      "id":     {"type": "long"},
      "title":  {"type": "text"},
      "genre":  {"type": "keyword"},
      "rating": {"type": "float"}
    }
  }
}`

// EnsureIndex creates the index with its mapping unless it already exists.
func (i *Index) EnsureIndex(ctx context.Context) error {
	res, err := i.es.Indices.Exists([]string{i.index}, i.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = i.es.Indices.Create(i.index,
		i.es.Indices.Create.WithContext(ctx),
		i.es.Indices.Create.WithBody(bytes.NewReader([]byte(mapping))),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("create index", res)
	}
	return nil
}

func (i *Index) IndexMovie(ctx context.Context, m models.Movie) error {
	body, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode movie: %w", err)
	}
	res, err := i.es.Index(i.index, bytes.NewReader(body),
		i.es.Index.WithContext(ctx),
		i.es.Index.WithDocumentID(strconv.FormatInt(m.ID, 10)),
		i.es.Index.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("index movie: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index movie", res)
	}
	return nil
}

func (i *Index) SearchMovies(ctx context.Context, query string, offset, limit int) ([]models.Movie, int64, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"title^2", "genre"},
				"fuzziness": "AUTO",
			},
		},
		"from": offset,
		"size": limit,
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, 0, fmt.Errorf("encode query: %w", err)
	}

	res, err := i.es.Search(
		i.es.Search.WithContext(ctx),
		i.es.Search.WithIndex(i.index),
		i.es.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, 0, responseError("search", res)
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Movie `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, 0, fmt.Errorf("decode search response: %w", err)
	}

	movies := make([]models.Movie, len(r.Hits.Hits))
	for n, hit := range r.Hits.Hits {
		movies[n] = hit.Source
	}
	return movies, r.Hits.Total.Value, nil
}

func responseError(op string, res *esapi.Response) error {
	body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
	return fmt.Errorf("elasticsearch %s: %s: %s", op, res.Status(), bytes.TrimSpace(body))
}
