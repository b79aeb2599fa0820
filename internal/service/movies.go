package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Skotchmaster/watchit/internal/events"
	"github.com/Skotchmaster/watchit/internal/models"
	"github.com/Skotchmaster/watchit/internal/store"
	"github.com/Skotchmaster/watchit/internal/util"
	"github.com/Skotchmaster/watchit/pkg/logging"
)

type MovieService struct {
	Movies   store.Movies
	Index    CatalogIndex
	Metadata MetadataClient
	Events   events.Publisher
}

// MovieInput holds a new catalog entry. Nil fields were absent from the
// request.
type MovieInput struct {
	Title  *string  `json:"title"`
	Genre  *string  `json:"genre"`
	Rating *float64 `json:"rating"`
}

type PageMeta struct {
	Page  int   `json:"page"`
	Size  int   `json:"size"`
	Total int64 `json:"total"`
}

type MoviePage struct {
	Data []models.Movie `json:"data"`
	Meta PageMeta       `json:"meta"`
}

func (s *MovieService) ListMovies(ctx context.Context, page, size int) (*MoviePage, error) {
	page, size, offset := util.Paginate(page, size)
	movies, total, err := s.Movies.ListMovies(ctx, offset, size)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	return &MoviePage{Data: movies, Meta: PageMeta{Page: page, Size: size, Total: total}}, nil
}

// SearchMovies uses the catalog index when there is one and falls back to a
// title match in the store when the index is absent or failing.
func (s *MovieService) SearchMovies(ctx context.Context, query string, page, size int) (*MoviePage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.ListMovies(ctx, page, size)
	}
	page, size, offset := util.Paginate(page, size)

	if s.Index != nil {
		movies, total, err := s.Index.SearchMovies(ctx, query, offset, size)
		if err == nil {
			return &MoviePage{Data: movies, Meta: PageMeta{Page: page, Size: size, Total: total}}, nil
		}
		logging.FromContext(ctx).Warn("catalog_search_fallback", "query", query, "error", err)
	}

	movies, total, err := s.Movies.SearchMovies(ctx, query, offset, size)
	if err != nil {
		return nil, fmt.Errorf("search movies: %w", err)
	}
	return &MoviePage{Data: movies, Meta: PageMeta{Page: page, Size: size, Total: total}}, nil
}

func (s *MovieService) GetMovie(ctx context.Context, id int64) (*models.Movie, error) {
	m, err := s.Movies.GetMovie(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, newPublicError(ErrNotFound, "Movie not found")
		}
		return nil, fmt.Errorf("get movie: %w", err)
	}
	return m, nil
}

// AddMovie validates and stores a catalog entry. Duplicate titles are
// allowed and get a fresh id.
func (s *MovieService) AddMovie(ctx context.Context, in MovieInput) (*models.Movie, error) {
	switch {
	case in.Title == nil || strings.TrimSpace(*in.Title) == "":
		return nil, newPublicError(ErrValidation, "Missing required field: title")
	case in.Genre == nil || strings.TrimSpace(*in.Genre) == "":
		return nil, newPublicError(ErrValidation, "Missing required field: genre")
	case in.Rating == nil:
		return nil, newPublicError(ErrValidation, "Missing required field: rating")
	case *in.Rating < 0 || *in.Rating > 10:
		return nil, newPublicError(ErrValidation, "Rating must be between 0 and 10")
	}

	m := &models.Movie{
		Title:  strings.TrimSpace(*in.Title),
		Genre:  strings.TrimSpace(*in.Genre),
		Rating: *in.Rating,
	}
	if err := s.Movies.CreateMovie(ctx, m); err != nil {
		return nil, fmt.Errorf("create movie: %w", err)
	}

	l := logging.FromContext(ctx)
	if s.Index != nil {
		if err := s.Index.IndexMovie(ctx, *m); err != nil {
			l.Error("catalog_index_failed", "movie_id", m.ID, "error", err)
		}
	}
	l.Info("movie_created", "movie_id", m.ID, "title", m.Title)
	publish(ctx, s.Events, events.TopicMovies, strconv.FormatInt(m.ID, 10), events.Event{
		Type:    events.TypeMovieCreated,
		MovieID: m.ID,
	})
	return m, nil
}

// SearchMetadata queries the external metadata service.
func (s *MovieService) SearchMetadata(ctx context.Context, query string) ([]map[string]any, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, newPublicError(ErrValidation, "Query parameter is required")
	}
	if s.Metadata == nil {
		return nil, newPublicError(ErrUpstream, "Movie metadata service is not configured")
	}
	results, err := s.Metadata.SearchMovies(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return results, nil
}

func (s *MovieService) MovieDetails(ctx context.Context, id int64) (map[string]any, error) {
	if s.Metadata == nil {
		return nil, newPublicError(ErrUpstream, "Movie metadata service is not configured")
	}
	d, err := s.Metadata.GetMovieDetails(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return d, nil
}
