package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/watchit/internal/models"
	"github.com/Skotchmaster/watchit/pkg/tokens"
)

// TokenIssuer is the part of the token authority the auth service needs.
type TokenIssuer interface {
	Issue(ctx context.Context, username, role string) (string, *tokens.Claims, error)
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
}

// MetadataClient looks up external movie metadata. Results are opaque.
type MetadataClient interface {
	GetMovieDetails(ctx context.Context, id int64) (map[string]any, error)
	SearchMovies(ctx context.Context, query string) ([]map[string]any, error)
}

// CatalogIndex is a full-text index over the movie catalog.
type CatalogIndex interface {
	IndexMovie(ctx context.Context, m models.Movie) error
	SearchMovies(ctx context.Context, query string, offset, limit int) ([]models.Movie, int64, error)
}
