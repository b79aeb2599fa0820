// Package store declares the persistence contracts implemented by the
// relational (internal/repo) and document (internal/mongostore) backends.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/Skotchmaster/watchit/internal/models"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

type Users interface {
	// CreateUser returns ErrConflict when the username is taken.
	CreateUser(ctx context.Context, u *models.User) error
	FindUser(ctx context.Context, username string) (*models.User, error)
	SetRole(ctx context.Context, username, role string) error
}

// Lists mutations return ErrNotFound when the user does not exist. List
// names are validated by the caller.
type Lists interface {
	AddToList(ctx context.Context, username, list string, movieID int64) (added bool, err error)
	RemoveFromList(ctx context.Context, username, list string, movieID int64) (removed bool, err error)
	GetList(ctx context.Context, username, list string) ([]int64, error)
	GetLists(ctx context.Context, username string) (models.Lists, error)
}

type Movies interface {
	ListMovies(ctx context.Context, offset, limit int) ([]models.Movie, int64, error)
	SearchMovies(ctx context.Context, query string, offset, limit int) ([]models.Movie, int64, error)
	GetMovie(ctx context.Context, id int64) (*models.Movie, error)
	CreateMovie(ctx context.Context, m *models.Movie) error
}

type Revocations interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Purger is implemented by revocation stores that need explicit cleanup.
type Purger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// Backend bundles everything the services need from one storage driver.
type Backend interface {
	Users
	Lists
	Movies
	Revocations
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
