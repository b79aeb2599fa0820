package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/watchit/internal/models"
	"github.com/Skotchmaster/watchit/internal/store"
	"github.com/Skotchmaster/watchit/pkg/db"
)

// GormRepo is the relational backend. It works against Postgres in
// production and SQLite for local runs and tests.
type GormRepo struct {
	DB *gorm.DB
}

var _ store.Backend = (*GormRepo)(nil)

func New(ctx context.Context, gdb *gorm.DB) (*GormRepo, error) {
	r := &GormRepo{DB: gdb}
	if err := r.AutoMigrate(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *GormRepo) AutoMigrate(ctx context.Context) error {
	if err := r.DB.WithContext(ctx).AutoMigrate(
		&models.User{},
		&models.ListItem{},
		&models.RevokedToken{},
		&models.Movie{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func (r *GormRepo) Ping(ctx context.Context) error {
	return db.Ping(ctx, r.DB)
}

func (r *GormRepo) Close(context.Context) error {
	return db.Close(r.DB)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}
	return err
}
