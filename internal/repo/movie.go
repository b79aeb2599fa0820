package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/watchit/internal/models"
)

func (r *GormRepo) ListMovies(ctx context.Context, offset, limit int) ([]models.Movie, int64, error) {
	db := r.DB.WithContext(ctx).Model(&models.Movie{}).Session(&gorm.Session{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	movies := []models.Movie{}
	if err := db.Order("id").Offset(offset).Limit(limit).Find(&movies).Error; err != nil {
		return nil, 0, err
	}
	return movies, total, nil
}

// SearchMovies is the fallback title match used when no search index is
// configured.
func (r *GormRepo) SearchMovies(ctx context.Context, query string, offset, limit int) ([]models.Movie, int64, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	db := r.DB.WithContext(ctx).Model(&models.Movie{}).Where("LOWER(title) LIKE ?", pattern).
		Session(&gorm.Session{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	movies := []models.Movie{}
	if err := db.Order("id").Offset(offset).Limit(limit).Find(&movies).Error; err != nil {
		return nil, 0, err
	}
	return movies, total, nil
}

func (r *GormRepo) GetMovie(ctx context.Context, id int64) (*models.Movie, error) {
	var m models.Movie
	if err := r.DB.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func (r *GormRepo) CreateMovie(ctx context.Context, m *models.Movie) error {
	return r.DB.WithContext(ctx).Create(m).Error
}
