package repo

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/watchit/internal/models"
)

// Revoke records jti as revoked. Revoking an already revoked id is a no-op.
func (r *GormRepo) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	row := models.RevokedToken{JTI: jti, ExpiresAt: expiresAt.UTC(), RevokedAt: r.DB.NowFunc()}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}

func (r *GormRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.RevokedToken{}).
		Where("jti = ?", jti).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// PurgeExpired drops entries whose token could no longer pass validation.
func (r *GormRepo) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).Where("expires_at < ?", now.UTC()).Delete(&models.RevokedToken{})
	return res.RowsAffected, res.Error
}
