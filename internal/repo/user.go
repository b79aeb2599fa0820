package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/watchit/internal/models"
	"github.com/Skotchmaster/watchit/internal/store"
)

// CreateUser inserts u unless the username is taken. The check and the
// insert are one statement, so concurrent registrations cannot both win.
func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	tx := r.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(u)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return store.ErrConflict
	}
	return nil
}

func (r *GormRepo) FindUser(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *GormRepo) SetRole(ctx context.Context, username, role string) error {
	tx := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("username = ?", username).
		Update("role", role)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func userExists(db *gorm.DB, username string) error {
	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return store.ErrNotFound
	}
	return nil
}
