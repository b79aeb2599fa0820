package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/watchit/internal/models"
)

func (r *GormRepo) AddToList(ctx context.Context, username, list string, movieID int64) (bool, error) {
	var added bool
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := userExists(tx, username); err != nil {
			return err
		}
		item := models.ListItem{Username: username, ListName: list, MovieID: movieID}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&item)
		if res.Error != nil {
			return res.Error
		}
		added = res.RowsAffected > 0
		return nil
	})
	return added, err
}

func (r *GormRepo) RemoveFromList(ctx context.Context, username, list string, movieID int64) (bool, error) {
	var removed bool
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := userExists(tx, username); err != nil {
			return err
		}
		res := tx.Where("username = ? AND list_name = ? AND movie_id = ?", username, list, movieID).
			Delete(&models.ListItem{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected > 0
		return nil
	})
	return removed, err
}

func (r *GormRepo) GetList(ctx context.Context, username, list string) ([]int64, error) {
	db := r.DB.WithContext(ctx)
	if err := userExists(db, username); err != nil {
		return nil, err
	}
	ids := []int64{}
	if err := db.Model(&models.ListItem{}).
		Where("username = ? AND list_name = ?", username, list).
		Order("movie_id").
		Pluck("movie_id", &ids).Error; err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

func (r *GormRepo) GetLists(ctx context.Context, username string) (models.Lists, error) {
	db := r.DB.WithContext(ctx)
	if err := userExists(db, username); err != nil {
		return nil, err
	}
	var items []models.ListItem
	if err := db.Where("username = ?", username).
		Order("list_name, movie_id").
		Find(&items).Error; err != nil {
		return nil, err
	}
	lists := models.EmptyLists()
	for _, it := range items {
		if ids, ok := lists[it.ListName]; ok {
			lists[it.ListName] = append(ids, it.MovieID)
		}
	}
	return lists, nil
}
