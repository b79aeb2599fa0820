package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Skotchmaster/watchit/internal/models"
	"github.com/Skotchmaster/watchit/internal/store"
)

func listField(list string) string { return "lists." + list }

func (s *Store) AddToList(ctx context.Context, username, list string, movieID int64) (bool, error) {
	return s.updateList(ctx, username, "$addToSet", list, movieID)
}

func (s *Store) RemoveFromList(ctx context.Context, username, list string, movieID int64) (bool, error) {
	return s.updateList(ctx, username, "$pull", list, movieID)
}

// updateList applies op to one list in a single document update. The
// modified count tells whether the set actually changed.
func (s *Store) updateList(ctx context.Context, username, op, list string, movieID int64) (bool, error) {
	res, err := s.users.UpdateOne(ctx,
		bson.D{{Key: "username", Value: username}},
		bson.D{{Key: op, Value: bson.D{{Key: listField(list), Value: movieID}}}},
	)
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 0 {
		return false, store.ErrNotFound
	}
	return res.ModifiedCount > 0, nil
}

func (s *Store) GetList(ctx context.Context, username, list string) ([]int64, error) {
	doc, err := s.findUser(ctx, username, options.FindOne().SetProjection(bson.D{{Key: listField(list), Value: 1}}))
	if err != nil {
		return nil, err
	}
	return doc.lists()[list], nil
}

func (s *Store) GetLists(ctx context.Context, username string) (models.Lists, error) {
	doc, err := s.findUser(ctx, username, options.FindOne().SetProjection(bson.D{{Key: "lists", Value: 1}}))
	if err != nil {
		return nil, err
	}
	return doc.lists(), nil
}
