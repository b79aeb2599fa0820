package mongostore

import (
	"context"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Skotchmaster/watchit/internal/models"
	"github.com/Skotchmaster/watchit/internal/store"
)

type userDoc struct {
	ID           bson.ObjectID      `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	PasswordHash string             `bson:"password_hash"`
	Role         string             `bson:"role"`
	Lists        map[string][]int64 `bson:"lists"`
	CreatedAt    time.Time          `bson:"created_at"`
}

func (d userDoc) toModel() *models.User {
	return &models.User{
		Username:     d.Username,
		PasswordHash: d.PasswordHash,
		Role:         d.Role,
		CreatedAt:    d.CreatedAt,
	}
}

// lists materializes all fixed lists in ascending id order and drops any key
// that is not one of them.
func (d userDoc) lists() models.Lists {
	out := models.EmptyLists()
	for name := range out {
		ids := slices.Clone(d.Lists[name])
		if ids == nil {
			continue
		}
		slices.Sort(ids)
		out[name] = ids
	}
	return out
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	doc := userDoc{
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		Lists:        models.EmptyLists(),
		CreatedAt:    u.CreatedAt,
	}
	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrConflict
		}
		return err
	}
	return nil
}

func (s *Store) FindUser(ctx context.Context, username string) (*models.User, error) {
	doc, err := s.findUser(ctx, username, options.FindOne().SetProjection(bson.D{{Key: "lists", Value: 0}}))
	if err != nil {
		return nil, err
	}
	return doc.toModel(), nil
}

func (s *Store) SetRole(ctx context.Context, username, role string) error {
	res, err := s.users.UpdateOne(ctx,
		bson.D{{Key: "username", Value: username}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "role", Value: role}}}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) findUser(ctx context.Context, username string, opts ...options.Lister[options.FindOneOptions]) (*userDoc, error) {
	var doc userDoc
	if err := s.users.FindOne(ctx, bson.D{{Key: "username", Value: username}}, opts...).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	return &doc, nil
}
