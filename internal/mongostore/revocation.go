package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Revoke upserts the jti. The TTL index on expires_at removes it later.
func (s *Store) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	_, err := s.revoked.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: jti}},
		bson.D{{Key: "$setOnInsert", Value: bson.D{
			{Key: "expires_at", Value: expiresAt.UTC()},
			{Key: "revoked_at", Value: time.Now().UTC()},
		}}},
		options.UpdateOne().SetUpsert(true),
	)
	return err
}

func (s *Store) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.revoked.CountDocuments(ctx, bson.D{{Key: "_id", Value: jti}}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
