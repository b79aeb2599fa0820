// Package mongostore is the MongoDB backend. Users keep their lists embedded
// in the user document, so list mutations are single-document updates.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Skotchmaster/watchit/internal/store"
)

const (
	usersCollection    = "users"
	revokedCollection  = "revoked_tokens"
	moviesCollection   = "movies"
	countersCollection = "counters"
)

type Store struct {
	client   *mongo.Client
	users    *mongo.Collection
	revoked  *mongo.Collection
	movies   *mongo.Collection
	counters *mongo.Collection
}

var _ store.Backend = (*Store)(nil)

// Connect dials uri, checks the connection and prepares the indexes of dbName.
func Connect(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s, err := New(ctx, client.Database(dbName))
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	s.client = client
	return s, nil
}

// New wraps an existing database handle. Close is a no-op for stores built
// this way; the caller owns the client.
func New(ctx context.Context, db *mongo.Database) (*Store, error) {
	s := &Store{
		users:    db.Collection(usersCollection),
		revoked:  db.Collection(revokedCollection),
		movies:   db.Collection(moviesCollection),
		counters: db.Collection(countersCollection),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	if _, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("create users index: %w", err)
	}
	// Entries vanish once the token they block has expired.
	if _, err := s.revoked.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	}); err != nil {
		return fmt.Errorf("create revocation ttl index: %w", err)
	}
	if _, err := s.movies.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "title", Value: 1}},
	}); err != nil {
		return fmt.Errorf("create movies index: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	return err
}
