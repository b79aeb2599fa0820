package mongostore

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Skotchmaster/watchit/internal/models"
	"github.com/Skotchmaster/watchit/internal/store"
)

func TestUserDoc_ListsAreNormalized(t *testing.T) {
	t.Parallel()

	doc := userDoc{Lists: map[string][]int64{
		models.ListWatched: {9, 3, 5},
		"bookmarked":       {1},
	}}
	lists := doc.lists()

	assert.Equal(t, models.Lists{
		models.ListFavorites: {},
		models.ListWatched:   {3, 5, 9},
		models.ListToWatch:   {},
	}, lists)
	assert.Equal(t, []int64{9, 3, 5}, doc.Lists[models.ListWatched], "source must not be reordered")
}

func TestUserDoc_NilListsStillMaterialize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, models.EmptyLists(), userDoc{}.lists())
}

func newIntegrationStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("WATCHIT_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("WATCHIT_TEST_MONGO_URI not set")
	}

	ctx := context.Background()
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	require.NoError(t, err)

	db := client.Database(fmt.Sprintf("watchit_test_%d", time.Now().UnixNano()))
	t.Cleanup(func() {
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	s, err := New(ctx, db)
	require.NoError(t, err)
	return s
}

func TestStore_UsersAndLists(t *testing.T) {
	s := newIntegrationStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, &models.User{Username: "alice", PasswordHash: "h"}))
	require.ErrorIs(t, s.CreateUser(ctx, &models.User{Username: "alice", PasswordHash: "h"}), store.ErrConflict)

	u, err := s.FindUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, u.Role)

	added, err := s.AddToList(ctx, "alice", models.ListWatched, 42)
	require.NoError(t, err)
	assert.True(t, added)
	added, err = s.AddToList(ctx, "alice", models.ListWatched, 42)
	require.NoError(t, err)
	assert.False(t, added)

	ids, err := s.GetList(ctx, "alice", models.ListWatched)
	require.NoError(t, err)
	assert.Equal(t, []int64{42}, ids)

	removed, err := s.RemoveFromList(ctx, "alice", models.ListWatched, 42)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = s.RemoveFromList(ctx, "alice", models.ListWatched, 42)
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = s.AddToList(ctx, "ghost", models.ListWatched, 1)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.SetRole(ctx, "alice", models.RoleAdmin))
	require.ErrorIs(t, s.SetRole(ctx, "ghost", models.RoleAdmin), store.ErrNotFound)
}

func TestStore_RevocationsAndMovies(t *testing.T) {
	s := newIntegrationStore(t)
	ctx := context.Background()

	require.NoError(t, s.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))
	require.NoError(t, s.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))
	revoked, err := s.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	m1 := &models.Movie{Title: "The Matrix", Genre: "sci-fi", Rating: 8.7}
	m2 := &models.Movie{Title: "Amelie", Genre: "romance", Rating: 8.3}
	require.NoError(t, s.CreateMovie(ctx, m1))
	require.NoError(t, s.CreateMovie(ctx, m2))
	assert.Equal(t, m1.ID+1, m2.ID)

	found, total, err := s.SearchMovies(ctx, "matrix", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, found, 1)

	_, err = s.GetMovie(ctx, 9999)
	require.ErrorIs(t, err, store.ErrNotFound)
}
