package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/watchit/internal/events"
	"github.com/Skotchmaster/watchit/internal/models"
	"github.com/Skotchmaster/watchit/internal/repo"
	"github.com/Skotchmaster/watchit/internal/token"
	"github.com/Skotchmaster/watchit/pkg/db"
)

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, topic, _ string, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type mockMetadata struct{ mock.Mock }

func (m *mockMetadata) GetMovieDetails(ctx context.Context, id int64) (map[string]any, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}

func (m *mockMetadata) SearchMovies(ctx context.Context, query string) ([]map[string]any, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]map[string]any), args.Error(1)
}

type mockIndex struct{ mock.Mock }

func (m *mockIndex) IndexMovie(ctx context.Context, movie models.Movie) error {
	return m.Called(ctx, movie).Error(0)
}

func (m *mockIndex) SearchMovies(ctx context.Context, query string, offset, limit int) ([]models.Movie, int64, error) {
	args := m.Called(ctx, query, offset, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Movie), args.Get(1).(int64), args.Error(2)
}

type testEnv struct {
	repo   *repo.GormRepo
	tokens *token.Authority
	events *recordingPublisher
	auth   *AuthService
	lists  *ListService
	movies *MovieService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	gdb, err := db.OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })
	r, err := repo.New(ctx, gdb)
	require.NoError(t, err)

	pub := &recordingPublisher{}
	authority := token.New([]byte("test-jwt-secret"), r)
	return &testEnv{
		repo:   r,
		tokens: authority,
		events: pub,
		auth:   &AuthService{Users: r, Lists: r, Tokens: authority, Events: pub},
		lists:  &ListService{Lists: r, Events: pub},
		movies: &MovieService{Movies: r, Events: pub},
	}
}

func (env *testEnv) mustCreateUser(t *testing.T, username, password, role string) {
	t.Helper()
	require.NoError(t, env.auth.CreateUser(context.Background(), username, password, role))
}
