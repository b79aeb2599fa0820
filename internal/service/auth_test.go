package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/watchit/internal/events"
	"github.com/Skotchmaster/watchit/internal/models"
	"github.com/Skotchmaster/watchit/internal/token"
)

func TestAuthService_CreateThenAuthenticate(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	env.mustCreateUser(t, "alice", "secret1", "")

	user, ok, err := env.auth.AuthenticateUser(ctx, "alice", "secret1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "secret1", user.PasswordHash)

	_, ok, err = env.auth.AuthenticateUser(ctx, "alice", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = env.auth.AuthenticateUser(ctx, "nobody", "secret1")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, []string{events.TypeUserRegistered}, env.events.types())
	assert.Equal(t, []string{events.TopicUsers}, env.events.topics)
}

func TestAuthService_CreateUser_Validation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		role     string
	}{
		{name: "empty username", username: "", password: "secret"},
		{name: "blank username", username: "   ", password: "secret"},
		{name: "empty password", username: "user", password: ""},
		{name: "unknown role", username: "user", password: "secret", role: "root"},
		{name: "password too long", username: "user", password: strings.Repeat("x", 73)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := env.auth.CreateUser(ctx, tt.username, tt.password, tt.role)
			require.ErrorIs(t, err, ErrValidation)
		})
	}
	assert.Empty(t, env.events.types())
}

func TestAuthService_CreateUser_Duplicate(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	env.mustCreateUser(t, "alice", "secret1", "")

	err := env.auth.CreateUser(ctx, "alice", "other", "admin")
	require.ErrorIs(t, err, ErrDuplicateUsername)
	msg, ok := PublicMessage(err)
	require.True(t, ok)
	assert.Equal(t, "Username already exists", msg)

	user, ok, err := env.auth.AuthenticateUser(ctx, "alice", "secret1")
	require.NoError(t, err)
	require.True(t, ok, "first registration must be unchanged")
	assert.Equal(t, models.RoleUser, user.Role)
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	env.mustCreateUser(t, "root", "pw", models.RoleAdmin)

	res, err := env.auth.Login(ctx, "root", "pw")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, res.Role)
	assert.Equal(t, res.Claims.Expiry(), res.ExpiresAt)

	claims, err := env.tokens.Validate(ctx, res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "root", claims.Username)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestAuthService_PaddedUsernameIsNormalized(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	env.mustCreateUser(t, " alice ", "secret1", "")

	user, ok, err := env.auth.AuthenticateUser(ctx, " alice ", "secret1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "alice", user.Username)

	res, err := env.auth.Login(ctx, " alice ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice", res.Claims.Username)

	res, err = env.auth.Login(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice", res.Claims.Username)

	profile, err := env.auth.GetUser(ctx, "  alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)

	err = env.auth.CreateUser(ctx, "alice  ", "other", "")
	require.ErrorIs(t, err, ErrDuplicateUsername)
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	env.mustCreateUser(t, "alice", "secret1", "")

	for _, tc := range [][2]string{{"alice", "wrong"}, {"ghost", "secret1"}} {
		_, err := env.auth.Login(ctx, tc[0], tc[1])
		require.ErrorIs(t, err, ErrInvalidCredentials)
		msg, _ := PublicMessage(err)
		assert.Equal(t, "Invalid credentials", msg)
	}

	_, err := env.auth.Login(ctx, "", "")
	require.ErrorIs(t, err, ErrValidation)
}

func TestAuthService_LogoutRevokesToken(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	env.mustCreateUser(t, "alice", "secret1", "")

	res, err := env.auth.Login(ctx, "alice", "secret1")
	require.NoError(t, err)
	require.NoError(t, env.auth.Logout(ctx, res.Claims))
	require.NoError(t, env.auth.Logout(ctx, res.Claims))
	require.NoError(t, env.auth.Logout(ctx, nil))

	_, err = env.tokens.Validate(ctx, res.AccessToken)
	require.ErrorIs(t, err, token.ErrRevoked)
}

func TestAuthService_RoleIsSnapshotAtIssuance(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	env.mustCreateUser(t, "alice", "secret1", "")

	before, err := env.auth.Login(ctx, "alice", "secret1")
	require.NoError(t, err)

	require.NoError(t, env.auth.SetRole(ctx, "alice", models.RoleAdmin))

	claims, err := env.tokens.Validate(ctx, before.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, claims.Role)

	after, err := env.auth.Login(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, after.Role)
}

func TestAuthService_SetRole_Errors(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	env.mustCreateUser(t, "alice", "secret1", "")

	require.ErrorIs(t, env.auth.SetRole(ctx, "alice", "root"), ErrValidation)
	require.ErrorIs(t, env.auth.SetRole(ctx, "ghost", models.RoleAdmin), ErrUserNotFound)
}

func TestAuthService_GetUser(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	env.mustCreateUser(t, "alice", "secret1", "")
	_, err := env.lists.AddToList(ctx, "alice", 42, models.ListWatched)
	require.NoError(t, err)

	profile, err := env.auth.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, models.RoleUser, profile.Role)
	assert.Equal(t, models.Lists{
		models.ListFavorites: {},
		models.ListWatched:   {42},
		models.ListToWatch:   {},
	}, profile.Lists)

	_, err = env.auth.GetUser(ctx, "ghost")
	require.ErrorIs(t, err, ErrUserNotFound)
}
