package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Skotchmaster/watchit/internal/events"
	"github.com/Skotchmaster/watchit/internal/models"
	"github.com/Skotchmaster/watchit/internal/store"
	pkg_hash "github.com/Skotchmaster/watchit/pkg/hash"
	"github.com/Skotchmaster/watchit/pkg/logging"
	"github.com/Skotchmaster/watchit/pkg/tokens"
)

type AuthService struct {
	Users  store.Users
	Lists  store.Lists
	Tokens TokenIssuer
	Events events.Publisher
}

type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
	Role        string
	Claims      *tokens.Claims
}

// dummyHash is compared against when the user does not exist, so a miss
// costs the same bcrypt work as a wrong password.
var dummyHash = sync.OnceValue(func() string {
	h, err := pkg_hash.HashPassword("watchit-timing-equalizer")
	if err != nil {
		panic(fmt.Sprintf("hash dummy password: %v", err))
	}
	return h
})

func (s *AuthService) CreateUser(ctx context.Context, username, password, role string) error {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	username = normalizeUsername(username)
	if username == "" || password == "" {
		l.Warn("register_error", "status", 400, "reason", "missing username or password")
		return newPublicError(ErrValidation, "Username and password are required")
	}
	if role == "" {
		role = models.RoleUser
	}
	if !models.ValidRole(role) {
		l.Warn("register_error", "status", 400, "reason", "invalid role", "role", role)
		return newPublicError(ErrValidation, "Invalid role '%s'", role)
	}

	pwHash, err := pkg_hash.HashPassword(password)
	if errors.Is(err, pkg_hash.ErrTooLong) {
		l.Warn("register_error", "status", 400, "reason", "password too long")
		return newPublicError(ErrValidation, "Password must be at most %d bytes", pkg_hash.MaxPasswordBytes)
	}
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{Username: username, PasswordHash: pwHash, Role: role}
	if err := s.Users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			l.Warn("register_error", "status", 400, "reason", "user already exist", "username", username)
			return newPublicError(ErrDuplicateUsername, "Username already exists")
		}
		l.Error("register_error", "status", 500, "error", err)
		return fmt.Errorf("create user: %w", err)
	}

	l.Info("user_registered", "username", username, "role", role)
	publish(ctx, s.Events, events.TopicUsers, username, events.Event{
		Type:     events.TypeUserRegistered,
		Username: username,
		Role:     role,
	})
	return nil
}

// AuthenticateUser reports ok=false for an unknown user and for a wrong
// password alike. err is only set when the store fails.
func (s *AuthService) AuthenticateUser(ctx context.Context, username, password string) (*models.User, bool, error) {
	user, err := s.Users.FindUser(ctx, normalizeUsername(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			pkg_hash.CheckPassword(dummyHash(), password)
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("find user: %w", err)
	}
	if !pkg_hash.CheckPassword(user.PasswordHash, password) {
		return nil, false, nil
	}
	return user, true, nil
}

func (s *AuthService) GetUser(ctx context.Context, username string) (*models.UserProfile, error) {
	username = normalizeUsername(username)
	user, err := s.Users.FindUser(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	profile := &models.UserProfile{
		Username:  user.Username,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
		Lists:     models.EmptyLists(),
	}
	if s.Lists != nil {
		lists, err := s.Lists.GetLists(ctx, username)
		if err != nil {
			return nil, fmt.Errorf("get lists: %w", err)
		}
		profile.Lists = lists
	}
	return profile, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = normalizeUsername(username)
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)

	if username == "" || password == "" {
		l.Warn("login_failed", "status", 400, "reason", "missing username or password")
		return nil, newPublicError(ErrValidation, "Username and password are required")
	}

	user, ok, err := s.AuthenticateUser(ctx, username, password)
	if err != nil {
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}
	if !ok {
		l.Warn("login_failed", "status", 401, "reason", "invalid username or password")
		return nil, newPublicError(ErrInvalidCredentials, "Invalid credentials")
	}

	raw, claims, err := s.Tokens.Issue(ctx, user.Username, user.Role)
	if err != nil {
		l.Error("login_failed", "status", 500, "error", err)
		return nil, fmt.Errorf("issue token: %w", err)
	}

	l.Info("login_succeeded", "role", user.Role)
	return &LoginResult{
		AccessToken: raw,
		ExpiresAt:   claims.Expiry(),
		Role:        user.Role,
		Claims:      claims,
	}, nil
}

// Logout revokes the presented token. A nil claim set means there was no
// valid session and nothing to revoke.
func (s *AuthService) Logout(ctx context.Context, claims *tokens.Claims) error {
	if claims == nil {
		return nil
	}
	if err := s.Tokens.Revoke(ctx, claims.JTI(), claims.Expiry()); err != nil {
		logging.FromContext(ctx).Error("logout_failed", "username", claims.Username, "error", err)
		return fmt.Errorf("logout: %w", err)
	}
	logging.FromContext(ctx).Info("logged_out", "username", claims.Username, "jti", claims.JTI())
	return nil
}

// SetRole changes the stored role. Tokens already issued keep the role they
// were issued with.
func (s *AuthService) SetRole(ctx context.Context, username, role string) error {
	username = normalizeUsername(username)
	if !models.ValidRole(role) {
		return newPublicError(ErrValidation, "Invalid role '%s'", role)
	}
	if err := s.Users.SetRole(ctx, username, role); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("set role: %w", err)
	}

	logging.FromContext(ctx).Info("role_changed", "username", username, "role", role)
	publish(ctx, s.Events, events.TopicUsers, username, events.Event{
		Type:     events.TypeRoleChanged,
		Username: username,
		Role:     role,
	})
	return nil
}

// normalizeUsername is applied to every username entering the service, so
// stored and looked-up names always agree.
func normalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

// publish is best effort: a broker outage must not fail the request.
func publish(ctx context.Context, pub events.Publisher, topic, key string, ev events.Event) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, topic, key, ev); err != nil {
		logging.FromContext(ctx).Error("event_publish_failed", "topic", topic, "type", ev.Type, "error", err)
	}
}
