// Package token issues and validates session tokens and tracks their
// revocation.
package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Skotchmaster/watchit/internal/store"
	"github.com/Skotchmaster/watchit/pkg/logging"
	"github.com/Skotchmaster/watchit/pkg/tokens"
)

// TokenTTL is the lifetime of every issued token.
const TokenTTL = time.Hour

var (
	ErrMissing   = errors.New("token missing")
	ErrMalformed = errors.New("token malformed")
	ErrExpired   = errors.New("token expired")
	ErrRevoked   = errors.New("token revoked")
)

type Authority struct {
	secret      []byte
	revocations store.Revocations
	now         func() time.Time
	newID       func() string
}

type Option func(*Authority)

// WithClock replaces time.Now for issuance and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(a *Authority) { a.now = now }
}

func New(secret []byte, revocations store.Revocations, opts ...Option) *Authority {
	a := &Authority{
		secret:      secret,
		revocations: revocations,
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Issue signs a token for username with a role snapshot and a fresh jti.
func (a *Authority) Issue(ctx context.Context, username, role string) (string, *tokens.Claims, error) {
	claims := tokens.NewClaims(username, role, a.newID(), a.now(), TokenTTL)
	raw, err := tokens.Sign(claims, a.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	logging.FromContext(ctx).Debug("token_issued", "username", username, "jti", claims.ID)
	return raw, &claims, nil
}

// Validate checks signature, expiry and revocation, in that order.
func (a *Authority) Validate(ctx context.Context, raw string) (*tokens.Claims, error) {
	if raw == "" {
		return nil, ErrMissing
	}
	claims, err := tokens.ClaimsFromToken(raw, a.secret, jwt.WithTimeFunc(a.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	revoked, err := a.revocations.IsRevoked(ctx, claims.JTI())
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, ErrRevoked
	}
	return claims, nil
}

// Revoke blocks jti until expiresAt. Repeated calls are no-ops.
func (a *Authority) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	if jti == "" {
		return fmt.Errorf("%w: empty jti", ErrMalformed)
	}
	if err := a.revocations.Revoke(ctx, jti, expiresAt); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// RevokeID revokes a jti whose token is not at hand. The entry is kept for
// the longest time any token may still be valid.
func (a *Authority) RevokeID(ctx context.Context, jti string) error {
	return a.Revoke(ctx, jti, a.now().Add(TokenTTL))
}

// RunJanitor purges expired revocations every interval until ctx is done.
// Stores that expire entries on their own are left alone.
func (a *Authority) RunJanitor(ctx context.Context, every time.Duration) {
	purger, ok := a.revocations.(store.Purger)
	if !ok || every <= 0 {
		return
	}
	l := logging.FromContext(ctx).With("component", "revocation_janitor")

	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := purger.PurgeExpired(ctx, a.now())
			if err != nil {
				l.Error("purge_failed", "error", err)
				continue
			}
			if n > 0 {
				l.Info("purged_revocations", "count", n)
			}
		}
	}
}
