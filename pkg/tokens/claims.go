package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrIncompleteClaims = errors.New("token claims are incomplete")

// Claims is the identity snapshot carried by a session token. Role is copied
// at issuance and never refreshed from the user record.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

func NewClaims(username, role, jti string, issuedAt time.Time, ttl time.Duration) Claims {
	return Claims{
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}
}

func (c *Claims) JTI() string { return c.ID }

func (c *Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

func Sign(claims Claims, secret []byte) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

func ClaimsFromToken(tokenStr string, secret []byte, opts ...jwt.ParserOption) (*Claims, error) {
	var claims Claims
	opts = append([]jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}, opts...)

	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.Username == "" || claims.ID == "" {
		return nil, ErrIncompleteClaims
	}
	return &claims, nil
}
