package httpserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/watchit/internal/service"
	"github.com/Skotchmaster/watchit/internal/token"
	"github.com/Skotchmaster/watchit/pkg/logging"
	"github.com/Skotchmaster/watchit/pkg/tokens"
)

const (
	AccessCookie = "accessToken"
	claimsKey    = "claims"
	rawTokenKey  = "raw_token"
)

type TokenValidator interface {
	Validate(ctx context.Context, raw string) (*tokens.Claims, error)
}

// Authenticator resolves the caller's token into claims stored on the echo
// context.
type Authenticator struct {
	Tokens TokenValidator
}

// RequireAuth accepts only an Authorization: Bearer header.
func (a *Authenticator) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw, err := bearerToken(c.Request())
		if err != nil {
			return err
		}
		if err := a.authenticate(c, raw); err != nil {
			return err
		}
		return next(c)
	}
}

// RequireSession accepts the bearer header or, failing that, the session
// cookie set at login.
func (a *Authenticator) RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw, fromCookie, err := sessionToken(c)
		if err != nil {
			return err
		}
		if err := a.authenticate(c, raw); err != nil {
			if fromCookie {
				c.SetCookie(DeleteCookie(AccessCookie, "/"))
			}
			return err
		}
		return next(c)
	}
}

// OptionalSession attaches claims when a valid token is present and lets the
// request through either way.
func (a *Authenticator) OptionalSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if raw, _, err := sessionToken(c); err == nil {
			if err := a.authenticate(c, raw); err != nil {
				logging.FromContext(c.Request().Context()).Debug("optional_session_ignored", "error", err)
			}
		}
		return next(c)
	}
}

func (a *Authenticator) authenticate(c echo.Context, raw string) error {
	req := c.Request()
	claims, err := a.Tokens.Validate(req.Context(), raw)
	if err != nil {
		logging.FromContext(req.Context()).Warn("auth_failed", "status", 401, "error", err)
		return err
	}
	c.Set(claimsKey, claims)
	c.Set(rawTokenKey, raw)

	l := logging.FromContext(req.Context()).With("username", claims.Username)
	c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))
	return nil
}

// RequireRole must run after one of the Authenticator middlewares.
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := ClaimsFrom(c)
			if claims == nil {
				return token.ErrMissing
			}
			if claims.Role != role {
				logging.FromContext(c.Request().Context()).Warn("access_denied", "status", 403, "required_role", role)
				return service.ErrForbidden
			}
			return next(c)
		}
	}
}

// RequireSelfOrAdmin lets the request through when the path parameter names
// the caller, or the caller is an admin.
func RequireSelfOrAdmin(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := ClaimsFrom(c)
			if claims == nil {
				return token.ErrMissing
			}
			if err := service.AuthorizeUser(claims, c.Param(param)); err != nil {
				logging.FromContext(c.Request().Context()).Warn("access_denied", "status", 403, "target", c.Param(param))
				return err
			}
			return next(c)
		}
	}
}

func ClaimsFrom(c echo.Context) *tokens.Claims {
	claims, _ := c.Get(claimsKey).(*tokens.Claims)
	return claims
}

func bearerToken(r *http.Request) (string, error) {
	h := strings.TrimSpace(r.Header.Get(echo.HeaderAuthorization))
	if h == "" {
		return "", token.ErrMissing
	}
	scheme, raw, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
		return "", token.ErrMalformed
	}
	return strings.TrimSpace(raw), nil
}

func sessionToken(c echo.Context) (raw string, fromCookie bool, err error) {
	if c.Request().Header.Get(echo.HeaderAuthorization) != "" {
		raw, err = bearerToken(c.Request())
		return raw, false, err
	}
	cookie, err := c.Cookie(AccessCookie)
	if err != nil || cookie.Value == "" {
		return "", false, token.ErrMissing
	}
	return cookie.Value, true, nil
}
