package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/watchit/internal/metrics"
	"github.com/Skotchmaster/watchit/internal/service"
	"github.com/Skotchmaster/watchit/internal/transport"
	"github.com/Skotchmaster/watchit/pkg/logging"
)

type TokenRevoker interface {
	RevokeID(ctx context.Context, jti string) error
}

type AuthHTTP struct {
	Svc     *service.AuthService
	Tokens  TokenRevoker
	Metrics *metrics.Metrics
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req transport.Credentials
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	if err := h.Svc.CreateUser(ctx, req.Username, req.Password, ""); err != nil {
		h.Metrics.AuthEvent("register", "failure")
		return err
	}
	h.Metrics.AuthEvent("register", "success")

	return c.JSON(http.StatusCreated, transport.MessageResponse{Message: "User created successfully"})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.Credentials
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	res, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		h.Metrics.AuthEvent("login", "failure")
		return err
	}
	h.Metrics.AuthEvent("login", "success")

	c.SetCookie(CreateCookie(AccessCookie, res.AccessToken, "/", res.ExpiresAt))
	return c.JSON(http.StatusOK, transport.LoginResponse{
		AccessToken: res.AccessToken,
		TokenType:   "Bearer",
		ExpiresAt:   res.ExpiresAt,
		Role:        res.Role,
	})
}

// Logout revokes the presented token, if any, and clears the session cookie.
func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.Svc.Logout(ctx, ClaimsFrom(c)); err != nil {
		return err
	}
	h.Metrics.AuthEvent("logout", "success")

	c.SetCookie(DeleteCookie(AccessCookie, "/"))
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Logged out"})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	claims := ClaimsFrom(c)
	profile, err := h.Svc.GetUser(c.Request().Context(), claims.Username)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, transport.Me{Username: profile.Username, Role: claims.Role})
}

func (h *AuthHTTP) SetRole(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_set_role")

	var req transport.RoleChange
	if err := c.Bind(&req); err != nil {
		l.Warn("set_role_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	username := c.Param("username")
	if err := h.Svc.SetRole(ctx, username, req.Role); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, transport.Me{Username: username, Role: req.Role})
}

func (h *AuthHTTP) RevokeToken(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_revoke_token")

	var req transport.RevokeRequest
	if err := c.Bind(&req); err != nil || req.JTI == "" {
		l.Warn("revoke_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "jti is required")
	}

	if err := h.Tokens.RevokeID(ctx, req.JTI); err != nil {
		return err
	}
	l.Info("token_revoked", "jti", req.JTI)
	h.Metrics.AuthEvent("revoke", "success")
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Token revoked"})
}
