package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/watchit/internal/metrics"
	"github.com/Skotchmaster/watchit/internal/models"
	loggingmw "github.com/Skotchmaster/watchit/pkg/middleware/logging"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Auth    *AuthHTTP
	Lists   *ListsHTTP
	Movies  *MoviesHTTP
	Authn   *Authenticator
	Metrics *metrics.Metrics
	Ready   Pinger
}

// NewEcho builds the echo instance with the shared middleware stack and the
// JSON error handler.
func NewEcho(base *slog.Logger, m *metrics.Metrics) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler

	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	e.Use(middleware.RequestID(), middleware.Secure())
	e.Use(m.Middleware())
	e.Use(loggingmw.RequestLogger(base))
	e.Use(middleware.Recover())
	return e
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"message": "Welcome to WatchIT!"})
	})
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready.Ping(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready").SetInternal(err)
			}
		}
		return c.NoContent(http.StatusOK)
	})
	e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))

	e.POST("/register", d.Auth.Register)
	e.POST("/login", d.Auth.Login)
	e.GET("/logout", d.Auth.Logout, d.Authn.OptionalSession)
	e.POST("/logout", d.Auth.Logout, d.Authn.OptionalSession)

	e.GET("/movies", d.Movies.ListMovies)
	e.GET("/movies/:id", d.Movies.GetMovie)
	e.GET("/movies/search", d.Movies.SearchMetadata)
	e.GET("/movies/details/:id", d.Movies.MetadataDetails)

	auth := d.Authn.RequireAuth
	e.GET("/auth/me", d.Auth.Me, auth)
	e.POST("/movies/add_to_list", d.Lists.AddToList, auth)
	e.POST("/movies/remove_from_list", d.Lists.RemoveFromList, auth)
	e.GET("/lists", d.Lists.GetLists, auth)
	e.GET("/users/:username/lists", d.Lists.GetUserLists, auth, RequireSelfOrAdmin("username"))
	e.POST("/movies", d.Movies.CreateMovie, auth, RequireRole(models.RoleAdmin))

	e.GET("/movies/list/:list_name", d.Lists.GetList, d.Authn.RequireSession)

	admin := e.Group("/admin", auth, RequireRole(models.RoleAdmin))
	admin.PATCH("/users/:username/role", d.Auth.SetRole)
	admin.POST("/tokens/revoke", d.Auth.RevokeToken)
	admin.POST("/lists", d.Lists.CreateCustomList)
}
