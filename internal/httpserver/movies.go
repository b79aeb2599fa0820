package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/watchit/internal/service"
	"github.com/Skotchmaster/watchit/pkg/logging"
)

type MoviesHTTP struct {
	Svc *service.MovieService
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func movieIDParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		logging.FromContext(c.Request().Context()).Warn("bad_movie_id", "status", 400, "id", c.Param("id"))
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid movie id")
	}
	return id, nil
}

func (h *MoviesHTTP) ListMovies(c echo.Context) error {
	ctx := c.Request().Context()
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), 0)

	res, err := h.Svc.SearchMovies(ctx, c.QueryParam("q"), page, size)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *MoviesHTTP) GetMovie(c echo.Context) error {
	id, err := movieIDParam(c)
	if err != nil {
		return err
	}
	m, err := h.Svc.GetMovie(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

func (h *MoviesHTTP) CreateMovie(c echo.Context) error {
	var in service.MovieInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	m, err := h.Svc.AddMovie(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *MoviesHTTP) SearchMetadata(c echo.Context) error {
	results, err := h.Svc.SearchMetadata(c.Request().Context(), c.QueryParam("query"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, results)
}

func (h *MoviesHTTP) MetadataDetails(c echo.Context) error {
	id, err := movieIDParam(c)
	if err != nil {
		return err
	}
	d, err := h.Svc.MovieDetails(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}
