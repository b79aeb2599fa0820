package httpserver

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/watchit/internal/metrics"
	"github.com/Skotchmaster/watchit/internal/service"
	"github.com/Skotchmaster/watchit/internal/transport"
	"github.com/Skotchmaster/watchit/pkg/logging"
)

type ListsHTTP struct {
	Svc     *service.ListService
	Metrics *metrics.Metrics
}

func bindListMutation(c echo.Context, handler string) (*transport.ListMutation, error) {
	l := logging.FromContext(c.Request().Context()).With("handler", handler)

	var req transport.ListMutation
	if err := c.Bind(&req); err != nil {
		l.Warn(handler+"_error", "status", 400, "error", err)
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.MovieID == nil {
		l.Warn(handler+"_error", "status", 400, "reason", "movie_id missing")
		return nil, echo.NewHTTPError(http.StatusBadRequest, "movie_id is required")
	}
	return &req, nil
}

func (h *ListsHTTP) AddToList(c echo.Context) error {
	req, err := bindListMutation(c, "add_to_list")
	if err != nil {
		return err
	}
	list, movieID := req.ListOrName(), *req.MovieID

	added, err := h.Svc.AddToList(c.Request().Context(), ClaimsFrom(c).Username, movieID, list)
	if err != nil {
		return err
	}
	h.Metrics.ListMutation(list, "add", added)

	return c.JSON(http.StatusOK, transport.MessageResponse{
		Message: fmt.Sprintf("Movie %d added to %s", movieID, list),
	})
}

func (h *ListsHTTP) RemoveFromList(c echo.Context) error {
	req, err := bindListMutation(c, "remove_from_list")
	if err != nil {
		return err
	}
	list, movieID := req.ListOrName(), *req.MovieID

	removed, err := h.Svc.RemoveFromList(c.Request().Context(), ClaimsFrom(c).Username, movieID, list)
	if err != nil {
		return err
	}
	h.Metrics.ListMutation(list, "remove", removed)

	msg := fmt.Sprintf("Movie %d removed from %s", movieID, list)
	if !removed {
		msg = fmt.Sprintf("Movie %d was not in %s", movieID, list)
	}
	return c.JSON(http.StatusOK, transport.RemoveResponse{Message: msg, Removed: removed})
}

func (h *ListsHTTP) GetList(c echo.Context) error {
	ids, err := h.Svc.GetList(c.Request().Context(), ClaimsFrom(c).Username, c.Param("list_name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ids)
}

// GetLists returns the caller's lists with metadata for every movie.
func (h *ListsHTTP) GetLists(c echo.Context) error {
	lists, err := h.Svc.GetListsWithDetails(c.Request().Context(), ClaimsFrom(c).Username)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, lists)
}

func (h *ListsHTTP) GetUserLists(c echo.Context) error {
	lists, err := h.Svc.GetLists(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, lists)
}

func (h *ListsHTTP) CreateCustomList(c echo.Context) error {
	var req transport.CustomList
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := h.Svc.CreateCustomList(c.Request().Context(), ClaimsFrom(c), req.Name); err != nil {
		return err
	}
	return c.NoContent(http.StatusCreated)
}
