package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/mindmapd/internal/logging"
	"github.com/fyrsmithlabs/mindmapd/internal/mindmap"
)

const defaultSearchLimit = 20

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:   "ok",
		Version:  s.config.Version,
		Sessions: s.svc.Sessions().Len(),
	})
}

// handleCreate runs the form submission.
func (s *Server) handleCreate(c echo.Context) error {
	var req mindmap.CreateRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid create request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	rec, err := s.svc.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rec)
}

func (s *Server) handleGet(c echo.Context) error {
	ctx := logging.WithMindMapID(c.Request().Context(), c.Param("id"))
	rec, err := s.svc.Get(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rec)
}

func (s *Server) handleLayout(c echo.Context) error {
	ctx := logging.WithMindMapID(c.Request().Context(), c.Param("id"))
	nodes, edges, err := s.svc.Layout(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, LayoutResponse{Nodes: withVisuals(nodes), Edges: edges})
}

// handleSearch lists stored mind maps, fuzzy-matching titles when q is set.
func (s *Server) handleSearch(c echo.Context) error {
	limit := defaultSearchLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a non-negative integer")
		}
		limit = n
	}

	summaries, err := s.svc.Search(c.Request().Context(), c.QueryParam("q"), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summaries)
}
