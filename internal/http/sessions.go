package http

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fyrsmithlabs/mindmapd/internal/diagram"
	"github.com/fyrsmithlabs/mindmapd/internal/interaction"
	"github.com/fyrsmithlabs/mindmapd/internal/logging"
	"github.com/fyrsmithlabs/mindmapd/internal/render"
)

func (s *Server) handleOpenSession(c echo.Context) error {
	ctx := logging.WithMindMapID(c.Request().Context(), c.Param("id"))
	info, snap, err := s.svc.OpenSession(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, SessionResponse{Info: info, Snapshot: snap})
}

func (s *Server) handleSnapshot(c echo.Context) error {
	resp, err := s.withSession(c, func(*interaction.Session) error { return nil })
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// handleDrag forwards a drag move, or a drag end when final is set.
func (s *Server) handleDrag(c echo.Context) error {
	var req DragRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.NodeID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "node_id is required")
	}

	var committed bool
	resp, err := s.withSession(c, func(sess *interaction.Session) error {
		if err := requireNodes(sess, req.NodeID); err != nil {
			return err
		}
		pos := diagram.Position{X: req.X, Y: req.Y}
		if req.Final {
			committed = sess.DragEnd(req.NodeID, pos)
		} else {
			sess.DragMove(req.NodeID, pos)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, DragResponse{SessionResponse: resp, Committed: committed})
}

func (s *Server) handleConnect(c echo.Context) error {
	var req ConnectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Source == "" || req.Target == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "source and target are required")
	}

	resp, err := s.withSession(c, func(sess *interaction.Session) error {
		if err := requireNodes(sess, req.Source, req.Target); err != nil {
			return err
		}
		sess.Connect(req.Source, req.Target)
		return nil
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleFullscreen(c echo.Context) error {
	resp, err := s.withSession(c, func(sess *interaction.Session) error {
		sess.ToggleFullscreen()
		return nil
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleSnapshotPNG(c echo.Context) error {
	var buf bytes.Buffer
	_, err := s.withSession(c, func(sess *interaction.Session) error {
		return render.PNG(&buf, sess.Nodes(), sess.Edges(), s.config.Render)
	})
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

func (s *Server) handleCloseSession(c echo.Context) error {
	ctx := logging.WithSessionID(c.Request().Context(), c.Param("sid"))
	if err := s.svc.CloseSession(ctx, c.Param("sid")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// withSession runs fn on the session named by the sid path parameter and
// returns the state it leaves behind.
func (s *Server) withSession(c echo.Context, fn func(*interaction.Session) error) (SessionResponse, error) {
	sid := c.Param("sid")
	c.SetRequest(c.Request().WithContext(logging.WithSessionID(c.Request().Context(), sid)))

	var resp SessionResponse
	err := s.svc.Sessions().Do(sid, func(sess *interaction.Session) error {
		if err := fn(sess); err != nil {
			return err
		}
		resp.Snapshot = sess.Snapshot()
		if p, ok := sess.Preview(); ok {
			resp.Preview = &p
		}
		return nil
	})
	if err != nil {
		return SessionResponse{}, err
	}

	info, err := s.svc.Sessions().Info(sid)
	if err != nil {
		return SessionResponse{}, err
	}
	resp.Info = info
	return resp, nil
}

// requireNodes rejects unknown ids before the engine sees them; the engine
// panics on them.
func requireNodes(sess *interaction.Session, ids ...string) error {
	for _, id := range ids {
		if !sess.Has(id) {
			return fmt.Errorf("%w: %q", interaction.ErrUnknownNode, id)
		}
	}
	return nil
}
