package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/mindmapd/internal/interaction"
	"github.com/fyrsmithlabs/mindmapd/internal/mindmap"
	"github.com/fyrsmithlabs/mindmapd/internal/render"
	"github.com/fyrsmithlabs/mindmapd/internal/store"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// apiError maps domain errors to a status and an ErrorResponse.
func apiError(err error) (int, ErrorResponse) {
	var he *echo.HTTPError
	switch {
	case errors.Is(err, mindmap.ErrValidation):
		return http.StatusUnprocessableEntity, ErrorResponse{Error: "Validation failed", Message: err.Error()}
	case errors.Is(err, mindmap.ErrGeneration):
		return http.StatusInternalServerError, ErrorResponse{Error: "Failed to generate mind map", Message: err.Error()}
	case errors.Is(err, mindmap.ErrBusy):
		return http.StatusConflict, ErrorResponse{Error: "Submission in progress", Message: err.Error()}
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Error: "Mind map not found", Message: err.Error()}
	case errors.Is(err, interaction.ErrSessionNotFound):
		return http.StatusNotFound, ErrorResponse{Error: "Session not found", Message: err.Error()}
	case errors.Is(err, interaction.ErrUnknownNode):
		return http.StatusNotFound, ErrorResponse{Error: "Node not found", Message: err.Error()}
	case errors.Is(err, interaction.ErrTooManySessions):
		return http.StatusServiceUnavailable, ErrorResponse{Error: "Too many sessions", Message: err.Error()}
	case errors.Is(err, render.ErrNothingToRender):
		return http.StatusNotFound, ErrorResponse{Error: "Nothing to render", Message: err.Error()}
	case errors.Is(err, render.ErrTooLarge):
		return http.StatusUnprocessableEntity, ErrorResponse{Error: "Diagram too large to render", Message: err.Error()}
	case errors.As(err, &he):
		return he.Code, ErrorResponse{Error: http.StatusText(he.Code), Message: fmt.Sprint(he.Message)}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"}
	}
}

func errorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, body := apiError(err)
		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("path", c.Path()),
				zap.Int("status", status),
				zap.Error(err))
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.Warn("failed to write error response", zap.Error(err))
		}
	}
}
