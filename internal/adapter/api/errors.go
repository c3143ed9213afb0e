package api

import (
	"errors"
	"fmt"
	"github.com/burenotti/go_health_tracker/internal/domain"
	"github.com/labstack/echo/v4"
	"log/slog"
	"net/http"
	"strings"
)

type JsonErrorModel struct {
	Message string `json:"message"`
}

func JsonError(c echo.Context, status int, content any) error {
	data := &JsonErrorModel{Message: fmt.Sprintf("%v", content)}
	return c.JSON(status, data)
}

// fail maps a service error onto its HTTP status. Unclassified errors are
// logged and hidden from the client.
func (s *Server) fail(c echo.Context, err error) error {
	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
		return JsonError(c, status, "internal server error")
	}
	return JsonError(c, status, publicMessage(err))
}

func StatusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrComputation):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// publicMessage drops the unit of work decoration from err.
func publicMessage(err error) string {
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return strings.TrimPrefix(msg, "state rollback: ")
}
