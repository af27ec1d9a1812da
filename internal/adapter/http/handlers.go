package http

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct{ db Pinger }

// NewHandler: db may be nil, in which case health reports the process only.
func NewHandler(db Pinger) *Handler { return &Handler{db: db} }

func (h *Handler) Health(c echo.Context) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{
				"status": "unavailable",
				"time":   now,
			})
		}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"time":   now,
	})
}
