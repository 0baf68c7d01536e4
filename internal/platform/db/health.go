package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// HealthHandler returns an Echo handler that pings the database with a short
// deadline. A failing ping reports 503 so load balancers stop routing here.
func HealthHandler(pool *pgxpool.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		start := time.Now()
		if err := pool.Ping(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
				"status": "unavailable",
				"error":  err.Error(),
			})
		}

		stats := pool.Stat()
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":      "ok",
			"latency_ms":  time.Since(start).Milliseconds(),
			"total_conns": stats.TotalConns(),
			"idle_conns":  stats.IdleConns(),
		})
	}
}
