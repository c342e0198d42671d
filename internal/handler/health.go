package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// Health is the plain liveness probe used by load balancers.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// HealthJSON answers the hosting platform's health check.
func HealthJSON(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

// Readiness reports the state of optional backing services. Without Redis
// the instance is ready; a configured Redis that stops answering marks it
// degraded.
type Readiness struct {
	Redis *redis.Client
}

func (h *Readiness) Readyz(c echo.Context) error {
	if h.Redis == nil {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok", "redis": "disabled"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := h.Redis.Ping(ctx).Err(); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "degraded", "redis": "down"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "redis": "up"})
}
