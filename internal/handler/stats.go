package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// OutcomeCounter is implemented by repository.ChatEventRepo.
type OutcomeCounter interface {
	CountByOutcome(ctx context.Context, since time.Time) (map[string]int64, error)
}

// StatsHandler serves GET /stats from the audit store.
type StatsHandler struct {
	Events OutcomeCounter
	Now    func() time.Time
}

// Stats returns per-outcome counts for the last ?hours= hours (default 24,
// max 720).
func (h *StatsHandler) Stats(c echo.Context) error {
	hours := 24
	if v := c.QueryParam("hours"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 720 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "hours must be between 1 and 720"})
		}
		hours = n
	}
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	since := now().UTC().Add(-time.Duration(hours) * time.Hour)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	counts, err := h.Events.CountByOutcome(ctx, since)
	if err != nil {
		c.Logger().Errorf("stats: count by outcome: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	var total int64
	for _, n := range counts {
		total += n
	}
	return c.JSON(http.StatusOK, echo.Map{
		"since":    since.Format(time.RFC3339),
		"hours":    hours,
		"total":    total,
		"outcomes": counts,
	})
}
