package handler

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/public-health-assistant/internal/middleware"
	"github.com/iliyamo/public-health-assistant/internal/service"
)

// Asker is the chat pipeline as seen by the HTTP layer.
type Asker interface {
	Ask(ctx context.Context, query string) service.Result
}

// ChatHandler serves POST /chat.
type ChatHandler struct {
	Asker      Asker
	IncludeRaw bool          // add the model text under "response" on success
	Timeout    time.Duration // upper bound for the whole pipeline
}

type chatRequest struct {
	Query string `json:"query"`
}

// Chat answers {"query": "..."}. A body that does not bind is treated like a
// missing query.
func (h *ChatHandler) Chat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		req.Query = ""
	}

	ctx := c.Request().Context()
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}
	ctx = service.WithRequestID(ctx, c.Response().Header().Get(echo.HeaderXRequestID))

	res := h.Asker.Ask(ctx, req.Query)
	c.Response().Header().Set(middleware.HeaderOutcome, string(res.Outcome))
	return c.JSON(res.Status(), h.payload(c, res))
}

func (h *ChatHandler) payload(c echo.Context, res service.Result) echo.Map {
	if res.Outcome == service.OutcomeAnswered {
		out := echo.Map{"html": res.HTML, "outcome": res.Outcome}
		if h.IncludeRaw {
			out["response"] = res.Raw
		}
		return out
	}

	out := echo.Map{"response": res.Message, "outcome": res.Outcome}
	if res.Detail != "" {
		out["detail"] = res.Detail
	}
	if res.RetryAfter > 0 {
		secs := int(math.Ceil(res.RetryAfter.Seconds()))
		c.Response().Header().Set(echo.HeaderRetryAfter, strconv.Itoa(secs))
		out["retry_after"] = secs
	}
	return out
}

// Echo returns the submitted query unchanged. The front-end uses it to check
// connectivity without spending oracle quota.
func Echo(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body")
	}
	return c.JSON(http.StatusOK, echo.Map{"query": req.Query})
}
