// Package router builds the echo instance: middleware, API routes and the
// static front-end.
package router

import (
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/public-health-assistant/internal/config"
	"github.com/iliyamo/public-health-assistant/internal/handler"
	"github.com/iliyamo/public-health-assistant/internal/metrics"
	"github.com/iliyamo/public-health-assistant/internal/middleware"
)

// Deps are the collaborators the routes need. Redis, Metrics and Stats may
// be nil.
type Deps struct {
	Config    config.Config
	Chat      handler.Asker
	Redis     *redis.Client
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig
	Metrics   *metrics.Metrics
	Stats     handler.OutcomeCounter
}

// New returns an echo instance with the global middleware installed and all
// routes registered.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = jsonErrorHandler

	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			log.Printf("http: %d %s %s %s from %s id=%s", v.Status, v.Method, v.URI, v.Latency, v.RemoteIP, v.RequestID)
			return nil
		},
	}))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAccept},
	}))
	e.Use(echomw.BodyLimit(d.Config.MaxBodyBytes))

	RegisterRoutes(e, d)
	RegisterStatic(e, d.Config.StaticDir)
	return e
}

// RegisterRoutes maps the API endpoints. The answer cache sits in front of
// the rate limiter so cached answers do not spend tokens.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)
	e.GET("/health", handler.HealthJSON)
	e.GET("/readyz", (&handler.Readiness{Redis: d.Redis}).Readyz)
	e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	e.POST("/echo", handler.Echo)

	chat := &handler.ChatHandler{
		Asker:      d.Chat,
		IncludeRaw: d.Config.IncludeRaw,
		Timeout:    d.Config.RequestTimeout,
	}
	e.POST("/chat", chat.Chat,
		middleware.NewAnswerCache(d.Cache, d.Redis, d.Metrics),
		middleware.NewTokenBucket(d.RateLimit, d.Redis, d.Metrics),
	)

	if d.Stats != nil {
		e.GET("/stats", (&handler.StatsHandler{Events: d.Stats}).Stats)
	}
}

// RegisterStatic serves the pre-built front-end. Unknown GET paths fall back
// to index.html so client-side routes survive a reload.
func RegisterStatic(e *echo.Echo, dir string) {
	if dir == "" {
		return
	}
	e.Use(echomw.StaticWithConfig(echomw.StaticConfig{
		Root:  dir,
		Index: "index.html",
		HTML5: true,
		Skipper: func(c echo.Context) bool {
			return c.Request().Method != http.MethodGet && c.Request().Method != http.MethodHead
		},
	}))
}

// jsonErrorHandler renders every unhandled error as {"error": message}.
func jsonErrorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	msg := http.StatusText(code)
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
	}
	req := c.Request()
	if code >= http.StatusInternalServerError {
		log.Printf("http: %d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
	}
	if c.Response().Committed {
		return
	}
	if req.Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, echo.Map{"error": msg})
}
