package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"github.com/iliyamo/public-health-assistant/internal/config"
	"github.com/iliyamo/public-health-assistant/internal/database"
	"github.com/iliyamo/public-health-assistant/internal/metrics"
	"github.com/iliyamo/public-health-assistant/internal/queue"
	"github.com/iliyamo/public-health-assistant/internal/repository"
	"github.com/iliyamo/public-health-assistant/internal/router"
	"github.com/iliyamo/public-health-assistant/internal/service"
)

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the static front-end",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :$PORT)")
	return cmd
}

func runServe(addr string) error {
	cfg := config.Load()
	m := metrics.New()

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	var events service.EventPublisher
	if ec := config.LoadEventsConfig(); ec.Enabled {
		events = queue.NewPublisher(ec.URL, ec.Queue)
		log.Printf("events: publishing to queue %s", ec.Queue)
	}

	chat, err := buildChat(cfg, m, events)
	if err != nil {
		return err
	}

	deps := router.Deps{
		Config:    cfg,
		Chat:      chat,
		Redis:     rdb,
		RateLimit: config.LoadRateLimitConfig(),
		Cache:     config.LoadCacheConfig(),
		Metrics:   m,
	}
	if dbc := config.LoadDBConfig(); dbc.Enabled {
		db, err := database.Open(dbc)
		if err != nil {
			log.Printf("database: audit store unavailable, /stats disabled: %v", err)
		} else {
			defer func() { _ = db.Close() }()
			deps.Stats = repository.NewChatEventRepo(db)
		}
	}

	e := router.New(deps)
	if addr == "" {
		addr = ":" + cfg.Port
	}
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	errCh := make(chan error, 1)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	return waitForShutdown(e, errCh)
}

// waitForShutdown blocks until SIGINT/SIGTERM or a server failure, then
// drains in-flight requests.
func waitForShutdown(e *echo.Echo, errCh <-chan error) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-stop:
	}

	log.Println("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		return err
	}
	return nil
}
