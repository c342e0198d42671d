package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iliyamo/public-health-assistant/internal/config"
	"github.com/iliyamo/public-health-assistant/internal/database"
	"github.com/iliyamo/public-health-assistant/internal/queue"
	"github.com/iliyamo/public-health-assistant/internal/repository"
)

// consumeCmd drains chat.answered events into MySQL when DB_HOST is set,
// otherwise into a log file.
func consumeCmd() *cobra.Command {
	var logPath string
	cmd := &cobra.Command{
		Use:   "consume",
		Short: "Consume chat.answered events into the audit store",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ec := config.LoadEventsConfig()
			var sink queue.Sink = queue.FileSink{Path: logPath}
			if dbc := config.LoadDBConfig(); dbc.Enabled {
				db, err := database.Open(dbc)
				if err != nil {
					return err
				}
				defer func() { _ = db.Close() }()
				repo := repository.NewChatEventRepo(db)
				if err := repo.EnsureSchema(ctx); err != nil {
					return err
				}
				sink = repo
				log.Printf("chat-consumer: writing events to mysql %s/%s", dbc.Host, dbc.Name)
			} else {
				log.Printf("chat-consumer: writing events to %s", logPath)
			}

			c := &queue.Consumer{URL: ec.URL, Queue: ec.Queue, Sink: sink}
			if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			log.Println("chat-consumer: stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&logPath, "log", "logs/chat.log", "event log file when no database is configured")
	return cmd
}
