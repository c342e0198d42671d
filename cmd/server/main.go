package main

import (
	"errors"
	"io/fs"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/iliyamo/public-health-assistant/internal/config"
	"github.com/iliyamo/public-health-assistant/internal/format"
	"github.com/iliyamo/public-health-assistant/internal/metrics"
	"github.com/iliyamo/public-health-assistant/internal/oracle"
	"github.com/iliyamo/public-health-assistant/internal/service"
	"github.com/iliyamo/public-health-assistant/internal/topic"
)

func main() {
	root := &cobra.Command{
		Use:           "health-assistant",
		Short:         "Public health chat assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// .env is optional; the real environment always wins.
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				log.Printf("config: .env not loaded: %v", err)
			}
		},
	}
	root.AddCommand(serveCmd(), formatCmd(), askCmd(), consumeCmd())

	if err := root.Execute(); err != nil {
		log.Printf("error: %v", err)
		os.Exit(1)
	}
}

// buildChat wires the chat pipeline from the environment. The process exits
// when GEMINI_API_KEY is missing.
func buildChat(cfg config.Config, m *metrics.Metrics, events service.EventPublisher) (*service.Chat, error) {
	keywords, err := config.LoadKeywords(cfg.KeywordsFile, topic.DefaultKeywords())
	if err != nil {
		return nil, err
	}
	gate := topic.NewGate(keywords)
	formatter := format.New(nil, format.WithMinItemLength(cfg.MinItemLength))

	oc := config.LoadOracleConfig()
	client := oracle.NewClient(oracle.Config{
		APIKey:      oc.APIKey,
		Model:       oc.Model,
		BaseURL:     oc.BaseURL,
		Timeout:     oc.Timeout,
		Temperature: oc.Temperature,
		MaxTokens:   oc.MaxTokens,
	})
	log.Printf("chat: %d topic keywords, model %s", gate.Len(), client.Model())

	return service.NewChat(gate, formatter, client, service.Options{
		Model:        client.Model(),
		Metrics:      m,
		Events:       events,
		ExposeDetail: cfg.Env != "prod",
	}), nil
}
