package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iliyamo/public-health-assistant/internal/config"
	"github.com/iliyamo/public-health-assistant/internal/format"
)

// formatCmd runs the formatter over model text from a file or stdin.
func formatCmd() *cobra.Command {
	var wrap bool
	cmd := &cobra.Command{
		Use:   "format <file|->",
		Short: "Format model text into HTML sections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			raw, err := io.ReadAll(r)
			if err != nil {
				return err
			}

			cfg := config.Load()
			out := format.New(nil, format.WithMinItemLength(cfg.MinItemLength)).Format(string(raw))
			if wrap {
				out = format.Wrap(out)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().BoolVar(&wrap, "wrap", false, "wrap the fragment in the answer container")
	return cmd
}

type askOutput struct {
	Outcome    string   `json:"outcome"`
	Status     int      `json:"status"`
	HTML       string   `json:"html,omitempty"`
	Response   string   `json:"response,omitempty"`
	Detail     string   `json:"detail,omitempty"`
	Sections   []string `json:"sections,omitempty"`
	RetryAfter int      `json:"retry_after,omitempty"`
}

// askCmd runs one query through the full pipeline, oracle included.
func askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <query>",
		Short: "Ask one question and print the JSON result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			chat, err := buildChat(cfg, nil, nil)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
			defer cancel()
			res := chat.Ask(ctx, strings.Join(args, " "))

			out := askOutput{
				Outcome:    string(res.Outcome),
				Status:     res.Status(),
				HTML:       res.HTML,
				Response:   res.Message,
				Detail:     res.Detail,
				Sections:   res.Sections,
				RetryAfter: int(res.RetryAfter.Seconds()),
			}
			if res.Raw != "" {
				out.Response = res.Raw
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(out)
		},
	}
}
