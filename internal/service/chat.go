// Package service runs the chat pipeline: validation, topic gate, prompt,
// oracle call, sentinel check and formatting.
package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/iliyamo/public-health-assistant/internal/format"
	"github.com/iliyamo/public-health-assistant/internal/metrics"
	"github.com/iliyamo/public-health-assistant/internal/oracle"
	"github.com/iliyamo/public-health-assistant/internal/queue"
	"github.com/iliyamo/public-health-assistant/internal/topic"
)

// Oracle generates text for a prompt.
type Oracle interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// EventPublisher receives one event per finished request.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.ChatAnsweredEvent) error
}

// Options are the optional collaborators of Chat.
type Options struct {
	Model        string
	Metrics      *metrics.Metrics
	Events       EventPublisher
	EventTimeout time.Duration
	ExposeDetail bool // attach raw error text as Result.Detail
}

// Chat is safe for concurrent use; it keeps no per-request state.
type Chat struct {
	gate      *topic.Gate
	formatter *format.Formatter
	oracle    Oracle
	opts      Options
}

func NewChat(gate *topic.Gate, formatter *format.Formatter, o Oracle, opts Options) *Chat {
	if opts.EventTimeout <= 0 {
		opts.EventTimeout = 5 * time.Second
	}
	return &Chat{gate: gate, formatter: formatter, oracle: o, opts: opts}
}

type requestIDKey struct{}

// WithRequestID attaches the HTTP request id so it travels with the event.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Ask answers one query.
func (s *Chat) Ask(ctx context.Context, query string) Result {
	q := strings.TrimSpace(query)
	var oracleTime time.Duration
	res := s.ask(ctx, q, &oracleTime)

	s.opts.Metrics.ChatOutcome(string(res.Outcome))
	if res.Outcome != OutcomeMissingQuery {
		s.publish(ctx, q, res, oracleTime)
	}
	return res
}

func (s *Chat) ask(ctx context.Context, q string, oracleTime *time.Duration) Result {
	if q == "" {
		return Result{Outcome: OutcomeMissingQuery, Message: MsgMissingQuery}
	}
	if !s.gate.IsInScope(q) {
		return Result{Outcome: OutcomeOutOfScope, Message: MsgOutOfScope}
	}

	prompt := oracle.BuildPrompt(s.formatter.Schema().Headings(), q)
	start := time.Now()
	raw, err := s.oracle.Generate(ctx, prompt)
	*oracleTime = time.Since(start)
	s.opts.Metrics.OracleCall(*oracleTime, oracleResult(err))

	if err != nil {
		log.Printf("chat: oracle call failed after %s: %v", oracleTime.Round(time.Millisecond), err)
		return s.failure(err)
	}
	if oracle.IsNoInformation(raw) {
		return Result{Outcome: OutcomeNoInformation, Message: MsgNoInformation}
	}

	sections := s.formatter.Parse(raw)
	fragment := s.formatter.Render(sections)
	if fragment == "" {
		log.Printf("chat: formatter produced an empty fragment for %d bytes of model text", len(raw))
		return Result{Outcome: OutcomeFormatFailed, Message: MsgApology}
	}
	return Result{
		Outcome:  OutcomeAnswered,
		HTML:     format.Wrap(fragment),
		Raw:      raw,
		Sections: sections.NonEmpty(),
	}
}

func (s *Chat) failure(err error) Result {
	res := Result{}
	switch {
	case errors.Is(err, oracle.ErrEmptyResponse):
		return Result{Outcome: OutcomeNoInformation, Message: MsgNoInformation}
	case errors.Is(err, oracle.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		res.Outcome, res.Message = OutcomeUpstreamTimeout, MsgTimeout
	case errors.Is(err, oracle.ErrUnauthorized):
		res.Outcome, res.Message = OutcomeUpstreamAuth, MsgMisconfigured
	case errors.Is(err, oracle.ErrRateLimited):
		res.Outcome, res.Message = OutcomeUpstreamRateLimited, MsgUpstreamBusy
		res.RetryAfter, _ = oracle.RetryAfter(err)
	default:
		res.Outcome, res.Message = OutcomeUpstreamUnavailable, MsgUnavailable
	}
	if s.opts.ExposeDetail {
		res.Detail = err.Error()
	}
	return res
}

func oracleResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, oracle.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, oracle.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, oracle.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, oracle.ErrEmptyResponse):
		return "empty"
	case errors.Is(err, oracle.ErrUnreachable):
		return "unreachable"
	default:
		return "error"
	}
}

// publish sends the event in the background so a slow broker never delays
// the answer.
func (s *Chat) publish(ctx context.Context, q string, res Result, oracleTime time.Duration) {
	if s.opts.Events == nil {
		return
	}
	ev := queue.ChatAnsweredEvent{
		EventID:    uuid.NewString(),
		RequestID:  requestID(ctx),
		Outcome:    string(res.Outcome),
		Status:     res.Status(),
		QueryChars: utf8.RuneCountInString(q),
		Sections:   res.Sections,
		Model:      s.opts.Model,
		OracleMS:   oracleTime.Milliseconds(),
		AnsweredAt: time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		pctx, cancel := context.WithTimeout(context.Background(), s.opts.EventTimeout)
		defer cancel()
		if err := s.opts.Events.Publish(pctx, ev); err != nil {
			log.Printf("chat: event %s not published: %v", ev.EventID, err)
		}
	}()
}
