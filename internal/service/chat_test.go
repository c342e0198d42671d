package service

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/iliyamo/public-health-assistant/internal/format"
	"github.com/iliyamo/public-health-assistant/internal/oracle"
	"github.com/iliyamo/public-health-assistant/internal/queue"
	"github.com/iliyamo/public-health-assistant/internal/topic"
)

type fakeOracle struct {
	text    string
	err     error
	calls   int
	prompts []string
}

func (f *fakeOracle) Generate(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	return f.text, f.err
}

type chanPublisher struct {
	ch chan queue.ChatAnsweredEvent
}

func (p chanPublisher) Publish(_ context.Context, ev queue.ChatAnsweredEvent) error {
	p.ch <- ev
	return nil
}

func newChat(o Oracle, opts Options) *Chat {
	return NewChat(topic.NewGate(topic.DefaultKeywords()), format.New(nil), o, opts)
}

func TestAsk_MissingQuery(t *testing.T) {
	o := &fakeOracle{}
	res := newChat(o, Options{}).Ask(context.Background(), "   \n\t")

	if res.Outcome != OutcomeMissingQuery || res.Message != MsgMissingQuery {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Status() != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Status())
	}
	if o.calls != 0 {
		t.Fatalf("oracle must not be called, got %d calls", o.calls)
	}
}

func TestAsk_OutOfScopeSkipsOracle(t *testing.T) {
	o := &fakeOracle{text: "should not be used"}
	res := newChat(o, Options{}).Ask(context.Background(), "What's the weather today?")

	if res.Outcome != OutcomeOutOfScope || res.Message != MsgOutOfScope {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Status() != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Status())
	}
	if o.calls != 0 {
		t.Fatalf("oracle must not be called, got %d calls", o.calls)
	}
	if res.HTML != "" {
		t.Fatalf("out-of-scope result must carry no html: %q", res.HTML)
	}
}

func TestAsk_AnsweredFormatsModelText(t *testing.T) {
	o := &fakeOracle{text: "Causes:\n- Poor sanitation\nPrevention:\n- Boil water\n- Wash hands\n"}
	res := newChat(o, Options{}).Ask(context.Background(), "  How do I prevent cholera?  ")

	if res.Outcome != OutcomeAnswered {
		t.Fatalf("expected answered, got %+v", res)
	}
	if res.Raw != o.text {
		t.Fatalf("raw text not preserved: %q", res.Raw)
	}
	if !strings.HasPrefix(res.HTML, `<div class="health-answer"`) {
		t.Fatalf("answer not wrapped: %q", res.HTML)
	}
	for _, want := range []string{"Possible Causes", "Poor sanitation", "Boil water", format.DefaultDisclaimer} {
		if !strings.Contains(res.HTML, want) {
			t.Fatalf("expected %q in html %q", want, res.HTML)
		}
	}
	if want := []string{"Possible Causes", "Prevention", "Disclaimer"}; !reflect.DeepEqual(res.Sections, want) {
		t.Fatalf("expected sections %v, got %v", want, res.Sections)
	}

	if len(o.prompts) != 1 {
		t.Fatalf("expected one prompt, got %d", len(o.prompts))
	}
	prompt := o.prompts[0]
	if !strings.HasSuffix(prompt, "\n\nUser: How do I prevent cholera?") {
		t.Fatalf("prompt must end with the trimmed query: %q", prompt)
	}
	if !strings.Contains(prompt, oracle.Sentinel) {
		t.Fatalf("prompt must mention the sentinel: %q", prompt)
	}
}

func TestAsk_SentinelMeansNoInformation(t *testing.T) {
	o := &fakeOracle{text: "Sorry. " + oracle.Sentinel}
	res := newChat(o, Options{}).Ask(context.Background(), "Tell me about a rare disease")

	if res.Outcome != OutcomeNoInformation || res.Message != MsgNoInformation {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.HTML != "" || res.Status() != http.StatusOK {
		t.Fatalf("no-information must be a plain 200 message: %+v", res)
	}
}

func TestAsk_OracleFailuresMapToOutcomes(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		outcome Outcome
		status  int
	}{
		{"unreachable", &oracle.Error{Kind: oracle.ErrUnreachable, Message: "dial tcp: refused"}, OutcomeUpstreamUnavailable, http.StatusBadGateway},
		{"timeout", &oracle.Error{Kind: oracle.ErrTimeout}, OutcomeUpstreamTimeout, http.StatusGatewayTimeout},
		{"deadline", context.DeadlineExceeded, OutcomeUpstreamTimeout, http.StatusGatewayTimeout},
		{"auth", &oracle.Error{Kind: oracle.ErrUnauthorized, Status: 403}, OutcomeUpstreamAuth, http.StatusBadGateway},
		{"rate limited", &oracle.Error{Kind: oracle.ErrRateLimited, Status: 429, RetryAfter: 7 * time.Second}, OutcomeUpstreamRateLimited, http.StatusTooManyRequests},
		{"upstream 500", &oracle.Error{Kind: oracle.ErrUpstream, Status: 500}, OutcomeUpstreamUnavailable, http.StatusBadGateway},
		{"empty", &oracle.Error{Kind: oracle.ErrEmptyResponse}, OutcomeNoInformation, http.StatusOK},
		{"unknown", errors.New("boom"), OutcomeUpstreamUnavailable, http.StatusBadGateway},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := newChat(&fakeOracle{err: tc.err}, Options{}).Ask(context.Background(), "fever and headache")
			if res.Outcome != tc.outcome {
				t.Fatalf("expected %s, got %s", tc.outcome, res.Outcome)
			}
			if res.Status() != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, res.Status())
			}
			if res.Message == "" || res.HTML != "" {
				t.Fatalf("failure must carry a message and no html: %+v", res)
			}
			if res.Detail != "" {
				t.Fatalf("detail must stay hidden by default: %q", res.Detail)
			}
		})
	}
}

func TestAsk_RateLimitedCarriesRetryAfter(t *testing.T) {
	err := &oracle.Error{Kind: oracle.ErrRateLimited, Status: 429, RetryAfter: 7 * time.Second}
	res := newChat(&fakeOracle{err: err}, Options{}).Ask(context.Background(), "malaria symptoms")

	if res.RetryAfter != 7*time.Second {
		t.Fatalf("expected retry-after 7s, got %s", res.RetryAfter)
	}
	if !res.Retryable() {
		t.Fatalf("rate-limited outcome should be retryable")
	}
}

func TestAsk_ExposeDetail(t *testing.T) {
	err := &oracle.Error{Kind: oracle.ErrUnreachable, Message: "dial tcp 10.0.0.1:443: connection refused"}
	res := newChat(&fakeOracle{err: err}, Options{ExposeDetail: true}).Ask(context.Background(), "flu vaccine")

	if !strings.Contains(res.Detail, "connection refused") {
		t.Fatalf("expected detail to carry the error, got %q", res.Detail)
	}
	if res.Message != MsgUnavailable {
		t.Fatalf("message must stay canned, got %q", res.Message)
	}
}

func TestAsk_PublishesEvent(t *testing.T) {
	pub := chanPublisher{ch: make(chan queue.ChatAnsweredEvent, 1)}
	o := &fakeOracle{text: "Prevention:\n- Wash hands often\n"}
	c := newChat(o, Options{Model: "gemini-test", Events: pub})

	ctx := WithRequestID(context.Background(), "req-42")
	res := c.Ask(ctx, "diarrhea prevention")
	if res.Outcome != OutcomeAnswered {
		t.Fatalf("expected answered, got %+v", res)
	}

	select {
	case ev := <-pub.ch:
		if ev.EventID == "" || ev.RequestID != "req-42" {
			t.Fatalf("ids not set: %+v", ev)
		}
		if ev.Outcome != string(OutcomeAnswered) || ev.Status != http.StatusOK || ev.Model != "gemini-test" {
			t.Fatalf("unexpected event: %+v", ev)
		}
		if ev.QueryChars != len("diarrhea prevention") {
			t.Fatalf("expected %d query chars, got %d", len("diarrhea prevention"), ev.QueryChars)
		}
		if _, err := time.Parse(time.RFC3339, ev.AnsweredAt); err != nil {
			t.Fatalf("answered_at not RFC3339: %q", ev.AnsweredAt)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event was not published")
	}
}

func TestAsk_MissingQueryPublishesNothing(t *testing.T) {
	pub := chanPublisher{ch: make(chan queue.ChatAnsweredEvent, 1)}
	newChat(&fakeOracle{}, Options{Events: pub}).Ask(context.Background(), "")

	select {
	case ev := <-pub.ch:
		t.Fatalf("unexpected event: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestResultStatusDefault(t *testing.T) {
	if got := (Result{Outcome: OutcomeFormatFailed}).Status(); got != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", got)
	}
}
