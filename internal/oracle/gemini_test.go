package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Config{APIKey: "test-key", BaseURL: srv.URL, Timeout: time.Second, Temperature: 0.3, MaxTokens: 256})
}

func TestGenerate_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/gemini-1.5-flash:generateContent" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
			t.Errorf("expected api key header, got %q", got)
		}
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.GenerationConfig.MaxOutputTokens != 256 || req.Contents[0].Parts[0].Text != "hello" {
			t.Errorf("unexpected request: %+v", req)
		}
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Prevention:\n"},{"text":"- Rest"}]},"finishReason":"STOP"}]}`))
	})

	got, err := c.Generate(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "Prevention:\n- Rest" {
		t.Fatalf("expected joined parts, got %q", got)
	}
}

func TestGenerate_StatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		header map[string]string
		want   error
	}{
		{"forbidden", http.StatusForbidden, `{"error":"denied"}`, nil, ErrUnauthorized},
		{"bad key", http.StatusBadRequest, `{"error":{"status":"INVALID_ARGUMENT","details":[{"reason":"API_KEY_INVALID"}]}}`, nil, ErrUnauthorized},
		{"bad request", http.StatusBadRequest, `{"error":"bad"}`, nil, ErrUpstream},
		{"quota", http.StatusTooManyRequests, `{"error":"quota"}`, map[string]string{"Retry-After": "7"}, ErrRateLimited},
		{"unavailable", http.StatusServiceUnavailable, `overloaded`, nil, ErrUnreachable},
		{"gateway timeout", http.StatusGatewayTimeout, ``, nil, ErrTimeout},
		{"internal", http.StatusInternalServerError, `boom`, nil, ErrUpstream},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tc.header {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := c.Generate(context.Background(), "q")
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			var oe *Error
			if !errors.As(err, &oe) || oe.Status != tc.status {
				t.Fatalf("expected *Error with status %d, got %#v", tc.status, err)
			}
		})
	}
}

func TestGenerate_RetryAfter(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "12")
		w.WriteHeader(http.StatusTooManyRequests)
	})
	_, err := c.Generate(context.Background(), "q")
	d, ok := RetryAfter(err)
	if !ok || d != 12*time.Second {
		t.Fatalf("expected 12s retry-after, got %v (ok=%v)", d, ok)
	}
}

func TestGenerate_EmptyAndBlocked(t *testing.T) {
	bodies := []string{
		`{"candidates":[]}`,
		`{"candidates":[{"content":{"parts":[{"text":"  "}]},"finishReason":"MAX_TOKENS"}]}`,
		`{"promptFeedback":{"blockReason":"SAFETY"}}`,
	}
	for _, body := range bodies {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		})
		if _, err := c.Generate(context.Background(), "q"); !errors.Is(err, ErrEmptyResponse) {
			t.Fatalf("%s: expected ErrEmptyResponse, got %v", body, err)
		}
	}
}

func TestGenerate_Timeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(500 * time.Millisecond):
		case <-r.Context().Done():
		}
	})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := c.Generate(ctx, "q"); !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestGenerate_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: url, Timeout: time.Second})
	if _, err := c.Generate(context.Background(), "q"); !errors.Is(err, ErrUnreachable) {
		t.Fatalf("expected ErrUnreachable, got %v", err)
	}
}

func TestBuildPrompt_NamesEveryHeading(t *testing.T) {
	headings := []string{"Possible Causes", "Prevention", "Disclaimer"}
	p := BuildPrompt(headings, "  what causes cholera?  ")
	for _, h := range headings {
		if !strings.Contains(p, h+":\n") {
			t.Fatalf("prompt missing heading %q: %s", h, p)
		}
	}
	if !strings.Contains(p, Sentinel) {
		t.Fatalf("prompt must mention the sentinel")
	}
	if !strings.HasSuffix(p, "User: what causes cholera?") {
		t.Fatalf("unexpected prompt tail: %q", p)
	}
}

func TestIsNoInformation(t *testing.T) {
	if !IsNoInformation("  NO_INFORMATION_AVAILABLE\n") {
		t.Fatalf("sentinel not detected")
	}
	if IsNoInformation("Prevention:\n- Rest") {
		t.Fatalf("false positive")
	}
}
