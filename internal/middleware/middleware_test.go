package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/public-health-assistant/internal/config"
)

func newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderXRealIP, "203.0.113.7")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath(target)
	return c, rec
}

func TestDisabledMiddlewarePassesThrough(t *testing.T) {
	called := 0
	next := func(c echo.Context) error {
		called++
		return c.String(http.StatusOK, "ok")
	}

	mws := []echo.MiddlewareFunc{
		NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil, nil),
		NewAnswerCache(config.CacheConfig{Enabled: true, Methods: map[string]bool{"POST": true}}, nil, nil),
		NewTokenBucket(config.RateLimitConfig{Enabled: false}, nil, nil),
	}
	for _, mw := range mws {
		c, rec := newContext(http.MethodPost, "/chat", `{"query":"fever"}`)
		if err := mw(next)(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Code != http.StatusOK || rec.Header().Get("X-Cache") != "" {
			t.Fatalf("expected untouched response, got %d %v", rec.Code, rec.Header())
		}
	}
	if called != len(mws) {
		t.Fatalf("expected %d handler calls, got %d", len(mws), called)
	}
}

func TestRateKeyStrategies(t *testing.T) {
	c, _ := newContext(http.MethodPost, "/chat", "")
	cases := map[string]string{
		"ip":       "pha:rl:ip:203.0.113.7",
		"route":    "pha:rl:route:POST /chat",
		"ip_route": "pha:rl:ip:203.0.113.7:route:POST /chat",
		"":         "pha:rl:ip:203.0.113.7:route:POST /chat",
	}
	for strategy, want := range cases {
		got := rateKey(config.RateLimitConfig{Prefix: "pha:rl", KeyStrategy: strategy}, c)
		if got != want {
			t.Fatalf("strategy %q: expected %q, got %q", strategy, want, got)
		}
	}
}

func TestRetrySeconds(t *testing.T) {
	cases := map[int64]int{0: 1, 1: 1, 999: 1, 1000: 1, 1001: 2, 5500: 6}
	for ms, want := range cases {
		if got := retrySeconds(ms); got != want {
			t.Fatalf("retrySeconds(%d): expected %d, got %d", ms, want, got)
		}
	}
}

func TestAsInt64(t *testing.T) {
	for _, v := range []interface{}{int64(3), 3, float64(3), "3"} {
		if got := asInt64(v); got != 3 {
			t.Fatalf("asInt64(%#v) = %d", v, got)
		}
	}
}

func TestAnswerKeyFoldsCaseAndSpace(t *testing.T) {
	a := answerKey("pha:answer", "How to treat  a FEVER?")
	b := answerKey("pha:answer", "  how to treat a fever?\n")
	if a != b {
		t.Fatalf("expected equal keys, got %q and %q", a, b)
	}
	if !strings.HasPrefix(a, "pha:answer:") || len(a) != len("pha:answer:")+40 {
		t.Fatalf("unexpected key shape %q", a)
	}
	if a == answerKey("pha:answer", "how to treat a cough?") {
		t.Fatal("different questions must not share a key")
	}
}

func TestPeekQueryRestoresBody(t *testing.T) {
	body := `{"query":"malaria symptoms"}`
	c, _ := newContext(http.MethodPost, "/chat", body)

	q, ok := peekQuery(c, 1024)
	if !ok || q != "malaria symptoms" {
		t.Fatalf("expected query, got %q %v", q, ok)
	}
	rest, err := io.ReadAll(c.Request().Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if string(rest) != body {
		t.Fatalf("body not restored: %q", rest)
	}
}

func TestPeekQueryRejects(t *testing.T) {
	cases := map[string]string{
		"not json":    `query=fever`,
		"blank query": `{"query":"   "}`,
		"too large":   `{"query":"` + strings.Repeat("a", 64) + `"}`,
	}
	for name, body := range cases {
		c, _ := newContext(http.MethodPost, "/chat", body)
		if _, ok := peekQuery(c, 32); ok {
			t.Fatalf("%s: expected no query", name)
		}
		rest, _ := io.ReadAll(c.Request().Body)
		if name != "too large" && string(rest) != body {
			t.Fatalf("%s: body not restored: %q", name, rest)
		}
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{}
	hdr.Set(echo.HeaderContentType, echo.MIMEApplicationJSONCharsetUTF8)
	hdr.Set(HeaderOutcome, "answered")
	body := []byte(`{"html":"<div></div>"}`)

	bs, err := encodePayload(http.StatusOK, hdr, body)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	status, gotHdr, gotBody, ok := decodePayload(bs)
	if !ok || status != http.StatusOK || string(gotBody) != string(body) {
		t.Fatalf("unexpected decode: %d %q %v", status, gotBody, ok)
	}
	if gotHdr.Get(HeaderOutcome) != "answered" {
		t.Fatalf("header lost: %v", gotHdr)
	}
	if _, _, _, ok := decodePayload(bs[:5]); ok {
		t.Fatal("short payload must not decode")
	}
}

func TestCaptureWriterStopsAtLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 8}
	_, _ = cw.Write([]byte("1234"))
	_, _ = cw.Write([]byte("56789"))

	if !cw.truncated || cw.buf.Len() != 0 {
		t.Fatalf("expected truncated capture, got %v %q", cw.truncated, cw.buf.String())
	}
	if rec.Body.String() != "123456789" {
		t.Fatalf("client must still receive the full body, got %q", rec.Body.String())
	}
}
