package service

import (
	"net/http"
	"time"
)

// Outcome classifies how a chat request ended.
type Outcome string

const (
	OutcomeAnswered            Outcome = "answered"
	OutcomeMissingQuery        Outcome = "missing_query"
	OutcomeOutOfScope          Outcome = "out_of_scope"
	OutcomeNoInformation       Outcome = "no_information"
	OutcomeUpstreamUnavailable Outcome = "upstream_unavailable"
	OutcomeUpstreamTimeout     Outcome = "upstream_timeout"
	OutcomeUpstreamAuth        Outcome = "upstream_auth"
	OutcomeUpstreamRateLimited Outcome = "upstream_rate_limited"
	OutcomeFormatFailed        Outcome = "format_failed"
)

// User-facing messages. Raw errors never replace these.
const (
	MsgMissingQuery  = "No message received"
	MsgOutOfScope    = "I'm your Public Health Assistant. I can help with questions about diseases, symptoms, prevention and treatment. Please ask a health-related question."
	MsgNoInformation = "Sorry, I couldn't find reliable information about that. Please consult a healthcare professional."
	MsgApology       = "Sorry, I couldn't get an answer."
	MsgUnavailable   = "The health assistant is temporarily unavailable. Please try again shortly."
	MsgTimeout       = "The health assistant took too long to respond. Please try again."
	MsgMisconfigured = "The health assistant is not configured correctly. Please try again later."
	MsgUpstreamBusy  = "The health assistant is receiving too many requests. Please wait a moment and try again."
)

// Result is the typed outcome of Chat.Ask.
type Result struct {
	Outcome    Outcome
	HTML       string        // wrapped fragment, set only when answered
	Raw        string        // model text, set only when answered
	Message    string        // canned message for every other outcome
	Detail     string        // secondary diagnostic for failures
	RetryAfter time.Duration // upstream hint for rate-limited outcomes
	Sections   []string      // non-empty section names of the answer
}

// Status maps the outcome to an HTTP status code. Scope rejections and
// "no information" are successful responses, not errors.
func (r Result) Status() int {
	switch r.Outcome {
	case OutcomeAnswered, OutcomeOutOfScope, OutcomeNoInformation:
		return http.StatusOK
	case OutcomeMissingQuery:
		return http.StatusBadRequest
	case OutcomeUpstreamTimeout:
		return http.StatusGatewayTimeout
	case OutcomeUpstreamRateLimited:
		return http.StatusTooManyRequests
	case OutcomeUpstreamUnavailable, OutcomeUpstreamAuth:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Retryable reports whether the caller may sensibly retry the same request.
func (r Result) Retryable() bool {
	switch r.Outcome {
	case OutcomeUpstreamUnavailable, OutcomeUpstreamTimeout, OutcomeUpstreamRateLimited:
		return true
	}
	return false
}
