package llm

import (
	"fmt"
	"strings"
)

// ErrorKind categorizes endpoint failures for callers that present
// them differently (retry hints, exit codes).
type ErrorKind string

const (
	KindAuth           ErrorKind = "auth"
	KindRateLimited    ErrorKind = "rate_limited"
	KindContextTooLong ErrorKind = "context_too_long"
	KindModelNotFound  ErrorKind = "model_not_found"
	KindConnection     ErrorKind = "connection"
	KindOther          ErrorKind = "other"
)

// GatewayError is an endpoint-level failure. The orchestration loop
// never retries these; retry policy belongs to the caller.
type GatewayError struct {
	Kind ErrorKind
	Err  error
}

func (e *GatewayError) Error() string {
	switch e.Kind {
	case KindAuth:
		return fmt.Sprintf("authentication failed: %v", e.Err)
	case KindRateLimited:
		return fmt.Sprintf("rate limited: %v", e.Err)
	case KindContextTooLong:
		return fmt.Sprintf("context too long: %v", e.Err)
	case KindModelNotFound:
		return fmt.Sprintf("model not found: %v", e.Err)
	case KindConnection:
		return fmt.Sprintf("connection error: %v", e.Err)
	default:
		return e.Err.Error()
	}
}

func (e *GatewayError) Unwrap() error { return e.Err }

// classify maps common SDK errors onto kinds by message inspection,
// since the SDK does not expose a stable error taxonomy.
func classify(err error) *GatewayError {
	errStr := strings.ToLower(err.Error())

	kind := KindOther
	switch {
	case containsAny(errStr, "401", "403", "unauthorized", "invalid api key", "api key", "forbidden"):
		kind = KindAuth
	case containsAny(errStr, "429", "rate limit", "quota", "too many requests"):
		kind = KindRateLimited
	case containsAny(errStr, "context length", "too many tokens", "max tokens", "token limit"):
		kind = KindContextTooLong
	case containsAny(errStr, "model not found", "404", "not found"):
		kind = KindModelNotFound
	case containsAny(errStr, "connection", "eof", "timeout", "dial", "refused"):
		kind = KindConnection
	}

	return &GatewayError{Kind: kind, Err: err}
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
