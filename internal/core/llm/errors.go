package llm

import (
	"errors"
	"strings"
)

var (
	// ErrEmptyResponse means the backend answered with no usable candidates.
	ErrEmptyResponse = errors.New("empty response from AI backend")

	// ErrMalformedResponse means the code path expected JSON and the backend
	// returned text that does not parse even after stripping code fences.
	ErrMalformedResponse = errors.New("malformed AI response")
)

// IsQuota reports whether err looks like a provider quota rejection. The
// provider signals this only through the error text, so we match on it.
func IsQuota(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "quota")
}

// IsSafety reports whether err looks like a content-safety rejection.
func IsSafety(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "safety")
}
