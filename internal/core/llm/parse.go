package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/devfoliohq/boltgen/internal/models"
)

// MalformedResponseError carries the raw backend text alongside the parse
// failure so callers can fall back to it where that is allowed.
type MalformedResponseError struct {
	Raw   string
	cause error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed AI response: %v", e.cause)
}

func (e *MalformedResponseError) Unwrap() error { return ErrMalformedResponse }

// StripCodeFences removes a surrounding markdown code fence, with or without
// a language tag. The backend often wraps its JSON output in ```json fences
// even when asked for a raw JSON body.
func StripCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if i := strings.Index(trimmed, "\n"); i >= 0 {
		// Drop the language tag line ("json", "javascript", ...).
		trimmed = trimmed[i+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// ParseCodeResponse decodes the code-generation backend's structured reply.
// Responses wrapped in code fences are unwrapped first. A reply that does not
// parse, or parses without any files, yields a MalformedResponseError.
func ParseCodeResponse(text string) (*models.CodeGenResult, error) {
	cleaned := StripCodeFences(text)

	var result models.CodeGenResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, &MalformedResponseError{Raw: cleaned, cause: err}
	}
	if len(result.Files) == 0 {
		return nil, &MalformedResponseError{Raw: cleaned, cause: errors.New("no files in response")}
	}
	return &result, nil
}
