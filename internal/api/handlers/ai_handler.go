package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/devfoliohq/boltgen/internal/config"
	"github.com/devfoliohq/boltgen/internal/core"
	"github.com/devfoliohq/boltgen/internal/core/llm"
	"github.com/devfoliohq/boltgen/internal/models"
	"github.com/devfoliohq/boltgen/internal/prompts"
	"github.com/devfoliohq/boltgen/internal/tokens"
)

// AIHandler exposes the two raw backend endpoints: conversational chat and
// structured code generation.
type AIHandler struct {
	ai     core.AIClient
	cfg    *config.Config
	logger *zap.Logger
}

func NewAIHandler(ai core.AIClient, cfg *config.Config, logger *zap.Logger) *AIHandler {
	return &AIHandler{ai: ai, cfg: cfg, logger: logger}
}

type ChatRequest struct {
	Prompt              string           `json:"prompt"`
	Context             string           `json:"context,omitempty"`
	ConversationHistory []models.Message `json:"conversationHistory,omitempty"`
}

type ChatResponse struct {
	Result    string    `json:"result"`
	Tokens    int       `json:"tokens"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *AIHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "Prompt is required", "")
		return
	}

	result, err := h.ai.Chat(r.Context(), buildChatPrompt(req))
	if err != nil {
		h.writeAIError(w, err, "Failed to process chat request")
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{
		Result:    result,
		Tokens:    tokens.CountWords(result),
		Timestamp: time.Now().UTC(),
	})
}

type GenerateCodeRequest struct {
	Prompt      string   `json:"prompt"`
	Framework   string   `json:"framework,omitempty"`
	Language    string   `json:"language,omitempty"`
	Features    []string `json:"features,omitempty"`
	ProjectType string   `json:"projectType,omitempty"`
}

func (h *AIHandler) GenerateCode(w http.ResponseWriter, r *http.Request) {
	var req GenerateCodeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "Prompt is required", "")
		return
	}

	result, err := h.ai.GenerateCode(r.Context(), buildCodePrompt(req))
	if err != nil {
		// Unparseable output is tolerated in development so the raw text can
		// be inspected; everywhere else it is a hard failure.
		var malformed *llm.MalformedResponseError
		if errors.As(err, &malformed) && h.cfg.IsDevelopment() {
			h.logger.Warn("code response did not parse, returning raw text", zap.Error(err))
			writeJSON(w, http.StatusOK, map[string]string{"rawText": malformed.Raw})
			return
		}
		h.writeAIError(w, err, "Failed to process AI request")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// writeAIError maps backend failures onto the status-code policy shared by
// both endpoints: 429 for quota, 400 for safety rejections, 500 otherwise.
func (h *AIHandler) writeAIError(w http.ResponseWriter, err error, message string) {
	h.logger.Error("ai request failed", zap.Error(err))
	switch {
	case llm.IsQuota(err):
		writeError(w, http.StatusTooManyRequests, "API quota exceeded. Please try again later.", err.Error())
	case llm.IsSafety(err):
		writeError(w, http.StatusBadRequest, "Request was blocked by content safety filters. Please rephrase your request.", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, message, err.Error())
	}
}

func buildChatPrompt(req ChatRequest) string {
	var b strings.Builder
	if req.Context != "" {
		b.WriteString("Context: ")
		b.WriteString(req.Context)
		b.WriteString("\n")
	}
	for _, m := range req.ConversationHistory {
		b.WriteString(m.Role)
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	b.WriteString(req.Prompt)
	b.WriteString(" ")
	b.WriteString(prompts.ChatPrompt)
	return b.String()
}

func buildCodePrompt(req GenerateCodeRequest) string {
	var b strings.Builder
	b.WriteString(req.Prompt)
	if req.Framework != "" {
		b.WriteString("\nFramework: " + req.Framework)
	}
	if req.Language != "" {
		b.WriteString("\nLanguage: " + req.Language)
	}
	if len(req.Features) > 0 {
		b.WriteString("\nFeatures: " + strings.Join(req.Features, ", "))
	}
	if req.ProjectType != "" {
		b.WriteString("\nProject type: " + req.ProjectType)
	}
	b.WriteString(" ")
	b.WriteString(prompts.CodeGenPrompt)
	return b.String()
}
