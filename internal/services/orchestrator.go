package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/devfoliohq/boltgen/internal/classifier"
	"github.com/devfoliohq/boltgen/internal/core"
	db "github.com/devfoliohq/boltgen/internal/core/database"
	"github.com/devfoliohq/boltgen/internal/models"
	"github.com/devfoliohq/boltgen/internal/prompts"
	"github.com/devfoliohq/boltgen/internal/scaffold"
	"github.com/devfoliohq/boltgen/internal/tokens"
)

// Assistant messages the orchestrator writes into the transcript itself.
const (
	generationStartedMessage = "Got it! I'm generating your project now. The files will appear in the editor once they're ready."
	chatFailureMessage       = "I'm sorry, I couldn't generate a response at this time. Please try again."
)

// TurnResult is everything a single processed user turn produced: the updated
// conversation tail, the merged file set when code was generated, and the
// user's remaining balance.
type TurnResult struct {
	Conversation   []models.Message          `json:"conversation"`
	Files          models.FileSet            `json:"files,omitempty"`
	Balance        int                       `json:"token_balance"`
	Classification classifier.Classification `json:"classification"`
}

// TurnService orchestrates one user turn end to end: classify the message,
// call the matching AI backend, merge or append the result, debit usage.
//
// One turn per workspace is processed at a time. A second submission while a
// turn is in flight is rejected with ErrTurnInFlight rather than queued; the
// client resubmits once the first turn resolves.
type TurnService struct {
	db              db.DbClient
	ai              core.AIClient
	logger          *zap.Logger
	generateTimeout time.Duration
	historyTurns    int

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewTurnService(db db.DbClient, ai core.AIClient, logger *zap.Logger, generateTimeout time.Duration, historyTurns int) *TurnService {
	if generateTimeout <= 0 {
		generateTimeout = 25 * time.Second
	}
	if historyTurns <= 0 {
		historyTurns = 10
	}
	return &TurnService{
		db:              db,
		ai:              ai,
		logger:          logger,
		generateTimeout: generateTimeout,
		historyTurns:    historyTurns,
		inflight:        make(map[string]struct{}),
	}
}

// HandleUserTurn appends content as a user message to the workspace
// conversation and processes it to completion.
func (s *TurnService) HandleUserTurn(ctx context.Context, workspaceID, userID, content string) (*TurnResult, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}

	if !s.acquire(workspaceID) {
		return nil, ErrTurnInFlight
	}
	defer s.release(workspaceID)

	ws, err := s.db.GetWorkspaceByID(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("load workspace: %w", err)
	}
	if ws == nil {
		return nil, ErrWorkspaceNotFound
	}
	if ws.UserID != userID {
		return nil, ErrForbidden
	}

	user, err := s.db.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	conversation := append(ws.Conversation, models.Message{Role: models.RoleUser, Content: content})
	if err := s.db.UpdateWorkspaceConversation(ctx, workspaceID, conversation); err != nil {
		return nil, fmt.Errorf("persist user turn: %w", err)
	}

	cls := classifier.Classify(content)
	s.logger.Info("turn classified",
		zap.String("workspace_id", workspaceID),
		zap.Bool("code_request", cls.IsCodeRequest),
		zap.Float64("confidence", cls.Confidence))

	if cls.IsCodeRequest {
		return s.handleCodeTurn(ctx, workspaceID, user, conversation, cls)
	}
	return s.handleChatTurn(ctx, workspaceID, user, conversation, content, cls)
}

// handleCodeTurn calls the code-generation backend and replaces the workspace
// file set with the merged result. On any failure the existing file set and
// balance are left untouched and the error is surfaced.
func (s *TurnService) handleCodeTurn(ctx context.Context, workspaceID string, user *models.User, conversation []models.Message, cls classifier.Classification) (*TurnResult, error) {
	// Immediate acknowledgement turn. It is persisted but never sent to the
	// generation backend.
	conversation = append(conversation, models.Message{Role: models.RoleAI, Content: generationStartedMessage})
	if err := s.db.UpdateWorkspaceConversation(ctx, workspaceID, conversation); err != nil {
		s.logger.Warn("persist acknowledgement failed", zap.String("workspace_id", workspaceID), zap.Error(err))
	}

	prompt := joinContents(conversation[:len(conversation)-1]) + " " + prompts.CodeGenPrompt

	genCtx, cancel := context.WithTimeout(ctx, s.generateTimeout)
	defer cancel()

	result, err := s.ai.GenerateCode(genCtx, prompt)
	if err != nil {
		s.logger.Error("code generation failed", zap.String("workspace_id", workspaceID), zap.Error(err))
		return nil, fmt.Errorf("generate code: %w", err)
	}

	merged := scaffold.Merge(scaffold.Default(), result.Files)
	cost := tokens.EstimateJSON(result)
	balance := tokens.Debit(user.TokenBalance, cost)

	// Best effort from here: the AI call succeeded, so the caller gets the
	// merged result even if persistence lags behind.
	if err := s.db.UpdateWorkspaceFiles(ctx, workspaceID, merged); err != nil {
		s.logger.Error("persist file set failed", zap.String("workspace_id", workspaceID), zap.Error(err))
	}
	if err := s.db.UpdateUserTokenBalance(ctx, user.ID, balance); err != nil {
		s.logger.Error("persist balance failed", zap.String("user_id", user.ID), zap.Error(err))
	}

	s.logger.Info("code generated",
		zap.String("workspace_id", workspaceID),
		zap.String("project_title", result.ProjectTitle),
		zap.Int("files", len(result.Files)),
		zap.Int("cost", cost))

	return &TurnResult{
		Conversation:   conversation,
		Files:          merged,
		Balance:        balance,
		Classification: cls,
	}, nil
}

// handleChatTurn calls the conversational backend. A failed chat call still
// leaves a visible turn in the transcript, unlike the code path.
func (s *TurnService) handleChatTurn(ctx context.Context, workspaceID string, user *models.User, conversation []models.Message, content string, cls classifier.Classification) (*TurnResult, error) {
	reply, err := s.ai.Chat(ctx, s.buildChatPrompt(conversation, content))
	if err != nil {
		s.logger.Error("chat failed", zap.String("workspace_id", workspaceID), zap.Error(err))
		conversation = append(conversation, models.Message{Role: models.RoleAI, Content: chatFailureMessage})
		if perr := s.db.UpdateWorkspaceConversation(ctx, workspaceID, conversation); perr != nil {
			s.logger.Error("persist failure turn failed", zap.String("workspace_id", workspaceID), zap.Error(perr))
		}
		return &TurnResult{
			Conversation:   conversation,
			Balance:        user.TokenBalance,
			Classification: cls,
		}, nil
	}

	conversation = append(conversation, models.Message{Role: models.RoleAI, Content: reply})
	if err := s.db.UpdateWorkspaceConversation(ctx, workspaceID, conversation); err != nil {
		s.logger.Error("persist reply failed", zap.String("workspace_id", workspaceID), zap.Error(err))
	}

	cost := tokens.CountWords(reply)
	balance := tokens.Debit(user.TokenBalance, cost)
	if err := s.db.UpdateUserTokenBalance(ctx, user.ID, balance); err != nil {
		s.logger.Error("persist balance failed", zap.String("user_id", user.ID), zap.Error(err))
	}

	return &TurnResult{
		Conversation:   conversation,
		Balance:        balance,
		Classification: cls,
	}, nil
}

// buildChatPrompt frames the current request with up to the last historyTurns
// prior turns, then appends the fixed chat instruction.
func (s *TurnService) buildChatPrompt(conversation []models.Message, content string) string {
	var b strings.Builder
	b.WriteString("Context: the conversation so far is below.\n")

	// Everything before the just-appended user turn.
	history := conversation[:len(conversation)-1]
	if len(history) > s.historyTurns {
		history = history[len(history)-s.historyTurns:]
	}
	for _, m := range history {
		b.WriteString(m.Role)
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteString("\n")
	}

	b.WriteString("\nCurrent request: ")
	b.WriteString(content)
	b.WriteString("\n\n")
	b.WriteString(prompts.ChatPrompt)
	return b.String()
}

func joinContents(conversation []models.Message) string {
	parts := make([]string, len(conversation))
	for i, m := range conversation {
		parts[i] = m.Content
	}
	return strings.Join(parts, " ")
}

func (s *TurnService) acquire(workspaceID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[workspaceID]; busy {
		return false
	}
	s.inflight[workspaceID] = struct{}{}
	return true
}

func (s *TurnService) release(workspaceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, workspaceID)
}
