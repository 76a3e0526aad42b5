package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/devfoliohq/boltgen/internal/models"
	"github.com/devfoliohq/boltgen/internal/prompts"
	"github.com/devfoliohq/boltgen/internal/tokens"
)

func seedUserAndWorkspace(t *testing.T, db *fakeDB, balance int) (*models.User, *models.Workspace) {
	t.Helper()
	user := &models.User{ID: "u1", Email: "u@example.com", TokenBalance: balance}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatal(err)
	}
	ws := &models.Workspace{ID: "w1", UserID: "u1"}
	if err := db.CreateWorkspace(context.Background(), ws); err != nil {
		t.Fatal(err)
	}
	return user, ws
}

func newTurnService(db *fakeDB, ai *fakeAI) *TurnService {
	return NewTurnService(db, ai, zap.NewNop(), 25*time.Second, 10)
}

// Scenario: a build prompt goes down the code path, the returned files are
// merged over the scaffold and the balance is debited by the size estimate.
func TestHandleUserTurnCodePath(t *testing.T) {
	db := newFakeDB()
	seedUserAndWorkspace(t, db, 80000)

	genResult := &models.CodeGenResult{
		ProjectTitle:   "Todo",
		Explanation:    "a todo app",
		Files:          models.FileSet{"/App.js": {Code: "export default function App() {}"}},
		GeneratedFiles: []string{"/App.js"},
	}
	ai := &fakeAI{
		generateFn: func(ctx context.Context, prompt string) (*models.CodeGenResult, error) {
			return genResult, nil
		},
	}
	svc := newTurnService(db, ai)

	result, err := svc.HandleUserTurn(context.Background(), "w1", "u1", "Create a todo app in React")
	if err != nil {
		t.Fatalf("HandleUserTurn: %v", err)
	}

	if _, ok := result.Files["/App.js"]; !ok {
		t.Error("generated file missing from merged set")
	}
	if _, ok := result.Files["/public/index.html"]; !ok {
		t.Error("scaffold file missing from merged set")
	}

	wantBalance := tokens.Debit(80000, tokens.EstimateJSON(genResult))
	if result.Balance != wantBalance {
		t.Errorf("Balance = %d, want %d", result.Balance, wantBalance)
	}
	user, _ := db.GetUserByID(context.Background(), "u1")
	if user.TokenBalance != wantBalance {
		t.Errorf("persisted balance = %d, want %d", user.TokenBalance, wantBalance)
	}

	// Conversation: user turn then the acknowledgement, both persisted.
	ws, _ := db.GetWorkspaceByID(context.Background(), "w1")
	if len(ws.Conversation) != 2 {
		t.Fatalf("conversation length = %d, want 2", len(ws.Conversation))
	}
	if ws.Conversation[0].Role != models.RoleUser {
		t.Errorf("first turn role = %q", ws.Conversation[0].Role)
	}
	if ws.Conversation[1].Role != models.RoleAI {
		t.Errorf("acknowledgement role = %q", ws.Conversation[1].Role)
	}
	if _, ok := ws.Files["/App.js"]; !ok {
		t.Error("merged files not persisted")
	}

	// The prompt carries the conversation contents and the instruction
	// template, but never the acknowledgement text.
	prompt := ai.generatePrompts[0]
	if !strings.Contains(prompt, "Create a todo app in React") {
		t.Error("prompt missing user content")
	}
	if !strings.Contains(prompt, "Return the response in JSON format") {
		t.Error("prompt missing code generation template")
	}
	if strings.Contains(prompt, "generating your project") {
		t.Error("acknowledgement leaked into the backend prompt")
	}
}

// Scenario: a question goes down the chat path; the reply is appended with
// role "ai" and the balance is debited by the reply's word count.
func TestHandleUserTurnChatPath(t *testing.T) {
	db := newFakeDB()
	seedUserAndWorkspace(t, db, 1000)

	reply := "useState is a React hook that stores component state."
	ai := &fakeAI{
		chatFn: func(ctx context.Context, prompt string) (string, error) {
			return reply, nil
		},
	}
	svc := newTurnService(db, ai)

	result, err := svc.HandleUserTurn(context.Background(), "w1", "u1", "What does useState do?")
	if err != nil {
		t.Fatalf("HandleUserTurn: %v", err)
	}

	last := result.Conversation[len(result.Conversation)-1]
	if last.Role != models.RoleAI || last.Content != reply {
		t.Errorf("last turn = %+v", last)
	}
	if result.Files != nil {
		t.Error("chat path should not touch files")
	}

	wantBalance := 1000 - tokens.CountWords(reply)
	if result.Balance != wantBalance {
		t.Errorf("Balance = %d, want %d", result.Balance, wantBalance)
	}

	// Enhanced prompt: framing, current request, chat instruction.
	prompt := ai.chatPrompts[0]
	if !strings.Contains(prompt, "Current request: What does useState do?") {
		t.Errorf("prompt missing current request: %q", prompt)
	}
	if !strings.Contains(prompt, prompts.ChatPrompt) {
		t.Error("prompt missing chat instruction")
	}
}

func TestHandleUserTurnChatHistoryWindow(t *testing.T) {
	db := newFakeDB()
	_, ws := seedUserAndWorkspace(t, db, 1000)

	// Pre-populate 15 turns; only the last 10 may appear in the prompt.
	for i := 0; i < 15; i++ {
		role := models.RoleUser
		if i%2 == 1 {
			role = models.RoleAI
		}
		ws.Conversation = append(ws.Conversation, models.Message{Role: role, Content: "turn"})
	}
	if err := db.UpdateWorkspaceConversation(context.Background(), ws.ID, ws.Conversation); err != nil {
		t.Fatal(err)
	}

	ai := &fakeAI{
		chatFn: func(ctx context.Context, prompt string) (string, error) { return "ok", nil },
	}
	svc := newTurnService(db, ai)

	if _, err := svc.HandleUserTurn(context.Background(), "w1", "u1", "what about it?"); err != nil {
		t.Fatal(err)
	}

	prompt := ai.chatPrompts[0]
	if got := strings.Count(prompt, ": turn"); got != 10 {
		t.Errorf("prompt contains %d history turns, want 10", got)
	}
}

// Scenario: code generation fails (timeout); the file set and balance must be
// untouched and the error surfaced.
func TestHandleUserTurnCodeFailureLeavesStateUntouched(t *testing.T) {
	db := newFakeDB()
	_, ws := seedUserAndWorkspace(t, db, 500)
	existing := models.FileSet{"/Existing.js": {Code: "keep me"}}
	if err := db.UpdateWorkspaceFiles(context.Background(), ws.ID, existing); err != nil {
		t.Fatal(err)
	}

	ai := &fakeAI{
		generateFn: func(ctx context.Context, prompt string) (*models.CodeGenResult, error) {
			return nil, context.DeadlineExceeded
		},
	}
	svc := newTurnService(db, ai)

	_, err := svc.HandleUserTurn(context.Background(), "w1", "u1", "Build a dashboard")
	if err == nil {
		t.Fatal("expected error from failed generation")
	}

	got, _ := db.GetWorkspaceByID(context.Background(), "w1")
	if got.Files["/Existing.js"].Code != "keep me" {
		t.Error("file set was mutated on failure")
	}
	user, _ := db.GetUserByID(context.Background(), "u1")
	if user.TokenBalance != 500 {
		t.Errorf("balance = %d, want 500 (no debit on failure)", user.TokenBalance)
	}
	// The user turn and the acknowledgement are still in the transcript.
	if len(got.Conversation) != 2 {
		t.Errorf("conversation length = %d, want 2", len(got.Conversation))
	}
}

// A failed chat reply appends a visible apology instead of failing the turn,
// and nothing is debited.
func TestHandleUserTurnChatFailureAppendsApology(t *testing.T) {
	db := newFakeDB()
	seedUserAndWorkspace(t, db, 500)

	ai := &fakeAI{
		chatFn: func(ctx context.Context, prompt string) (string, error) {
			return "", errors.New("backend unavailable")
		},
	}
	svc := newTurnService(db, ai)

	result, err := svc.HandleUserTurn(context.Background(), "w1", "u1", "why is this broken?")
	if err != nil {
		t.Fatalf("chat failure should not fail the turn: %v", err)
	}

	last := result.Conversation[len(result.Conversation)-1]
	if last.Role != models.RoleAI || !strings.Contains(last.Content, "sorry") {
		t.Errorf("expected apologetic turn, got %+v", last)
	}
	if result.Balance != 500 {
		t.Errorf("balance = %d, want 500 (no debit on failure)", result.Balance)
	}

	ws, _ := db.GetWorkspaceByID(context.Background(), "w1")
	if len(ws.Conversation) != 2 {
		t.Errorf("apology not persisted: conversation length = %d", len(ws.Conversation))
	}
}

func TestHandleUserTurnRejectsConcurrentSubmission(t *testing.T) {
	db := newFakeDB()
	seedUserAndWorkspace(t, db, 500)

	entered := make(chan struct{})
	proceed := make(chan struct{})
	ai := &fakeAI{
		chatFn: func(ctx context.Context, prompt string) (string, error) {
			close(entered)
			<-proceed
			return "done", nil
		},
	}
	svc := newTurnService(db, ai)

	done := make(chan error, 1)
	go func() {
		_, err := svc.HandleUserTurn(context.Background(), "w1", "u1", "hello there")
		done <- err
	}()

	<-entered
	_, err := svc.HandleUserTurn(context.Background(), "w1", "u1", "hello again")
	if !errors.Is(err, ErrTurnInFlight) {
		t.Errorf("second submission err = %v, want ErrTurnInFlight", err)
	}

	close(proceed)
	if err := <-done; err != nil {
		t.Errorf("first submission failed: %v", err)
	}

	// The workspace is free again once the first turn resolves.
	ai.chatFn = func(ctx context.Context, prompt string) (string, error) { return "ok", nil }
	if _, err := svc.HandleUserTurn(context.Background(), "w1", "u1", "hello once more"); err != nil {
		t.Errorf("turn after release failed: %v", err)
	}
}

func TestHandleUserTurnValidation(t *testing.T) {
	db := newFakeDB()
	seedUserAndWorkspace(t, db, 500)
	ai := &fakeAI{
		chatFn: func(ctx context.Context, prompt string) (string, error) { return "ok", nil },
	}
	svc := newTurnService(db, ai)

	if _, err := svc.HandleUserTurn(context.Background(), "w1", "u1", "   "); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("blank content err = %v, want ErrEmptyMessage", err)
	}
	if _, err := svc.HandleUserTurn(context.Background(), "missing", "u1", "hi"); !errors.Is(err, ErrWorkspaceNotFound) {
		t.Errorf("missing workspace err = %v, want ErrWorkspaceNotFound", err)
	}
	if _, err := svc.HandleUserTurn(context.Background(), "w1", "someone-else", "hi"); !errors.Is(err, ErrForbidden) {
		t.Errorf("foreign workspace err = %v, want ErrForbidden", err)
	}
}

// Balance never goes negative, even when the estimate exceeds what is left.
func TestHandleUserTurnBalanceClamped(t *testing.T) {
	db := newFakeDB()
	seedUserAndWorkspace(t, db, 3)

	ai := &fakeAI{
		chatFn: func(ctx context.Context, prompt string) (string, error) {
			return "a reply with considerably more words than the balance can cover", nil
		},
	}
	svc := newTurnService(db, ai)

	result, err := svc.HandleUserTurn(context.Background(), "w1", "u1", "hello friend")
	if err != nil {
		t.Fatal(err)
	}
	if result.Balance != 0 {
		t.Errorf("Balance = %d, want 0", result.Balance)
	}
}
