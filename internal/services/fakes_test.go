package services

import (
	"context"
	"errors"
	"sync"

	"github.com/devfoliohq/boltgen/internal/models"
)

// fakeDB is an in-memory DbClient for service tests.
type fakeDB struct {
	mu         sync.Mutex
	users      map[string]*models.User
	workspaces map[string]*models.Workspace
	payments   []models.Payment

	conversationErr error
	filesErr        error
	balanceErr      error
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		users:      make(map[string]*models.User),
		workspaces: make(map[string]*models.Workspace),
	}
}

func (f *fakeDB) CreateUser(ctx context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeDB) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeDB) GetUserByExternalUID(ctx context.Context, uid string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ExternalUID == uid {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeDB) UpdateUserTokenBalance(ctx context.Context, userID string, balance int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.balanceErr != nil {
		return f.balanceErr
	}
	u, ok := f.users[userID]
	if !ok {
		return errors.New("user not found")
	}
	u.TokenBalance = balance
	return nil
}

func (f *fakeDB) CreateWorkspace(ctx context.Context, ws *models.Workspace) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *ws
	f.workspaces[ws.ID] = &cp
	return nil
}

func (f *fakeDB) GetWorkspaceByID(ctx context.Context, id string) (*models.Workspace, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ws, ok := f.workspaces[id]
	if !ok {
		return nil, nil
	}
	cp := *ws
	cp.Conversation = append([]models.Message(nil), ws.Conversation...)
	return &cp, nil
}

func (f *fakeDB) ListWorkspacesByUser(ctx context.Context, userID string) ([]models.Workspace, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Workspace
	for _, ws := range f.workspaces {
		if ws.UserID == userID {
			out = append(out, *ws)
		}
	}
	return out, nil
}

func (f *fakeDB) UpdateWorkspaceConversation(ctx context.Context, id string, conversation []models.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.conversationErr != nil {
		return f.conversationErr
	}
	ws, ok := f.workspaces[id]
	if !ok {
		return errors.New("workspace not found")
	}
	ws.Conversation = append([]models.Message(nil), conversation...)
	return nil
}

func (f *fakeDB) UpdateWorkspaceFiles(ctx context.Context, id string, files models.FileSet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.filesErr != nil {
		return f.filesErr
	}
	ws, ok := f.workspaces[id]
	if !ok {
		return errors.New("workspace not found")
	}
	ws.Files = files
	return nil
}

func (f *fakeDB) CreatePayment(ctx context.Context, p *models.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payments = append(f.payments, *p)
	return nil
}

func (f *fakeDB) ListPaymentsByUser(ctx context.Context, userID string) ([]models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Payment
	for _, p := range f.payments {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeDB) Close() error { return nil }

// fakeAI is a configurable AIClient for service tests.
type fakeAI struct {
	chatFn     func(ctx context.Context, prompt string) (string, error)
	generateFn func(ctx context.Context, prompt string) (*models.CodeGenResult, error)

	mu              sync.Mutex
	chatPrompts     []string
	generatePrompts []string
}

func (f *fakeAI) Chat(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.chatPrompts = append(f.chatPrompts, prompt)
	f.mu.Unlock()
	return f.chatFn(ctx, prompt)
}

func (f *fakeAI) GenerateCode(ctx context.Context, prompt string) (*models.CodeGenResult, error) {
	f.mu.Lock()
	f.generatePrompts = append(f.generatePrompts, prompt)
	f.mu.Unlock()
	return f.generateFn(ctx, prompt)
}

func (f *fakeAI) Close() error { return nil }

// fakeStorage records uploads for export tests.
type fakeStorage struct {
	mu      sync.Mutex
	uploads map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploads: make(map[string][]byte)}
}

func (f *fakeStorage) UploadFile(ctx context.Context, bucket, key string, data []byte, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads[key] = data
	return "https://" + bucket + ".example.com/" + key, nil
}
