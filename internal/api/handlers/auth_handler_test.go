package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/devfoliohq/boltgen/internal/config"
	db "github.com/devfoliohq/boltgen/internal/core/database"
	"github.com/devfoliohq/boltgen/internal/models"
	"github.com/devfoliohq/boltgen/internal/prompts"
)

// stubDB embeds the interface so each test only overrides what it touches.
type stubDB struct {
	db.DbClient

	usersByEmail map[string]*models.User
	usersByUID   map[string]*models.User
	created      []*models.User
}

func newStubDB() *stubDB {
	return &stubDB{
		usersByEmail: map[string]*models.User{},
		usersByUID:   map[string]*models.User{},
	}
}

func (s *stubDB) CreateUser(ctx context.Context, user *models.User) error {
	s.created = append(s.created, user)
	s.usersByEmail[user.Email] = user
	if user.ExternalUID != "" {
		s.usersByUID[user.ExternalUID] = user
	}
	return nil
}

func (s *stubDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.usersByEmail[email], nil
}

func (s *stubDB) GetUserByExternalUID(ctx context.Context, uid string) (*models.User, error) {
	return s.usersByUID[uid], nil
}

func newAuthHandler(dbc db.DbClient) *AuthHandler {
	cfg := &config.Config{JWTSecret: "test-secret", GoogleClientID: "client-id"}
	return NewAuthHandler(dbc, cfg, zap.NewNop())
}

func TestSignupCreatesUserWithTokenGrant(t *testing.T) {
	dbc := newStubDB()
	h := newAuthHandler(dbc)

	rec := postJSON(t, h.Signup, map[string]string{
		"name":     "Ada",
		"email":    "ada@example.com",
		"password": "hunter22",
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["token"] == "" {
		t.Error("no token returned")
	}
	if len(dbc.created) != 1 {
		t.Fatalf("created %d users, want 1", len(dbc.created))
	}
	user := dbc.created[0]
	if user.TokenBalance != prompts.SignupTokenGrant {
		t.Errorf("token balance = %d, want %d", user.TokenBalance, prompts.SignupTokenGrant)
	}
	if user.PasswordHash == "hunter22" {
		t.Error("password stored in plain text")
	}
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	dbc := newStubDB()
	dbc.usersByEmail["ada@example.com"] = &models.User{ID: "u1", Email: "ada@example.com"}
	h := newAuthHandler(dbc)

	rec := postJSON(t, h.Signup, map[string]string{
		"email":    "ada@example.com",
		"password": "hunter22",
	})

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	dbc := newStubDB()
	dbc.usersByEmail["ada@example.com"] = &models.User{
		ID:           "u1",
		Email:        "ada@example.com",
		PasswordHash: string(hash),
	}
	h := newAuthHandler(dbc)

	tests := []struct {
		name       string
		email      string
		password   string
		wantStatus int
	}{
		{"valid credentials", "ada@example.com", "hunter22", http.StatusOK},
		{"wrong password", "ada@example.com", "nope", http.StatusUnauthorized},
		{"unknown email", "bob@example.com", "hunter22", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, h.Login, map[string]string{"email": tt.email, "password": tt.password})
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestGoogleAuthCreatesUserOnFirstLogin(t *testing.T) {
	dbc := newStubDB()
	h := newAuthHandler(dbc)
	h.verify = func(r *http.Request, credential, audience string) (map[string]any, error) {
		if audience != "client-id" {
			t.Errorf("audience = %q", audience)
		}
		return map[string]any{
			"sub":     "google-uid-1",
			"email":   "ada@example.com",
			"name":    "Ada",
			"picture": "https://example.com/ada.png",
		}, nil
	}

	rec := postJSON(t, h.GoogleAuth, map[string]string{"credential": "fake-id-token"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if len(dbc.created) != 1 {
		t.Fatalf("created %d users, want 1", len(dbc.created))
	}
	user := dbc.created[0]
	if user.ExternalUID != "google-uid-1" {
		t.Errorf("external uid = %q", user.ExternalUID)
	}
	if user.TokenBalance != prompts.SignupTokenGrant {
		t.Errorf("token balance = %d, want %d", user.TokenBalance, prompts.SignupTokenGrant)
	}

	// Second login with the same subject reuses the existing user.
	rec = postJSON(t, h.GoogleAuth, map[string]string{"credential": "fake-id-token"})
	if rec.Code != http.StatusOK {
		t.Fatalf("second login status = %d, want 200", rec.Code)
	}
	if len(dbc.created) != 1 {
		t.Errorf("created %d users after second login, want 1", len(dbc.created))
	}
}
