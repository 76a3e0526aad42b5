package handlers

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/api/idtoken"

	"github.com/devfoliohq/boltgen/internal/config"
	db "github.com/devfoliohq/boltgen/internal/core/database"
	"github.com/devfoliohq/boltgen/internal/models"
	"github.com/devfoliohq/boltgen/internal/prompts"

	"github.com/google/uuid"
)

// credentialVerifier validates a Google ID token and returns its claims.
// Swapped for a stub in tests.
type credentialVerifier func(r *http.Request, credential, audience string) (map[string]any, error)

func googleVerifier(r *http.Request, credential, audience string) (map[string]any, error) {
	payload, err := idtoken.Validate(r.Context(), credential, audience)
	if err != nil {
		return nil, err
	}
	return payload.Claims, nil
}

type AuthHandler struct {
	dbclient db.DbClient
	cfg      *config.Config
	verify   credentialVerifier
	logger   *zap.Logger
}

func NewAuthHandler(dbclient db.DbClient, cfg *config.Config, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{dbclient: dbclient, cfg: cfg, verify: googleVerifier, logger: logger}
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body", err.Error())
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required", "")
		return
	}

	existing, err := h.dbclient.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to look up user", err.Error())
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "user exists", "")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to process password", "")
		return
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		TokenBalance: prompts.SignupTokenGrant,
	}
	if err := h.dbclient.CreateUser(r.Context(), user); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create user", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"token": generateJWT(user.ID, h.cfg.JWTSecret)})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body", err.Error())
		return
	}

	user, err := h.dbclient.GetUserByEmail(r.Context(), req.Email)
	if err != nil || user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials", "")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": generateJWT(user.ID, h.cfg.JWTSecret)})
}

type googleAuthRequest struct {
	Credential string `json:"credential"`
}

// GoogleAuth verifies a Google One Tap credential and signs the user in,
// creating the account with the signup token grant on first sight.
func (h *AuthHandler) GoogleAuth(w http.ResponseWriter, r *http.Request) {
	var req googleAuthRequest
	if err := decodeBody(r, &req); err != nil || req.Credential == "" {
		writeError(w, http.StatusBadRequest, "credential is required", "")
		return
	}

	claims, err := h.verify(r, req.Credential, h.cfg.GoogleClientID)
	if err != nil {
		h.logger.Warn("google credential rejected", zap.Error(err))
		writeError(w, http.StatusBadRequest, "Invalid credential", "")
		return
	}

	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	picture, _ := claims["picture"].(string)
	sub, _ := claims["sub"].(string)
	if email == "" || sub == "" {
		writeError(w, http.StatusBadRequest, "Invalid credential", "missing claims")
		return
	}

	user, err := h.dbclient.GetUserByEmail(r.Context(), email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to look up user", err.Error())
		return
	}
	if user == nil {
		user = &models.User{
			ID:           uuid.NewString(),
			Name:         name,
			Email:        email,
			Picture:      picture,
			ExternalUID:  sub,
			TokenBalance: prompts.SignupTokenGrant,
		}
		if err := h.dbclient.CreateUser(r.Context(), user); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to create user", err.Error())
			return
		}
		h.logger.Info("user created", zap.String("user_id", user.ID))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": generateJWT(user.ID, h.cfg.JWTSecret),
		"user":  user,
	})
}

// generateJWT creates a signed token with user ID claim
func generateJWT(userID, secret string) string {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, _ := tok.SignedString([]byte(secret))
	return token
}
