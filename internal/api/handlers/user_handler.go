package handlers

import (
	"net/http"

	"go.uber.org/zap"

	db "github.com/devfoliohq/boltgen/internal/core/database"
	"github.com/devfoliohq/boltgen/internal/prompts"
)

type UserHandler struct {
	dbclient db.DbClient
	logger   *zap.Logger
}

func NewUserHandler(dbclient db.DbClient, logger *zap.Logger) *UserHandler {
	return &UserHandler{dbclient: dbclient, logger: logger}
}

// Me returns the authenticated user's profile and current token balance.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	user, err := h.dbclient.GetUserByID(r.Context(), userID)
	if err != nil {
		h.logger.Error("fetching user failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch user", err.Error())
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found", "")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Pricing is public and returns the available token top-up tiers.
func Pricing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, prompts.PricingOptions)
}
