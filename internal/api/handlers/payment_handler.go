package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/devfoliohq/boltgen/internal/services"
)

type PaymentHandler struct {
	payments *services.PaymentService
	logger   *zap.Logger
}

func NewPaymentHandler(payments *services.PaymentService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{payments: payments, logger: logger}
}

type recordPaymentRequest struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature"`
	Amount    int    `json:"amount"`
	Currency  string `json:"currency"`
	Status    string `json:"status"`
	Method    string `json:"method"`
}

// Record verifies the gateway callback and, when the payment succeeded,
// credits the purchased tokens to the caller's balance.
func (h *PaymentHandler) Record(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req recordPaymentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body", err.Error())
		return
	}

	payment, balance, err := h.payments.Record(r.Context(), userID, services.PaymentInput{
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
		Amount:    req.Amount,
		Currency:  req.Currency,
		Status:    req.Status,
		Method:    req.Method,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidSignature):
			writeError(w, http.StatusBadRequest, "payment signature verification failed", "")
		case errors.Is(err, services.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "user not found", "")
		default:
			h.logger.Error("recording payment failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to record payment", err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"payment":      payment,
		"tokenBalance": balance,
	})
}
