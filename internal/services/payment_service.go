package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	db "github.com/devfoliohq/boltgen/internal/core/database"
	"github.com/devfoliohq/boltgen/internal/models"
	"github.com/devfoliohq/boltgen/internal/tokens"
)

// PaymentService records gateway payments and credits user balances.
// The gateway signs "orderID|paymentID" with a shared secret; a payment is
// credited only when the signature verifies and the gateway reported success.
type PaymentService struct {
	db     db.DbClient
	secret string
	logger *zap.Logger
}

func NewPaymentService(db db.DbClient, secret string, logger *zap.Logger) *PaymentService {
	return &PaymentService{db: db, secret: secret, logger: logger}
}

// PaymentInput is the gateway callback payload.
type PaymentInput struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature"`
	Amount    int    `json:"amount"`
	Currency  string `json:"currency"`
	Status    string `json:"status"`
	Method    string `json:"method"`
}

// VerifySignature checks the gateway's HMAC-SHA256 signature over
// "orderID|paymentID".
func (s *PaymentService) VerifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(s.secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Record verifies and stores a payment. A verified successful payment credits
// the user's token balance by the paid amount; the new balance is returned.
func (s *PaymentService) Record(ctx context.Context, userID string, in PaymentInput) (*models.Payment, int, error) {
	user, err := s.db.GetUserByID(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, 0, ErrUserNotFound
	}

	if !s.VerifySignature(in.OrderID, in.PaymentID, in.Signature) {
		return nil, 0, ErrInvalidSignature
	}

	switch in.Status {
	case models.PaymentPending, models.PaymentSuccessful, models.PaymentFailed:
	default:
		return nil, 0, fmt.Errorf("unknown payment status %q", in.Status)
	}

	payment := &models.Payment{
		ID:          uuid.NewString(),
		UserID:      userID,
		OrderID:     in.OrderID,
		PaymentID:   in.PaymentID,
		Signature:   in.Signature,
		Amount:      in.Amount,
		Currency:    in.Currency,
		Status:      in.Status,
		Method:      in.Method,
		PaymentDate: time.Now().UTC(),
	}
	if err := s.db.CreatePayment(ctx, payment); err != nil {
		return nil, 0, fmt.Errorf("record payment: %w", err)
	}

	balance := user.TokenBalance
	if in.Status == models.PaymentSuccessful {
		balance = tokens.Credit(balance, in.Amount)
		if err := s.db.UpdateUserTokenBalance(ctx, userID, balance); err != nil {
			return nil, 0, fmt.Errorf("credit balance: %w", err)
		}
		s.logger.Info("balance credited",
			zap.String("user_id", userID),
			zap.Int("amount", in.Amount),
			zap.Int("balance", balance))
	}

	return payment, balance, nil
}
