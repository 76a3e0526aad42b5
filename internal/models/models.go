package models

import (
	"time"
)

// Message roles as stored in a workspace conversation. The original product
// stored the user role capitalized and the assistant role lowercase; persisted
// conversations depend on these exact strings.
const (
	RoleUser = "User"
	RoleAI   = "ai"
)

// Message is one turn in a workspace conversation. Conversations are
// append-only; a message is never mutated or deleted once appended.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GeneratedFile holds the source text for one file in a generated project.
type GeneratedFile struct {
	Code string `json:"code"`
}

// FileSet maps absolute file paths ("/App.js") to their contents.
type FileSet map[string]GeneratedFile

// User represents an authenticated user of the system.
type User struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	Picture      string    `db:"picture" json:"picture"`
	ExternalUID  string    `db:"external_uid" json:"-"`
	PasswordHash string    `db:"password_hash" json:"-"`
	TokenBalance int       `db:"token_balance" json:"token_balance"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Workspace owns one conversation and the file set generated for it.
type Workspace struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"user_id"`
	Conversation []Message `db:"conversation" json:"conversation"`
	Files        FileSet   `db:"file_data" json:"files,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Payment statuses reported by the payment gateway.
const (
	PaymentPending    = "pending"
	PaymentSuccessful = "successful"
	PaymentFailed     = "failed"
)

// Payment records one payment-gateway transaction for a user.
type Payment struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"user_id"`
	OrderID      string    `db:"order_id" json:"order_id"`
	PaymentID    string    `db:"payment_id" json:"payment_id"`
	Signature    string    `db:"signature" json:"-"`
	Amount       int       `db:"amount" json:"amount"`
	Currency     string    `db:"currency" json:"currency"`
	Status       string    `db:"status" json:"status"`
	Method       string    `db:"method" json:"method"`
	ErrorMessage string    `db:"error_message" json:"error_message,omitempty"`
	PaymentDate  time.Time `db:"payment_date" json:"payment_date"`
}

// CodeGenResult is the structured response from the code-generation backend.
// projectTitle, explanation, files and generatedFiles are always expected;
// the remaining fields are optional and default to empty.
type CodeGenResult struct {
	ProjectTitle   string            `json:"projectTitle"`
	Explanation    string            `json:"explanation"`
	Files          FileSet           `json:"files"`
	GeneratedFiles []string          `json:"generatedFiles"`
	Dependencies   map[string]string `json:"dependencies,omitempty"`
	Scripts        map[string]string `json:"scripts,omitempty"`
	Environment    map[string]string `json:"environment,omitempty"`
	Endpoints      []string          `json:"endpoints,omitempty"`
}
