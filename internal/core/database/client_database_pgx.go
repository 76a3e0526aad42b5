package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/devfoliohq/boltgen/internal/config"
	"github.com/devfoliohq/boltgen/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (DbClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Implementing the db interface for users

func (c *DatabaseClient) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	const q = `
		INSERT INTO users (id, name, email, picture, external_uid, password_hash, token_balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
	`
	_, err := c.db.ExecContext(ctx, q,
		user.ID, user.Name, user.Email, user.Picture, user.ExternalUID, user.PasswordHash, user.TokenBalance)
	return err
}

const userColumns = `id, name, email, picture, external_uid, password_hash, token_balance, created_at, updated_at`

func (c *DatabaseClient) scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.Picture, &u.ExternalUID, &u.PasswordHash, &u.TokenBalance, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *DatabaseClient) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return c.scanUser(c.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (c *DatabaseClient) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return c.scanUser(c.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (c *DatabaseClient) GetUserByExternalUID(ctx context.Context, uid string) (*models.User, error) {
	return c.scanUser(c.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE external_uid = $1`, uid))
}

func (c *DatabaseClient) UpdateUserTokenBalance(ctx context.Context, userID string, balance int) error {
	const q = `
		UPDATE users
		SET token_balance = $2, updated_at = now()
		WHERE id = $1
	`
	res, err := c.db.ExecContext(ctx, q, userID, balance)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("user not found: %s", userID)
	}
	return nil
}

// Implementing the db interface for workspaces.
// Conversation and file set live in JSONB columns; the workspace is the sole
// owner of both, and updates overwrite the whole document (last write wins).

func (c *DatabaseClient) CreateWorkspace(ctx context.Context, ws *models.Workspace) error {
	if ws == nil {
		return errors.New("nil workspace")
	}
	conv, err := json.Marshal(ws.Conversation)
	if err != nil {
		return fmt.Errorf("marshal conversation: %w", err)
	}
	const q = `
		INSERT INTO workspaces (id, user_id, conversation, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
	`
	_, err = c.db.ExecContext(ctx, q, ws.ID, ws.UserID, conv)
	return err
}

func (c *DatabaseClient) GetWorkspaceByID(ctx context.Context, id string) (*models.Workspace, error) {
	const q = `
		SELECT id, user_id, conversation, file_data, created_at, updated_at
		FROM workspaces WHERE id = $1
	`
	var (
		ws       models.Workspace
		conv     []byte
		fileData []byte
	)
	err := c.db.QueryRowContext(ctx, q, id).Scan(
		&ws.ID, &ws.UserID, &conv, &fileData, &ws.CreatedAt, &ws.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(conv, &ws.Conversation); err != nil {
		return nil, fmt.Errorf("unmarshal conversation: %w", err)
	}
	if len(fileData) > 0 {
		if err := json.Unmarshal(fileData, &ws.Files); err != nil {
			return nil, fmt.Errorf("unmarshal file data: %w", err)
		}
	}
	return &ws, nil
}

func (c *DatabaseClient) ListWorkspacesByUser(ctx context.Context, userID string) ([]models.Workspace, error) {
	const q = `
		SELECT id, user_id, conversation, file_data, created_at, updated_at
		FROM workspaces
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := c.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Workspace
	for rows.Next() {
		var (
			ws       models.Workspace
			conv     []byte
			fileData []byte
		)
		if err := rows.Scan(&ws.ID, &ws.UserID, &conv, &fileData, &ws.CreatedAt, &ws.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(conv, &ws.Conversation); err != nil {
			return nil, fmt.Errorf("unmarshal conversation: %w", err)
		}
		if len(fileData) > 0 {
			if err := json.Unmarshal(fileData, &ws.Files); err != nil {
				return nil, fmt.Errorf("unmarshal file data: %w", err)
			}
		}
		out = append(out, ws)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) UpdateWorkspaceConversation(ctx context.Context, id string, conversation []models.Message) error {
	conv, err := json.Marshal(conversation)
	if err != nil {
		return fmt.Errorf("marshal conversation: %w", err)
	}
	const q = `
		UPDATE workspaces
		SET conversation = $2, updated_at = now()
		WHERE id = $1
	`
	res, err := c.db.ExecContext(ctx, q, id, conv)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("workspace not found: %s", id)
	}
	return nil
}

func (c *DatabaseClient) UpdateWorkspaceFiles(ctx context.Context, id string, files models.FileSet) error {
	data, err := json.Marshal(files)
	if err != nil {
		return fmt.Errorf("marshal file data: %w", err)
	}
	const q = `
		UPDATE workspaces
		SET file_data = $2, updated_at = now()
		WHERE id = $1
	`
	res, err := c.db.ExecContext(ctx, q, id, data)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("workspace not found: %s", id)
	}
	return nil
}

// Implementing the db interface for payments

func (c *DatabaseClient) CreatePayment(ctx context.Context, p *models.Payment) error {
	if p == nil {
		return errors.New("nil payment")
	}
	const q = `
		INSERT INTO payments
			(id, user_id, order_id, payment_id, signature, amount, currency, status, method, error_message, payment_date)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, COALESCE($11, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		p.ID, p.UserID, p.OrderID, p.PaymentID, p.Signature, p.Amount, p.Currency, p.Status, p.Method, p.ErrorMessage, p.PaymentDate)
	return err
}

func (c *DatabaseClient) ListPaymentsByUser(ctx context.Context, userID string) ([]models.Payment, error) {
	const q = `
		SELECT id, user_id, order_id, payment_id, signature, amount, currency, status, method, error_message, payment_date
		FROM payments
		WHERE user_id = $1
		ORDER BY payment_date DESC
	`
	rows, err := c.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Payment
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.OrderID, &p.PaymentID, &p.Signature, &p.Amount, &p.Currency, &p.Status, &p.Method, &p.ErrorMessage, &p.PaymentDate,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
