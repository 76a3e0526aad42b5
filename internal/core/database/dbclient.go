package db

import (
	"context"

	"github.com/devfoliohq/boltgen/internal/models"
)

// DbClient defines all persistence operations the services need.
// It abstracts Postgres so higher layers never depend on a specific DB.
type DbClient interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByExternalUID(ctx context.Context, uid string) (*models.User, error)
	UpdateUserTokenBalance(ctx context.Context, userID string, balance int) error

	CreateWorkspace(ctx context.Context, ws *models.Workspace) error
	GetWorkspaceByID(ctx context.Context, id string) (*models.Workspace, error)
	ListWorkspacesByUser(ctx context.Context, userID string) ([]models.Workspace, error)
	UpdateWorkspaceConversation(ctx context.Context, id string, conversation []models.Message) error
	UpdateWorkspaceFiles(ctx context.Context, id string, files models.FileSet) error

	CreatePayment(ctx context.Context, p *models.Payment) error
	ListPaymentsByUser(ctx context.Context, userID string) ([]models.Payment, error)

	Close() error
}
