package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/devfoliohq/boltgen/internal/core"
	db "github.com/devfoliohq/boltgen/internal/core/database"
	"github.com/devfoliohq/boltgen/internal/models"
	"github.com/devfoliohq/boltgen/internal/scaffold"
)

// WorkspaceService creates and reads workspaces. The file set handed out is
// always the scaffold with the stored generated files merged on top, so a
// fresh workspace previews the bootstrap project and a generated one previews
// the AI's files.
type WorkspaceService struct {
	db      db.DbClient
	storage core.ObjectClient
	bucket  string
	logger  *zap.Logger
}

func NewWorkspaceService(db db.DbClient, storage core.ObjectClient, bucket string, logger *zap.Logger) *WorkspaceService {
	return &WorkspaceService{db: db, storage: storage, bucket: bucket, logger: logger}
}

// Create starts a workspace from the user's first build prompt. The
// conversation is seeded with that prompt as its only turn; the caller then
// submits the turn for processing.
func (s *WorkspaceService) Create(ctx context.Context, userID, firstMessage string) (*models.Workspace, error) {
	if firstMessage == "" {
		return nil, ErrEmptyMessage
	}

	ws := &models.Workspace{
		ID:     uuid.NewString(),
		UserID: userID,
		Conversation: []models.Message{
			{Role: models.RoleUser, Content: firstMessage},
		},
	}
	if err := s.db.CreateWorkspace(ctx, ws); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}

	s.logger.Info("workspace created", zap.String("workspace_id", ws.ID), zap.String("user_id", userID))
	return ws, nil
}

// Get returns the workspace with its merged file set.
func (s *WorkspaceService) Get(ctx context.Context, workspaceID, userID string) (*models.Workspace, error) {
	ws, err := s.db.GetWorkspaceByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if ws == nil {
		return nil, ErrWorkspaceNotFound
	}
	if ws.UserID != userID {
		return nil, ErrForbidden
	}

	ws.Files = scaffold.Merge(scaffold.Default(), ws.Files)
	return ws, nil
}

// ListByUser returns the user's workspaces, newest first. Conversations are
// included; file sets are left as stored to keep the listing light.
func (s *WorkspaceService) ListByUser(ctx context.Context, userID string) ([]models.Workspace, error) {
	return s.db.ListWorkspacesByUser(ctx, userID)
}

// Export bundles the merged file set as a JSON document, uploads it to object
// storage and returns the object URL.
func (s *WorkspaceService) Export(ctx context.Context, workspaceID, userID string) (string, error) {
	if s.storage == nil {
		return "", ErrExportUnavailable
	}

	ws, err := s.Get(ctx, workspaceID, userID)
	if err != nil {
		return "", err
	}

	bundle, err := json.MarshalIndent(ws.Files, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal export bundle: %w", err)
	}

	key := fmt.Sprintf("exports/%s/%s.json", userID, workspaceID)
	url, err := s.storage.UploadFile(ctx, s.bucket, key, bundle, "application/json")
	if err != nil {
		return "", fmt.Errorf("upload export: %w", err)
	}

	s.logger.Info("workspace exported", zap.String("workspace_id", workspaceID), zap.String("url", url))
	return url, nil
}
