package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/devfoliohq/boltgen/internal/config"
	"github.com/devfoliohq/boltgen/internal/core"
	db "github.com/devfoliohq/boltgen/internal/core/database"
	"github.com/devfoliohq/boltgen/internal/core/llm"
	"github.com/devfoliohq/boltgen/internal/core/objectstore"
)

type App struct {
	DBClient db.DbClient
	AIClient core.AIClient
	Server   *Server
	logger   *zap.Logger
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("database initialized and ready")

	aiClient, err := llm.NewGeminiClient(appCtx, cfg.AIAPIKey, cfg.GenModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the AI client: %w", err)
	}
	logger.Info("AI client initialized", zap.String("model", cfg.GenModel))

	// Export storage is optional; workspaces still work without it.
	var storage core.ObjectClient
	s3Client, err := objectstore.NewS3Client(appCtx, cfg)
	if err != nil {
		logger.Warn("object storage unavailable, workspace export disabled", zap.Error(err))
	} else {
		storage = s3Client
	}

	server := NewServer(cfg, dbClient, aiClient, storage, logger)

	return &App{DBClient: dbClient, AIClient: aiClient, Server: server, logger: logger}, nil
}

func (a *App) Close() {
	if a.AIClient != nil {
		_ = a.AIClient.Close()
	}
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
