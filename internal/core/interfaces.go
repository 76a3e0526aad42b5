package core

import (
	"context"

	"github.com/devfoliohq/boltgen/internal/models"
)

// AIClient is the narrow surface the rest of the system needs from the
// generative backend: a plain-text chat call and a structured code-generation
// call. Implementations live in core/llm; tests substitute fakes.
type AIClient interface {
	Chat(ctx context.Context, prompt string) (string, error)
	GenerateCode(ctx context.Context, prompt string) (*models.CodeGenResult, error)
	Close() error
}

// ObjectClient defines interactions with S3 or any object storage.
// It's abstract so the storage vendor can be swapped without touching services.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data []byte, contentType string) (url string, err error)
}
