package ports

import (
	"context"

	"github.com/audioscribe/audioscribe/internal/core/domain"
)

// WorkflowService is the inbound contract shared by the CLI and the HTTP
// API: the three standalone operations plus the full pipeline.
type WorkflowService interface {
	Download(ctx context.Context, url, outputDir string) (string, error)
	Upload(ctx context.Context, req domain.UploadRequest) (domain.UploadResult, error)
	Recognize(ctx context.Context, req domain.RecognizeRequest) (*domain.Recognition, error)
	Process(ctx context.Context, req domain.WorkflowRequest) domain.WorkflowResult
}
