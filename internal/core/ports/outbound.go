package ports

import (
	"context"

	"github.com/audioscribe/audioscribe/internal/core/domain"
)

// AudioFetcher downloads the audio track of a remote media URL into destDir
// and returns the path of the local file it produced.
type AudioFetcher interface {
	Fetch(ctx context.Context, url, destDir string) (string, error)
}

// ObjectStore stages local files in a cloud bucket and signs temporary
// download links.
type ObjectStore interface {
	Upload(ctx context.Context, localPath, remoteName string, expires int64) (domain.UploadResult, error)
	Delete(ctx context.Context, key string) error
}

// SpeechRecognizer transcribes a publicly reachable audio file URL.
type SpeechRecognizer interface {
	Recognize(ctx context.Context, fileURL, language string, keepTags bool) (*domain.Recognition, error)
}
