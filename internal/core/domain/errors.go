package domain

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration  = errors.New("incomplete configuration")
	ErrFileNotFound   = errors.New("file not found")
	ErrDownloadFailed = errors.New("download failed")
	ErrUploadFailed   = errors.New("upload failed")
	ErrRecognition    = errors.New("recognition failed")

	// Recognition sub-kinds, always wrapped under ErrRecognition.
	ErrJobFailed = errors.New("transcription job failed")
	ErrNoResults = errors.New("transcription returned no results")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
