package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/audioscribe/audioscribe/internal/core/domain"
	"github.com/audioscribe/audioscribe/internal/core/ports"
)

// Workflow runs the download-upload-recognize pipeline for one URL.
// The steps are strictly sequential; the first failure stops the run and the
// result reports how far it got. Cleanup never turns a finished run into a
// failed one.
type Workflow struct {
	fetcher    ports.AudioFetcher
	store      ports.ObjectStore
	recognizer ports.SpeechRecognizer
	stagingDir string
}

func NewWorkflow(
	fetcher ports.AudioFetcher,
	store ports.ObjectStore,
	recognizer ports.SpeechRecognizer,
	stagingDir string,
) *Workflow {
	return &Workflow{
		fetcher:    fetcher,
		store:      store,
		recognizer: recognizer,
		stagingDir: stagingDir,
	}
}

func (w *Workflow) Run(ctx context.Context, req domain.WorkflowRequest) domain.WorkflowResult {
	result := domain.WorkflowResult{StepsCompleted: []string{}}

	outputDir := req.OutputDir
	if outputDir == "" {
		outputDir = w.stagingDir
	}

	slog.Info("workflow started", "url", req.URL, "output_dir", outputDir)

	slog.Info("workflow step started", "step", domain.StepDownload)
	audioPath, err := w.fetcher.Fetch(ctx, req.URL, outputDir)
	if err != nil {
		return w.fail(result, domain.StepDownload, err)
	}
	result.AudioFile = audioPath
	result.StepsCompleted = append(result.StepsCompleted, domain.StepDownload)

	expires := req.LinkExpires
	if expires <= 0 {
		expires = domain.DefaultLinkExpires
	}
	slog.Info("workflow step started", "step", domain.StepUpload, "file", audioPath)
	upload, err := w.store.Upload(ctx, audioPath, "", expires)
	if err != nil {
		return w.fail(result, domain.StepUpload, err)
	}
	result.UploadResult = &upload
	result.DownloadURL = upload.DirectLink
	result.CloudFileKey = upload.FileKey
	result.StepsCompleted = append(result.StepsCompleted, domain.StepUpload)

	slog.Info("workflow step started", "step", domain.StepRecognition)
	recognition, err := w.recognizer.Recognize(ctx, upload.DirectLink, req.Language, req.KeepTags)
	if err != nil {
		return w.fail(result, domain.StepRecognition, err)
	}
	result.Recognition = recognition
	result.Text = recognition.Text
	result.OriginalText = recognition.OriginalText
	result.StepsCompleted = append(result.StepsCompleted, domain.StepRecognition)

	result.Success = true

	if req.SaveJSON != "" {
		w.saveRecognition(req.SaveJSON, recognition)
	}
	if req.Cleanup {
		w.cleanup(ctx, &result)
	}

	slog.Info("workflow finished", "success", result.Success, "steps", result.StepsCompleted)
	return result
}

func (w *Workflow) fail(result domain.WorkflowResult, step string, err error) domain.WorkflowResult {
	result.Error = fmt.Sprintf("%s failed: %v", step, err)
	slog.Error("workflow step failed", "step", step, "error", err)
	return result
}

// cleanup removes the staged object and the local download. Both removals
// are best effort; a failure here only logs a warning.
func (w *Workflow) cleanup(ctx context.Context, result *domain.WorkflowResult) {
	if result.CloudFileKey != "" {
		if err := w.store.Delete(ctx, result.CloudFileKey); err != nil {
			slog.Warn("cloud cleanup failed", "key", result.CloudFileKey, "error", err)
		} else {
			result.StepsCompleted = append(result.StepsCompleted, domain.StepCloudCleanup)
		}
	}
	if result.AudioFile != "" {
		if err := os.Remove(result.AudioFile); err != nil {
			if !os.IsNotExist(err) {
				slog.Warn("local cleanup failed", "path", result.AudioFile, "error", err)
			}
		} else {
			result.StepsCompleted = append(result.StepsCompleted, domain.StepLocalCleanup)
			w.removeStagingDirIfEmpty(filepath.Dir(result.AudioFile))
		}
	}
}

// removeStagingDirIfEmpty only touches the workflow's own staging directory;
// caller-chosen output directories stay in place.
func (w *Workflow) removeStagingDirIfEmpty(dir string) {
	if dir != w.stagingDir {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) > 0 {
		return
	}
	if err := os.Remove(dir); err != nil {
		slog.Warn("remove staging dir failed", "dir", dir, "error", err)
	}
}

func (w *Workflow) saveRecognition(path string, recognition *domain.Recognition) {
	data, err := json.MarshalIndent(recognition, "", "  ")
	if err == nil {
		err = os.WriteFile(path, data, 0o644)
	}
	if err != nil {
		slog.Warn("save recognition json failed", "path", path, "error", err)
		return
	}
	slog.Info("recognition json saved", "path", path)
}
