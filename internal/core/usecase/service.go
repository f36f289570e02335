package usecase

import (
	"context"
	"time"

	"github.com/audioscribe/audioscribe/internal/core/domain"
	"github.com/audioscribe/audioscribe/internal/core/ports"
)

// ClientFactories build provider clients for one request. Factories exist
// because callers may override credentials per call, and a client is only
// constructible once the effective credentials are known.
type ClientFactories struct {
	Store      func(domain.Credentials) (ports.ObjectStore, error)
	Recognizer func(domain.Credentials) (ports.SpeechRecognizer, error)
}

// RunRecorder observes workflow runs. PipelineMetrics satisfies it; a nil
// recorder disables recording.
type RunRecorder interface {
	StartRun()
	FinishRun(service string, duration time.Duration, steps []string, success bool)
}

// Service implements ports.WorkflowService on top of the provider factories.
// Process-level credentials act as the base layer; request credentials win
// field by field.
type Service struct {
	name       string
	baseCreds  domain.Credentials
	stagingDir string
	fetcher    ports.AudioFetcher
	factories  ClientFactories
	recorder   RunRecorder
}

func NewService(
	name string,
	baseCreds domain.Credentials,
	stagingDir string,
	fetcher ports.AudioFetcher,
	factories ClientFactories,
	recorder RunRecorder,
) *Service {
	return &Service{
		name:       name,
		baseCreds:  baseCreds,
		stagingDir: stagingDir,
		fetcher:    fetcher,
		factories:  factories,
		recorder:   recorder,
	}
}

func (s *Service) Download(ctx context.Context, url, outputDir string) (string, error) {
	if outputDir == "" {
		outputDir = s.stagingDir
	}
	return s.fetcher.Fetch(ctx, url, outputDir)
}

func (s *Service) Upload(ctx context.Context, req domain.UploadRequest) (domain.UploadResult, error) {
	store, err := s.factories.Store(s.baseCreds.Merge(req.Credentials))
	if err != nil {
		return domain.UploadResult{}, err
	}
	expires := req.Expires
	if expires <= 0 {
		expires = domain.DefaultLinkExpires
	}
	return store.Upload(ctx, req.FilePath, req.RemoteName, expires)
}

func (s *Service) Recognize(ctx context.Context, req domain.RecognizeRequest) (*domain.Recognition, error) {
	recognizer, err := s.factories.Recognizer(s.baseCreds.Merge(req.Credentials))
	if err != nil {
		return nil, err
	}
	return recognizer.Recognize(ctx, req.FileURL, req.Language, req.KeepTags)
}

// Process builds the provider clients for the effective credentials, then
// hands off to the pipeline. Client construction failures never panic the
// run; they come back as a zero-step failed result.
func (s *Service) Process(ctx context.Context, req domain.WorkflowRequest) domain.WorkflowResult {
	creds := s.baseCreds.Merge(req.Credentials)

	store, err := s.factories.Store(creds)
	if err != nil {
		return configFailure(err)
	}
	recognizer, err := s.factories.Recognizer(creds)
	if err != nil {
		return configFailure(err)
	}

	workflow := NewWorkflow(s.fetcher, store, recognizer, s.stagingDir)

	if s.recorder != nil {
		s.recorder.StartRun()
	}
	start := time.Now()
	result := workflow.Run(ctx, req)
	if s.recorder != nil {
		s.recorder.FinishRun(s.name, time.Since(start), result.StepsCompleted, result.Success)
	}
	return result
}

func configFailure(err error) domain.WorkflowResult {
	return domain.WorkflowResult{
		StepsCompleted: []string{},
		Error:          err.Error(),
	}
}
