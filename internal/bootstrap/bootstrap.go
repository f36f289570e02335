package bootstrap

import (
	"github.com/audioscribe/audioscribe/internal/config"
	"github.com/audioscribe/audioscribe/internal/core/domain"
	"github.com/audioscribe/audioscribe/internal/core/ports"
	"github.com/audioscribe/audioscribe/internal/core/usecase"
	"github.com/audioscribe/audioscribe/internal/infrastructure/asr/dashscope"
	"github.com/audioscribe/audioscribe/internal/infrastructure/download/ytdlp"
	"github.com/audioscribe/audioscribe/internal/infrastructure/resilience"
	"github.com/audioscribe/audioscribe/internal/infrastructure/storage/qiniu"
)

type App struct {
	Config  config.Config
	Service *usecase.Service
}

// New wires the workflow service. Provider clients are built lazily through
// factories because credentials may be overridden per call; the resilience
// guard is shared so breaker state survives across requests.
func New(cfg config.Config, serviceName string, recorder usecase.RunRecorder) *App {
	guard := resilience.NewGuard(resilience.DefaultConfig())
	fetcher := ytdlp.New(cfg.YtdlpBin, cfg.DownloadTimeout)

	factories := usecase.ClientFactories{
		Store: func(creds domain.Credentials) (ports.ObjectStore, error) {
			return qiniu.NewStore(creds, guard)
		},
		Recognizer: func(creds domain.Credentials) (ports.SpeechRecognizer, error) {
			return dashscope.New(dashscope.Config{
				BaseURL:      cfg.DashScopeURL,
				APIKey:       creds.DashScopeAPIKey,
				Model:        cfg.ASRModel,
				PollInterval: cfg.ASRPollInterval,
				WaitTimeout:  cfg.ASRWaitTimeout,
			}, guard)
		},
	}

	service := usecase.NewService(serviceName, credentials(cfg), cfg.StagingDir, fetcher, factories, recorder)

	return &App{
		Config:  cfg,
		Service: service,
	}
}

func credentials(cfg config.Config) domain.Credentials {
	return domain.Credentials{
		QiniuAccessKey:    cfg.QiniuAccessKey,
		QiniuSecretKey:    cfg.QiniuSecretKey,
		QiniuBucket:       cfg.QiniuBucket,
		QiniuBucketDomain: cfg.QiniuBucketDomain,
		DashScopeAPIKey:   cfg.DashScopeAPIKey,
	}
}
