package dashscope

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/audioscribe/audioscribe/internal/core/domain"
	"github.com/audioscribe/audioscribe/internal/infrastructure/normalize"
	"github.com/audioscribe/audioscribe/internal/infrastructure/resilience"
)

const (
	defaultBaseURL      = "https://dashscope.aliyuncs.com"
	defaultModel        = "sensevoice-v1"
	transcriptionPath   = "/api/v1/services/audio/asr/transcription"
	defaultPollInterval = 2 * time.Second
	maxPollInterval     = 10 * time.Second
	defaultWaitTimeout  = 15 * time.Minute
)

// Task statuses reported by the transcription service.
const (
	taskPending   = "PENDING"
	taskRunning   = "RUNNING"
	taskSucceeded = "SUCCEEDED"
	taskFailed    = "FAILED"
	taskCanceled  = "CANCELED"
	taskUnknown   = "UNKNOWN"
)

var errStillRunning = errors.New("transcription still running")

type Config struct {
	BaseURL      string
	APIKey       string
	Model        string
	PollInterval time.Duration
	WaitTimeout  time.Duration
}

// Client transcribes staged audio through the DashScope async ASR API:
// submit a job for a public file URL, poll the task until it reaches a
// terminal status, then collect the transcript documents it produced.
type Client struct {
	baseURL      string
	apiKey       string
	model        string
	pollInterval time.Duration
	waitTimeout  time.Duration
	guard        *resilience.Guard
	httpClient   *http.Client
}

func New(cfg Config, guard *resilience.Guard) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, domain.WrapError(domain.ErrConfiguration, "build speech recognizer",
			errors.New("dashscope api key missing"))
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.WaitTimeout <= 0 {
		cfg.WaitTimeout = defaultWaitTimeout
	}
	if guard == nil {
		guard = resilience.NewGuard(resilience.DefaultConfig())
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:       cfg.APIKey,
		model:        cfg.Model,
		pollInterval: cfg.PollInterval,
		waitTimeout:  cfg.WaitTimeout,
		guard:        guard,
		httpClient:   &http.Client{Timeout: 60 * time.Second},
	}, nil
}

func (c *Client) Recognize(ctx context.Context, fileURL, language string, keepTags bool) (*domain.Recognition, error) {
	if strings.TrimSpace(fileURL) == "" {
		return nil, domain.WrapError(domain.ErrRecognition, "transcribe audio", errors.New("file url is empty"))
	}

	taskID, err := c.submit(ctx, fileURL, language)
	if err != nil {
		return nil, domain.WrapError(domain.ErrRecognition, "submit transcription", err)
	}
	slog.Debug("transcription task submitted", "task_id", taskID)

	task, err := c.waitForTask(ctx, taskID)
	if err != nil {
		return nil, domain.WrapError(domain.ErrRecognition, "wait for transcription", err)
	}
	if task.TaskStatus != taskSucceeded {
		detail := task.Message
		if detail == "" {
			detail = "status " + task.TaskStatus
		}
		return nil, domain.WrapError(domain.ErrRecognition, "transcribe audio",
			fmt.Errorf("%w: %s", domain.ErrJobFailed, detail))
	}
	if len(task.Results) == 0 {
		return nil, domain.WrapError(domain.ErrRecognition, "transcribe audio", domain.ErrNoResults)
	}

	// Segments are cleaned one by one so the newline separators between
	// channels survive normalization.
	cleaner := normalize.New(!keepTags, false)
	var (
		texts      []string
		cleanTexts []string
		details    json.RawMessage
	)
	for i, result := range task.Results {
		if result.SubtaskStatus != taskSucceeded {
			slog.Warn("transcription subtask failed",
				"file_url", result.FileURL,
				"status", result.SubtaskStatus,
				"message", result.Message)
			continue
		}
		raw, err := c.fetchTranscript(ctx, result.TranscriptionURL)
		if err != nil {
			slog.Warn("fetch transcript failed", "file_url", result.FileURL, "error", err)
			continue
		}
		var doc transcriptDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			slog.Warn("parse transcript failed", "file_url", result.FileURL, "error", err)
			continue
		}
		for _, tr := range doc.Transcripts {
			texts = append(texts, tr.Text)
			cleanTexts = append(cleanTexts, cleaner.Clean(tr.Text))
		}
		if i == 0 {
			details = json.RawMessage(raw)
		}
	}

	return &domain.Recognition{
		Text:         strings.Join(cleanTexts, "\n"),
		OriginalText: strings.Join(texts, "\n"),
		Details:      details,
	}, nil
}

func (c *Client) submit(ctx context.Context, fileURL, language string) (string, error) {
	if language == "" {
		language = "auto"
	}
	payload := map[string]any{
		"model": c.model,
		"input": map[string]any{
			"file_urls": []string{fileURL},
		},
		"parameters": map[string]any{
			"language_hints": []string{language},
		},
	}

	var resp submitResponse
	err := c.guard.Execute(ctx, "dashscope_submit", func(ctx context.Context) error {
		return c.postJSON(ctx, transcriptionPath, payload, &resp, "submit")
	}, classifyASRError)
	if err != nil {
		return "", err
	}
	if resp.Output.TaskID == "" {
		return "", errors.New("response missing task id")
	}
	return resp.Output.TaskID, nil
}

// waitForTask polls the task endpoint until the job reaches a terminal
// status. Transient transport errors keep the poll alive; the overall wait
// is bounded by the configured timeout.
func (c *Client) waitForTask(ctx context.Context, taskID string) (*taskOutput, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.pollInterval
	policy.RandomizationFactor = 0.2
	policy.Multiplier = 1.5
	policy.MaxInterval = maxPollInterval
	policy.MaxElapsedTime = c.waitTimeout

	var terminal *taskOutput
	poll := func() error {
		task, err := c.fetchTask(ctx, taskID)
		if err != nil {
			if resilience.IsCircuitOpen(err) {
				return backoff.Permanent(err)
			}
			var statusErr *HTTPStatusError
			if errors.As(err, &statusErr) && !isTransientStatus(statusErr.StatusCode) {
				return backoff.Permanent(err)
			}
			return err
		}
		// Anything outside the two in-progress statuses is terminal,
		// UNKNOWN included: the service stops tracking expired tasks.
		switch task.TaskStatus {
		case taskPending, taskRunning:
			return errStillRunning
		default:
			terminal = task
			return nil
		}
	}

	if err := backoff.Retry(poll, backoff.WithContext(policy, ctx)); err != nil {
		if errors.Is(err, errStillRunning) {
			return nil, fmt.Errorf("task %s did not finish within %s", taskID, c.waitTimeout)
		}
		return nil, err
	}
	return terminal, nil
}

func (c *Client) fetchTask(ctx context.Context, taskID string) (*taskOutput, error) {
	var resp taskResponse
	err := c.guard.Execute(ctx, "dashscope_poll", func(ctx context.Context) error {
		return c.getJSON(ctx, "/api/v1/tasks/"+taskID, &resp, "poll")
	}, classifyASRError)
	if err != nil {
		return nil, err
	}
	return &resp.Output, nil
}

type submitResponse struct {
	RequestID string `json:"request_id"`
	Output    struct {
		TaskID     string `json:"task_id"`
		TaskStatus string `json:"task_status"`
	} `json:"output"`
}

type taskResponse struct {
	RequestID string     `json:"request_id"`
	Output    taskOutput `json:"output"`
}

type taskOutput struct {
	TaskID     string       `json:"task_id"`
	TaskStatus string       `json:"task_status"`
	Code       string       `json:"code,omitempty"`
	Message    string       `json:"message,omitempty"`
	Results    []taskResult `json:"results,omitempty"`
}

type taskResult struct {
	FileURL          string `json:"file_url"`
	TranscriptionURL string `json:"transcription_url"`
	SubtaskStatus    string `json:"subtask_status"`
	Code             string `json:"code,omitempty"`
	Message          string `json:"message,omitempty"`
}

type transcriptDoc struct {
	FileURL     string `json:"file_url"`
	Transcripts []struct {
		ChannelID int    `json:"channel_id"`
		Text      string `json:"text"`
	} `json:"transcripts"`
}
