package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_HOST", "")
	t.Setenv("API_PORT", "")
	t.Setenv("STAGING_DIR", "")
	t.Setenv("YTDLP_BIN", "")
	t.Setenv("ASR_MODEL", "")
	t.Setenv("ASR_POLL_INTERVAL", "")
	t.Setenv("ASR_WAIT_TIMEOUT", "")
	t.Setenv("DASHSCOPE_BASE_URL", "")

	cfg := Load()
	if cfg.APIHost != "0.0.0.0" {
		t.Fatalf("expected default host 0.0.0.0, got %q", cfg.APIHost)
	}
	if cfg.APIPort != "8000" {
		t.Fatalf("expected default port 8000, got %q", cfg.APIPort)
	}
	if cfg.StagingDir != "downloads_temp" {
		t.Fatalf("expected default staging dir downloads_temp, got %q", cfg.StagingDir)
	}
	if cfg.YtdlpBin != "yt-dlp" {
		t.Fatalf("expected default binary yt-dlp, got %q", cfg.YtdlpBin)
	}
	if cfg.ASRModel != "sensevoice-v1" {
		t.Fatalf("expected default model sensevoice-v1, got %q", cfg.ASRModel)
	}
	if cfg.ASRPollInterval != 2*time.Second {
		t.Fatalf("expected default poll interval 2s, got %v", cfg.ASRPollInterval)
	}
	if cfg.ASRWaitTimeout != 15*time.Minute {
		t.Fatalf("expected default wait timeout 15m, got %v", cfg.ASRWaitTimeout)
	}
	if cfg.DashScopeURL != "https://dashscope.aliyuncs.com" {
		t.Fatalf("expected dashscope base url default, got %q", cfg.DashScopeURL)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("API_PORT", "9100")
	t.Setenv("STAGING_DIR", "/tmp/stage")
	t.Setenv("ASR_POLL_INTERVAL", "500ms")
	t.Setenv("ASR_WAIT_TIMEOUT", "90")
	t.Setenv("QINIU_BUCKET_NAME", "media-staging")

	cfg := Load()
	if cfg.APIPort != "9100" {
		t.Fatalf("expected port override, got %q", cfg.APIPort)
	}
	if cfg.StagingDir != "/tmp/stage" {
		t.Fatalf("expected staging dir override, got %q", cfg.StagingDir)
	}
	if cfg.ASRPollInterval != 500*time.Millisecond {
		t.Fatalf("expected poll interval 500ms, got %v", cfg.ASRPollInterval)
	}
	if cfg.ASRWaitTimeout != 90*time.Second {
		t.Fatalf("expected bare seconds to parse as 90s, got %v", cfg.ASRWaitTimeout)
	}
	if cfg.QiniuBucket != "media-staging" {
		t.Fatalf("expected bucket override, got %q", cfg.QiniuBucket)
	}
}

func TestLoadDashScopeKeyFallsBackToAliyunName(t *testing.T) {
	t.Setenv("DASHSCOPE_API_KEY", "")
	t.Setenv("ALIYUN_API_KEY", "sk-legacy")

	cfg := Load()
	if cfg.DashScopeAPIKey != "sk-legacy" {
		t.Fatalf("expected legacy key name fallback, got %q", cfg.DashScopeAPIKey)
	}

	t.Setenv("DASHSCOPE_API_KEY", "sk-current")
	cfg = Load()
	if cfg.DashScopeAPIKey != "sk-current" {
		t.Fatalf("expected primary key name to win, got %q", cfg.DashScopeAPIKey)
	}
}

func TestLoadRejectsBadDurations(t *testing.T) {
	t.Setenv("ASR_POLL_INTERVAL", "soon")
	t.Setenv("DOWNLOAD_TIMEOUT", "-5s")

	cfg := Load()
	if cfg.ASRPollInterval != 2*time.Second {
		t.Fatalf("expected fallback poll interval, got %v", cfg.ASRPollInterval)
	}
	if cfg.DownloadTimeout != 10*time.Minute {
		t.Fatalf("expected fallback download timeout, got %v", cfg.DownloadTimeout)
	}
}
