package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	APIHost  string
	APIPort  string
	LogLevel string
	LogFile  string

	QiniuAccessKey    string
	QiniuSecretKey    string
	QiniuBucket       string
	QiniuBucketDomain string

	DashScopeAPIKey string
	DashScopeURL    string
	ASRModel        string
	ASRPollInterval time.Duration
	ASRWaitTimeout  time.Duration

	YtdlpBin        string
	StagingDir      string
	DownloadTimeout time.Duration
}

// Load reads configuration from the environment. Provider credentials may
// legitimately be absent here; completeness is checked when the matching
// client is constructed.
func Load() Config {
	return Config{
		APIHost:  mustEnv("API_HOST", "0.0.0.0"),
		APIPort:  mustEnv("API_PORT", "8000"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),
		LogFile:  mustEnv("LOG_FILE", ""),

		QiniuAccessKey:    mustEnv("QINIU_ACCESS_KEY", ""),
		QiniuSecretKey:    mustEnv("QINIU_SECRET_KEY", ""),
		QiniuBucket:       mustEnv("QINIU_BUCKET_NAME", ""),
		QiniuBucketDomain: mustEnv("QINIU_BUCKET_DOMAIN", ""),

		DashScopeAPIKey: firstEnv("DASHSCOPE_API_KEY", "ALIYUN_API_KEY"),
		DashScopeURL:    mustEnv("DASHSCOPE_BASE_URL", "https://dashscope.aliyuncs.com"),
		ASRModel:        mustEnv("ASR_MODEL", "sensevoice-v1"),
		ASRPollInterval: mustEnvDuration("ASR_POLL_INTERVAL", 2*time.Second),
		ASRWaitTimeout:  mustEnvDuration("ASR_WAIT_TIMEOUT", 15*time.Minute),

		YtdlpBin:        mustEnv("YTDLP_BIN", "yt-dlp"),
		StagingDir:      mustEnv("STAGING_DIR", "downloads_temp"),
		DownloadTimeout: mustEnvDuration("DOWNLOAD_TIMEOUT", 10*time.Minute),
	}
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

// mustEnvDuration accepts Go duration syntax and, for compatibility with
// older deployments, bare integer seconds.
func mustEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}
