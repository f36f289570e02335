package httpadapter

import "github.com/audioscribe/audioscribe/internal/core/domain"

// Request bodies keep the field names established by the service's original
// API so existing callers keep working. Verbose fields are accepted but do
// not change behavior; server logging is configured globally.

type downloadRequest struct {
	URL       string `json:"url"`
	OutputDir string `json:"output_dir"`
	Verbose   bool   `json:"verbose"`
}

type downloadResponse struct {
	Success  bool   `json:"success"`
	FilePath string `json:"file_path"`
}

type uploadRequest struct {
	FilePath       string `json:"file_path"`
	CustomFilename string `json:"custom_filename"`
	LinkExpires    int64  `json:"link_expires"`
	AccessKey      string `json:"access_key"`
	SecretKey      string `json:"secret_key"`
	BucketName     string `json:"bucket_name"`
	BucketDomain   string `json:"bucket_domain"`
}

func (q uploadRequest) credentials() domain.Credentials {
	return domain.Credentials{
		QiniuAccessKey:    q.AccessKey,
		QiniuSecretKey:    q.SecretKey,
		QiniuBucket:       q.BucketName,
		QiniuBucketDomain: q.BucketDomain,
	}
}

type recognizeRequest struct {
	FileURL  string `json:"file_url"`
	Language string `json:"language"`
	KeepTags bool   `json:"keep_tags"`
	APIKey   string `json:"api_key"`
	Verbose  bool   `json:"verbose"`
}

type processRequest struct {
	URL               string `json:"url"`
	OutputDir         string `json:"output_dir"`
	Language          string `json:"language"`
	KeepTags          bool   `json:"keep_tags"`
	LinkExpires       int64  `json:"link_expires"`
	Cleanup           *bool  `json:"cleanup"`
	Verbose           bool   `json:"verbose"`
	QiniuAccessKey    string `json:"qiniu_access_key"`
	QiniuSecretKey    string `json:"qiniu_secret_key"`
	QiniuBucketName   string `json:"qiniu_bucket_name"`
	QiniuBucketDomain string `json:"qiniu_bucket_domain"`
	AliyunAPIKey      string `json:"aliyun_api_key"`
}

// cleanup defaults to true when the field is absent from the body.
func (q processRequest) cleanup() bool {
	if q.Cleanup == nil {
		return true
	}
	return *q.Cleanup
}

func (q processRequest) credentials() domain.Credentials {
	return domain.Credentials{
		QiniuAccessKey:    q.QiniuAccessKey,
		QiniuSecretKey:    q.QiniuSecretKey,
		QiniuBucket:       q.QiniuBucketName,
		QiniuBucketDomain: q.QiniuBucketDomain,
		DashScopeAPIKey:   q.AliyunAPIKey,
	}
}

type textRequest struct {
	URL      string `json:"url"`
	Language string `json:"language"`
	KeepTags bool   `json:"keep_tags"`
}

type processFailureResponse struct {
	Error          string   `json:"error"`
	StepsCompleted []string `json:"steps_completed"`
}
