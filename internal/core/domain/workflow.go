package domain

// Pipeline step names, recorded in the exact order they complete.
const (
	StepDownload     = "download"
	StepUpload       = "upload"
	StepRecognition  = "recognition"
	StepCloudCleanup = "cloud_cleanup"
	StepLocalCleanup = "local_cleanup"
)

const DefaultLinkExpires int64 = 3600

// Credentials carries provider settings a caller may override per request.
// Empty fields fall back to process-level configuration.
type Credentials struct {
	QiniuAccessKey    string
	QiniuSecretKey    string
	QiniuBucket       string
	QiniuBucketDomain string
	DashScopeAPIKey   string
}

// Merge layers non-empty override fields on top of the receiver.
func (c Credentials) Merge(override Credentials) Credentials {
	out := c
	if override.QiniuAccessKey != "" {
		out.QiniuAccessKey = override.QiniuAccessKey
	}
	if override.QiniuSecretKey != "" {
		out.QiniuSecretKey = override.QiniuSecretKey
	}
	if override.QiniuBucket != "" {
		out.QiniuBucket = override.QiniuBucket
	}
	if override.QiniuBucketDomain != "" {
		out.QiniuBucketDomain = override.QiniuBucketDomain
	}
	if override.DashScopeAPIKey != "" {
		out.DashScopeAPIKey = override.DashScopeAPIKey
	}
	return out
}

// WorkflowRequest describes one full download-upload-recognize run.
type WorkflowRequest struct {
	URL         string
	OutputDir   string
	Language    string
	KeepTags    bool
	LinkExpires int64
	Cleanup     bool
	SaveJSON    string
	Credentials Credentials
}

// UploadRequest describes a standalone staging upload.
type UploadRequest struct {
	FilePath    string
	RemoteName  string
	Expires     int64
	Credentials Credentials
}

// RecognizeRequest describes a standalone transcription of an audio URL.
type RecognizeRequest struct {
	FileURL     string
	Language    string
	KeepTags    bool
	Credentials Credentials
}

// UploadResult is what staging an object yields: a signed temporary link
// plus the remote key needed for later cleanup.
type UploadResult struct {
	DirectLink string `json:"direct_link"`
	FileKey    string `json:"file_key"`
	Hash       string `json:"hash"`
	Expires    int64  `json:"expires"`
}

// WorkflowResult is the full outcome of a run. Failed runs keep every field
// populated up to the step that failed; StepsCompleted never contains a step
// that did not finish.
type WorkflowResult struct {
	Success        bool          `json:"success"`
	StepsCompleted []string      `json:"steps_completed"`
	Error          string        `json:"error,omitempty"`
	AudioFile      string        `json:"audio_file,omitempty"`
	UploadResult   *UploadResult `json:"upload_result,omitempty"`
	DownloadURL    string        `json:"download_url,omitempty"`
	CloudFileKey   string        `json:"cloud_file_key,omitempty"`
	Recognition    *Recognition  `json:"recognition_result,omitempty"`
	Text           string        `json:"text"`
	OriginalText   string        `json:"original_text,omitempty"`
}
