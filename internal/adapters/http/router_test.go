package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/audioscribe/audioscribe/internal/core/domain"
)

type serviceFake struct {
	downloadPath  string
	downloadErr   error
	uploadResult  domain.UploadResult
	uploadErr     error
	recognition   *domain.Recognition
	recognizeErr  error
	processResult domain.WorkflowResult

	lastURL       string
	lastOutputDir string
	lastUpload    domain.UploadRequest
	lastRecognize domain.RecognizeRequest
	lastProcess   domain.WorkflowRequest
}

func (f *serviceFake) Download(_ context.Context, url, outputDir string) (string, error) {
	f.lastURL = url
	f.lastOutputDir = outputDir
	if f.downloadErr != nil {
		return "", f.downloadErr
	}
	return f.downloadPath, nil
}

func (f *serviceFake) Upload(_ context.Context, req domain.UploadRequest) (domain.UploadResult, error) {
	f.lastUpload = req
	if f.uploadErr != nil {
		return domain.UploadResult{}, f.uploadErr
	}
	return f.uploadResult, nil
}

func (f *serviceFake) Recognize(_ context.Context, req domain.RecognizeRequest) (*domain.Recognition, error) {
	f.lastRecognize = req
	if f.recognizeErr != nil {
		return nil, f.recognizeErr
	}
	return f.recognition, nil
}

func (f *serviceFake) Process(_ context.Context, req domain.WorkflowRequest) domain.WorkflowResult {
	f.lastProcess = req
	return f.processResult
}

func doRequest(t *testing.T, handler http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()

	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestIndexListsEndpoints(t *testing.T) {
	handler := NewRouter(&serviceFake{}).Handler()

	rec := doRequest(t, handler, http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET / status = %d", rec.Code)
	}

	var body struct {
		Service   string            `json:"service"`
		Version   string            `json:"version"`
		Endpoints map[string]string `json:"endpoints"`
	}
	decodeJSON(t, rec, &body)
	if body.Service != "audioscribe" {
		t.Fatalf("service = %q", body.Service)
	}
	if len(body.Endpoints) == 0 {
		t.Fatal("endpoints listing empty")
	}
}

func TestUnknownRouteReturns404(t *testing.T) {
	handler := NewRouter(&serviceFake{}).Handler()

	rec := doRequest(t, handler, http.MethodGet, "/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("GET /nope status = %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	handler := NewRouter(&serviceFake{}).Handler()

	rec := doRequest(t, handler, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /healthz status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("GET /healthz body = %q", rec.Body.String())
	}
}

func TestDownloadEndpoint(t *testing.T) {
	service := &serviceFake{downloadPath: "/stage/episode.mp3"}
	handler := NewRouter(service).Handler()

	rec := doRequest(t, handler, http.MethodPost, "/download", map[string]any{
		"url":        "https://example.com/watch?v=abc",
		"output_dir": "/stage",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /download status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var body downloadResponse
	decodeJSON(t, rec, &body)
	if !body.Success || body.FilePath != "/stage/episode.mp3" {
		t.Fatalf("POST /download body = %+v", body)
	}
	if service.lastURL != "https://example.com/watch?v=abc" || service.lastOutputDir != "/stage" {
		t.Fatalf("service received url=%q dir=%q", service.lastURL, service.lastOutputDir)
	}
}

func TestDownloadValidation(t *testing.T) {
	handler := NewRouter(&serviceFake{}).Handler()

	rec := doRequest(t, handler, http.MethodPost, "/download", map[string]any{"output_dir": "/stage"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing url status = %d", rec.Code)
	}

	rec = doRequest(t, handler, http.MethodGet, "/download", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET /download status = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/download", strings.NewReader("{nope"))
	raw := httptest.NewRecorder()
	handler.ServeHTTP(raw, req)
	if raw.Code != http.StatusBadRequest {
		t.Fatalf("malformed json status = %d", raw.Code)
	}
}

func TestDownloadErrorMapsTo500(t *testing.T) {
	service := &serviceFake{
		downloadErr: domain.WrapError(domain.ErrDownloadFailed, "run yt-dlp", io.ErrUnexpectedEOF),
	}
	handler := NewRouter(service).Handler()

	rec := doRequest(t, handler, http.MethodPost, "/download", map[string]any{"url": "https://example.com/a"})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("failed download status = %d", rec.Code)
	}
	var body map[string]string
	decodeJSON(t, rec, &body)
	if body["error"] == "" {
		t.Fatal("error body missing")
	}
}

func TestUploadEndpoint(t *testing.T) {
	service := &serviceFake{uploadResult: domain.UploadResult{
		DirectLink: "http://cdn.example.com/123_a.mp3?sign=x",
		FileKey:    "123_a.mp3",
		Hash:       "Fh8x",
		Expires:    7200,
	}}
	handler := NewRouter(service).Handler()

	rec := doRequest(t, handler, http.MethodPost, "/upload", map[string]any{
		"file_path":       "/tmp/a.mp3",
		"custom_filename": "a.mp3",
		"link_expires":    7200,
		"access_key":      "ak",
		"secret_key":      "sk",
		"bucket_name":     "bucket",
		"bucket_domain":   "cdn.example.com",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /upload status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var body domain.UploadResult
	decodeJSON(t, rec, &body)
	if body.DirectLink == "" || body.FileKey != "123_a.mp3" {
		t.Fatalf("POST /upload body = %+v", body)
	}

	if service.lastUpload.FilePath != "/tmp/a.mp3" || service.lastUpload.RemoteName != "a.mp3" {
		t.Fatalf("service received %+v", service.lastUpload)
	}
	if service.lastUpload.Expires != 7200 {
		t.Fatalf("service received expires = %d", service.lastUpload.Expires)
	}
	creds := service.lastUpload.Credentials
	if creds.QiniuAccessKey != "ak" || creds.QiniuBucket != "bucket" || creds.QiniuBucketDomain != "cdn.example.com" {
		t.Fatalf("service received credentials %+v", creds)
	}
}

func TestUploadErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "incomplete config",
			err:  domain.WrapError(domain.ErrConfiguration, "build object store", io.ErrUnexpectedEOF),
			want: http.StatusBadRequest,
		},
		{
			name: "missing file",
			err:  domain.WrapError(domain.ErrFileNotFound, "stage audio", io.ErrUnexpectedEOF),
			want: http.StatusNotFound,
		},
		{
			name: "provider failure",
			err:  domain.WrapError(domain.ErrUploadFailed, "stage audio", io.ErrUnexpectedEOF),
			want: http.StatusInternalServerError,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewRouter(&serviceFake{uploadErr: tc.err}).Handler()
			rec := doRequest(t, handler, http.MethodPost, "/upload", map[string]any{"file_path": "/tmp/a.mp3"})
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestUploadRequiresFilePath(t *testing.T) {
	handler := NewRouter(&serviceFake{}).Handler()

	rec := doRequest(t, handler, http.MethodPost, "/upload", map[string]any{"custom_filename": "a.mp3"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing file_path status = %d", rec.Code)
	}
}

func TestRecognizeEndpoint(t *testing.T) {
	service := &serviceFake{recognition: &domain.Recognition{Text: "hello", OriginalText: "<s>hello"}}
	handler := NewRouter(service).Handler()

	rec := doRequest(t, handler, http.MethodPost, "/recognize", map[string]any{
		"file_url":  "http://cdn.example.com/a.mp3",
		"language":  "zh",
		"keep_tags": true,
		"api_key":   "sk-123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /recognize status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var body domain.Recognition
	decodeJSON(t, rec, &body)
	if body.Text != "hello" {
		t.Fatalf("POST /recognize body = %+v", body)
	}

	got := service.lastRecognize
	if got.FileURL != "http://cdn.example.com/a.mp3" || got.Language != "zh" || !got.KeepTags {
		t.Fatalf("service received %+v", got)
	}
	if got.Credentials.DashScopeAPIKey != "sk-123" {
		t.Fatalf("service received api key %q", got.Credentials.DashScopeAPIKey)
	}
}

func TestRecognizeRequiresFileURL(t *testing.T) {
	handler := NewRouter(&serviceFake{}).Handler()

	rec := doRequest(t, handler, http.MethodPost, "/recognize", map[string]any{"language": "zh"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing file_url status = %d", rec.Code)
	}
}

func TestProcessEndpointSuccess(t *testing.T) {
	service := &serviceFake{processResult: domain.WorkflowResult{
		Success:        true,
		StepsCompleted: []string{domain.StepDownload, domain.StepUpload, domain.StepRecognition},
		Text:           "hello world",
	}}
	handler := NewRouter(service).Handler()

	rec := doRequest(t, handler, http.MethodPost, "/process", map[string]any{
		"url":              "https://example.com/a",
		"language":         "en",
		"link_expires":     7200,
		"qiniu_access_key": "ak",
		"aliyun_api_key":   "sk-123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /process status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var body domain.WorkflowResult
	decodeJSON(t, rec, &body)
	if !body.Success || body.Text != "hello world" || len(body.StepsCompleted) != 3 {
		t.Fatalf("POST /process body = %+v", body)
	}

	got := service.lastProcess
	if !got.Cleanup {
		t.Fatal("cleanup should default to true")
	}
	if got.Language != "en" || got.LinkExpires != 7200 {
		t.Fatalf("service received %+v", got)
	}
	if got.Credentials.QiniuAccessKey != "ak" || got.Credentials.DashScopeAPIKey != "sk-123" {
		t.Fatalf("service received credentials %+v", got.Credentials)
	}
}

func TestProcessHonorsCleanupFalse(t *testing.T) {
	service := &serviceFake{processResult: domain.WorkflowResult{Success: true, StepsCompleted: []string{}}}
	handler := NewRouter(service).Handler()

	doRequest(t, handler, http.MethodPost, "/process", map[string]any{
		"url":     "https://example.com/a",
		"cleanup": false,
	})
	if service.lastProcess.Cleanup {
		t.Fatal("cleanup=false was not honored")
	}
}

func TestProcessFailureReturns500(t *testing.T) {
	service := &serviceFake{processResult: domain.WorkflowResult{
		StepsCompleted: []string{domain.StepDownload},
		Error:          "upload failed: bucket rejected upload",
	}}
	handler := NewRouter(service).Handler()

	rec := doRequest(t, handler, http.MethodPost, "/process", map[string]any{"url": "https://example.com/a"})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("failed run status = %d", rec.Code)
	}

	var body processFailureResponse
	decodeJSON(t, rec, &body)
	if body.Error != "upload failed: bucket rejected upload" {
		t.Fatalf("failure body = %+v", body)
	}
	if len(body.StepsCompleted) != 1 || body.StepsCompleted[0] != domain.StepDownload {
		t.Fatalf("failure steps = %v", body.StepsCompleted)
	}
}

func TestTextEndpointGet(t *testing.T) {
	service := &serviceFake{processResult: domain.WorkflowResult{Success: true, Text: "hello world"}}
	handler := NewRouter(service).Handler()

	rec := doRequest(t, handler, http.MethodGet,
		"/text?url=https%3A%2F%2Fexample.com%2Fa&language=zh&keep_tags=true", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /text status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/plain") {
		t.Fatalf("GET /text content type = %q", got)
	}
	if rec.Body.String() != "hello world" {
		t.Fatalf("GET /text body = %q", rec.Body.String())
	}

	got := service.lastProcess
	if got.URL != "https://example.com/a" || got.Language != "zh" || !got.KeepTags {
		t.Fatalf("service received %+v", got)
	}
	if !got.Cleanup {
		t.Fatal("text endpoint must clean up after itself")
	}
}

func TestTextEndpointPost(t *testing.T) {
	service := &serviceFake{processResult: domain.WorkflowResult{Success: true, Text: "hi"}}
	handler := NewRouter(service).Handler()

	rec := doRequest(t, handler, http.MethodPost, "/text", map[string]any{"url": "https://example.com/a"})
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /text status = %d", rec.Code)
	}
	if rec.Body.String() != "hi" {
		t.Fatalf("POST /text body = %q", rec.Body.String())
	}
}

func TestTextEndpointFailure(t *testing.T) {
	service := &serviceFake{processResult: domain.WorkflowResult{
		StepsCompleted: []string{},
		Error:          "download failed: no formats found",
	}}
	handler := NewRouter(service).Handler()

	rec := doRequest(t, handler, http.MethodGet, "/text?url=https%3A%2F%2Fexample.com%2Fa", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("failed /text status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/plain") {
		t.Fatalf("failed /text content type = %q", got)
	}
	if rec.Body.String() != "download failed: no formats found" {
		t.Fatalf("failed /text body = %q", rec.Body.String())
	}
}

func TestTextEndpointValidation(t *testing.T) {
	handler := NewRouter(&serviceFake{}).Handler()

	rec := doRequest(t, handler, http.MethodGet, "/text", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing url status = %d", rec.Code)
	}

	rec = doRequest(t, handler, http.MethodDelete, "/text", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("DELETE /text status = %d", rec.Code)
	}
}

func TestRequestIDEcho(t *testing.T) {
	handler := NewRouter(&serviceFake{}).Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-Id"); got != "req-123" {
		t.Fatalf("request id echo = %q", got)
	}

	rec = doRequest(t, handler, http.MethodGet, "/healthz", nil)
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatal("request id not generated")
	}
}
