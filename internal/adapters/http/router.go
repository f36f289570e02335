package httpadapter

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/audioscribe/audioscribe/internal/core/domain"
	"github.com/audioscribe/audioscribe/internal/core/ports"
)

const serviceVersion = "1.0.0"

type Router struct {
	service ports.WorkflowService
}

func NewRouter(service ports.WorkflowService) *Router {
	return &Router{service: service}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", rt.index)
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/download", rt.download)
	mux.HandleFunc("/upload", rt.upload)
	mux.HandleFunc("/recognize", rt.recognize)
	mux.HandleFunc("/process", rt.process)
	mux.HandleFunc("/text", rt.text)
	return requestIDMiddleware(accessLogMiddleware(mux))
}

// index doubles as the catch-all route of the stdlib mux, so anything but
// the exact root path is a 404.
func (rt *Router) index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "audioscribe",
		"version": serviceVersion,
		"endpoints": map[string]string{
			"POST /download":  "download the audio track of a remote url",
			"POST /upload":    "stage a local file and sign a temporary link",
			"POST /recognize": "transcribe a staged audio url",
			"POST /process":   "run the full download-upload-recognize pipeline",
			"GET /text":       "run the full pipeline and return plain text",
		},
	})
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) download(w http.ResponseWriter, r *http.Request) {
	var req downloadRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "url is required"})
		return
	}

	path, err := rt.service.Download(r.Context(), req.URL, req.OutputDir)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, downloadResponse{Success: true, FilePath: path})
}

func (rt *Router) upload(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.FilePath) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file_path is required"})
		return
	}

	result, err := rt.service.Upload(r.Context(), domain.UploadRequest{
		FilePath:    req.FilePath,
		RemoteName:  req.CustomFilename,
		Expires:     req.LinkExpires,
		Credentials: req.credentials(),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) recognize(w http.ResponseWriter, r *http.Request) {
	var req recognizeRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.FileURL) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file_url is required"})
		return
	}

	recognition, err := rt.service.Recognize(r.Context(), domain.RecognizeRequest{
		FileURL:     req.FileURL,
		Language:    req.Language,
		KeepTags:    req.KeepTags,
		Credentials: domain.Credentials{DashScopeAPIKey: req.APIKey},
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recognition)
}

func (rt *Router) process(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "url is required"})
		return
	}

	result := rt.service.Process(r.Context(), domain.WorkflowRequest{
		URL:         req.URL,
		OutputDir:   req.OutputDir,
		Language:    req.Language,
		KeepTags:    req.KeepTags,
		LinkExpires: req.LinkExpires,
		Cleanup:     req.cleanup(),
		Credentials: req.credentials(),
	})
	if !result.Success {
		writeJSON(w, http.StatusInternalServerError, processFailureResponse{
			Error:          result.Error,
			StepsCompleted: result.StepsCompleted,
		})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// text runs the full pipeline but answers with the bare transcript, which
// keeps the endpoint usable from curl and shell pipelines.
func (rt *Router) text(w http.ResponseWriter, r *http.Request) {
	var (
		url      string
		language string
		keepTags bool
	)
	switch r.Method {
	case http.MethodGet:
		query := r.URL.Query()
		url = query.Get("url")
		language = query.Get("language")
		keepTags, _ = strconv.ParseBool(query.Get("keep_tags"))
	case http.MethodPost:
		var req textRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writePlainError(w, http.StatusBadRequest, "invalid json")
			return
		}
		url, language, keepTags = req.URL, req.Language, req.KeepTags
	default:
		writePlainError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if strings.TrimSpace(url) == "" {
		writePlainError(w, http.StatusBadRequest, "url is required")
		return
	}

	result := rt.service.Process(r.Context(), domain.WorkflowRequest{
		URL:      url,
		Language: language,
		KeepTags: keepTags,
		Cleanup:  true,
	})
	if !result.Success {
		writePlainError(w, http.StatusInternalServerError, result.Error)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, result.Text)
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return false
	}
	return true
}

func writeServiceError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writePlainError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, msg)
}
