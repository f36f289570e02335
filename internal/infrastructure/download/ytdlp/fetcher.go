package ytdlp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/audioscribe/audioscribe/internal/core/domain"
)

const killGracePeriod = 5 * time.Second

// Fetcher downloads the audio track of a media URL by shelling out to
// yt-dlp. The tool itself reports the extracted file path on stdout; a
// newest-file scan of the staging directory remains as a fallback for
// builds without the print hook.
type Fetcher struct {
	binary  string
	timeout time.Duration
}

func New(binary string, timeout time.Duration) *Fetcher {
	if binary == "" {
		binary = "yt-dlp"
	}
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &Fetcher{
		binary:  binary,
		timeout: timeout,
	}
}

func (f *Fetcher) Fetch(ctx context.Context, url, destDir string) (string, error) {
	if strings.TrimSpace(url) == "" {
		return "", domain.WrapError(domain.ErrDownloadFailed, "fetch audio", errors.New("url is empty"))
	}
	if destDir == "" {
		destDir = "."
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", domain.WrapError(domain.ErrDownloadFailed, "create staging dir", err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	args := []string{
		"-x",
		"--no-simulate",
		"--print", "after_move:filepath",
		"-o", filepath.Join(destDir, "%(title)s.%(ext)s"),
		url,
	}

	cmd := exec.CommandContext(ctx, f.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// Own process group so cancellation kills yt-dlp together with the
	// ffmpeg children it spawns for extraction.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGTERM)
	}
	cmd.WaitDelay = killGracePeriod

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", domain.WrapError(domain.ErrDownloadFailed, "run yt-dlp", ctx.Err())
		}
		exitCode := -1
		if cmd.ProcessState != nil {
			exitCode = cmd.ProcessState.ExitCode()
		}
		detail := stderrTail(stderr.Bytes())
		if detail == "" {
			detail = err.Error()
		}
		return "", domain.WrapError(domain.ErrDownloadFailed, "run yt-dlp",
			fmt.Errorf("exit code %d: %s", exitCode, detail))
	}

	if path := reportedPath(stdout.String()); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		slog.Warn("yt-dlp reported a missing output path, scanning staging dir", "path", path)
	}

	path, err := newestFile(destDir)
	if err != nil {
		return "", domain.WrapError(domain.ErrDownloadFailed, "locate output file", err)
	}
	return path, nil
}

// reportedPath extracts the last non-empty stdout line, the file path
// printed by --print after_move:filepath.
func reportedPath(out string) string {
	lines := strings.Split(out, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

func newestFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var newest string
	var newestMod time.Time
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestMod) {
			newest = filepath.Join(dir, entry.Name())
			newestMod = info.ModTime()
		}
	}
	if newest == "" {
		return "", errors.New("no files in staging directory")
	}
	return newest, nil
}

func stderrTail(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= 512 {
		return s
	}
	return "..." + s[len(s)-512:]
}
