package qiniu

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/qiniu/go-sdk/v7/auth/qbox"
	"github.com/qiniu/go-sdk/v7/storage"

	"github.com/audioscribe/audioscribe/internal/core/domain"
	"github.com/audioscribe/audioscribe/internal/infrastructure/resilience"
)

// Upload tokens are short-lived; each Upload call mints a fresh one.
const uploadTokenTTL = 3600

// Store stages audio files in a Qiniu bucket and signs short-lived private
// download links for them. Keys carry a unix-timestamp prefix so repeated
// uploads of the same file never collide.
type Store struct {
	bucket     string
	linkDomain string
	mac        *qbox.Mac
	guard      *resilience.Guard
	cfg        storage.Config
}

func NewStore(creds domain.Credentials, guard *resilience.Guard) (*Store, error) {
	var missing []string
	if creds.QiniuAccessKey == "" {
		missing = append(missing, "access key")
	}
	if creds.QiniuSecretKey == "" {
		missing = append(missing, "secret key")
	}
	if creds.QiniuBucket == "" {
		missing = append(missing, "bucket name")
	}
	if creds.QiniuBucketDomain == "" {
		missing = append(missing, "bucket domain")
	}
	if len(missing) > 0 {
		return nil, domain.WrapError(domain.ErrConfiguration, "build object store",
			fmt.Errorf("qiniu credentials missing: %s", strings.Join(missing, ", ")))
	}
	if guard == nil {
		guard = resilience.NewGuard(resilience.DefaultConfig())
	}
	return &Store{
		bucket:     creds.QiniuBucket,
		linkDomain: normalizeDomain(creds.QiniuBucketDomain),
		mac:        qbox.NewMac(creds.QiniuAccessKey, creds.QiniuSecretKey),
		guard:      guard,
	}, nil
}

func (s *Store) Upload(ctx context.Context, localPath, remoteName string, expires int64) (domain.UploadResult, error) {
	info, err := os.Stat(localPath)
	if err != nil || info.IsDir() {
		return domain.UploadResult{}, domain.WrapError(domain.ErrFileNotFound, "stage audio",
			fmt.Errorf("local file %q", localPath))
	}
	if remoteName == "" {
		remoteName = filepath.Base(localPath)
	}
	if expires <= 0 {
		expires = domain.DefaultLinkExpires
	}

	key := objectKey(remoteName)
	policy := storage.PutPolicy{
		Scope:   fmt.Sprintf("%s:%s", s.bucket, key),
		Expires: uploadTokenTTL,
	}
	token := policy.UploadToken(s.mac)
	uploader := storage.NewFormUploader(&s.cfg)

	var ret storage.PutRet
	err = s.guard.Execute(ctx, "qiniu_upload", func(ctx context.Context) error {
		return uploader.PutFile(ctx, &ret, token, key, localPath, nil)
	}, classifyStorageError)
	if err != nil {
		return domain.UploadResult{}, domain.WrapError(domain.ErrUploadFailed, "stage audio", err)
	}

	deadline := time.Now().Unix() + expires
	link := storage.MakePrivateURL(s.mac, s.linkDomain, key, deadline)

	return domain.UploadResult{
		DirectLink: link,
		FileKey:    key,
		Hash:       ret.Hash,
		Expires:    expires,
	}, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if key == "" {
		return domain.WrapError(domain.ErrUploadFailed, "delete staged object", errors.New("object key is empty"))
	}

	manager := storage.NewBucketManager(s.mac, &s.cfg)
	err := s.guard.Execute(ctx, "qiniu_delete", func(context.Context) error {
		return manager.Delete(s.bucket, key)
	}, classifyStorageError)
	if err != nil {
		return domain.WrapError(domain.ErrUploadFailed, "delete staged object", err)
	}
	return nil
}

func objectKey(remoteName string) string {
	return fmt.Sprintf("%d_%s", time.Now().Unix(), remoteName)
}

// normalizeDomain accepts bucket domains with or without a scheme; signed
// link generation needs a full base URL.
func normalizeDomain(d string) string {
	d = strings.TrimRight(strings.TrimSpace(d), "/")
	if !strings.HasPrefix(d, "http://") && !strings.HasPrefix(d, "https://") {
		d = "http://" + d
	}
	return d
}

func classifyStorageError(err error) resilience.ErrorClassification {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{RecordFailure: false}
	}
	return resilience.ErrorClassification{RecordFailure: true}
}
