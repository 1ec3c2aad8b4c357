package zoom

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/consult-review/internal/domain/entities"
	"github.com/johnquangdev/consult-review/pkg/jobcontext"
)

// Downloader streams recording artifacts into scratch files
type Downloader struct {
	client      *http.Client
	credentials CredentialProvider
	tempDir     string
	retry       jobcontext.RetryPolicy
	logger      *zap.Logger
}

// NewDownloader creates a downloader. An empty tempDir uses os.TempDir.
func NewDownloader(credentials CredentialProvider, tempDir string, timeout time.Duration, retry jobcontext.RetryPolicy, logger *zap.Logger) *Downloader {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Downloader{
		client:      &http.Client{Timeout: timeout},
		credentials: credentials,
		tempDir:     tempDir,
		retry:       retry,
		logger:      logger,
	}
}

// Fetch downloads ref. Transient failures are retried; the caller removes
// the returned file.
func (d *Downloader) Fetch(ctx context.Context, ref entities.DownloadReference) (*entities.Artifact, error) {
	if ref.URL == "" {
		return nil, entities.ErrMissingDownloadURL
	}
	token, err := d.credentials.Token(ctx, ref)
	if err != nil {
		return nil, err
	}

	attempt := 0
	return jobcontext.RetryWithResult(ctx, d.retry, func() (*entities.Artifact, error) {
		attempt++
		artifact, err := d.fetchOnce(ctx, ref, token)
		if err != nil {
			d.logger.Warn("⚠️ Download attempt failed",
				zap.Int("attempt", attempt),
				zap.String("file_type", string(ref.FileType)),
				zap.Error(err),
			)
		}
		return artifact, err
	})
}

func (d *Downloader) fetchOnce(ctx context.Context, ref entities.DownloadReference, token string) (*entities.Artifact, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download recording: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, jobcontext.NewStatusError("zoom", resp.StatusCode, fmt.Errorf("%s", body))
	}

	f, err := os.CreateTemp(d.tempDir, "recording-*"+ref.Extension())
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch file: %w", err)
	}
	size, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(f.Name())
		return nil, fmt.Errorf("failed to write recording: %w", err)
	}

	return &entities.Artifact{Path: f.Name(), Size: size, FileType: ref.FileType}, nil
}
