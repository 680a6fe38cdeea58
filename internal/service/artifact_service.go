package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
)

type ArtifactServiceInterface interface {
	Ensure(ctx context.Context, path, url string) error
}

// ArtifactService fetches model artifacts that are missing on disk.
type ArtifactService struct {
	client *resty.Client
}

func NewArtifactService() *ArtifactService {
	client := resty.New().
		SetRetryCount(3).
		SetRetryWaitTime(time.Second).
		SetRetryMaxWaitTime(30 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() == 429 || r.StatusCode() >= 500
		})
	return &ArtifactService{client: client}
}

// Ensure makes sure path exists, downloading it from url when it does not.
// The download goes to a ".part" file first so a broken transfer never
// leaves a truncated artifact behind.
func (s *ArtifactService) Ensure(ctx context.Context, path, url string) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if url == "" {
		return fmt.Errorf("%s not found and no download URL configured", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	tmp := path + ".part"
	defer os.Remove(tmp)

	log.Printf("Downloading %s to %s", url, path)
	started := time.Now()
	resp, err := s.client.R().
		SetContext(ctx).
		SetOutput(tmp).
		Get(url)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	if resp.IsError() {
		return fmt.Errorf("download %s: unexpected status %s", url, resp.Status())
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("move artifact into place: %w", err)
	}
	log.Printf("Downloaded %s in %v", path, time.Since(started).Round(time.Millisecond))
	return nil
}
