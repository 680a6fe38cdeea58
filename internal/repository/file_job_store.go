package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fadilmartias/job-board/internal/model"
)

const documentExt = ".html"

// FileJobStore keeps one HTML document per posting under
// <root>/<category>/<web index>.html.
type FileJobStore struct {
	root string
}

func NewFileJobStore(root string) (*FileJobStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create jobs dir: %w", err)
	}
	return &FileJobStore{root: root}, nil
}

func (s *FileJobStore) Save(ctx context.Context, posting *model.JobPosting) error {
	if !validCategory(posting.Category) {
		return fmt.Errorf("invalid category %q", posting.Category)
	}
	dir := filepath.Join(s.root, posting.Category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create category dir: %w", err)
	}

	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		id := newWebIndex()
		path := filepath.Join(dir, id+documentExt)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("create job document: %w", err)
		}
		_, err = f.WriteString(posting.Document)
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			_ = os.Remove(path)
			return fmt.Errorf("write job document: %w", err)
		}
		posting.WebIndex = id
		posting.CreatedAt = time.Now()
		return nil
	}
	return ErrWebIndexExhausted
}

func (s *FileJobStore) Get(ctx context.Context, category, webIndex string) (*model.JobPosting, error) {
	if !validCategory(category) || !validWebIndex(webIndex) {
		return nil, ErrJobNotFound
	}
	path := filepath.Join(s.root, category, webIndex+documentExt)
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("stat job document: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job document: %w", err)
	}
	return &model.JobPosting{
		Category:  category,
		WebIndex:  webIndex,
		Document:  string(data),
		CreatedAt: info.ModTime(),
	}, nil
}

func (s *FileJobStore) List(ctx context.Context, category string) ([]model.JobEntry, error) {
	if !validCategory(category) {
		return []model.JobEntry{}, nil
	}
	dirEntries, err := os.ReadDir(filepath.Join(s.root, category))
	if errors.Is(err, fs.ErrNotExist) {
		return []model.JobEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list category %s: %w", category, err)
	}

	entries := make([]model.JobEntry, 0, len(dirEntries))
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() || !strings.HasSuffix(name, documentExt) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}
		entries = append(entries, model.JobEntry{
			Category:  category,
			WebIndex:  strings.TrimSuffix(name, documentExt),
			CreatedAt: info.ModTime(),
		})
	}
	return entries, nil
}

func (s *FileJobStore) Latest(ctx context.Context, category string, n int) ([]model.JobEntry, error) {
	entries, err := s.List(ctx, category)
	if err != nil {
		return nil, err
	}
	return newest(entries, n), nil
}
