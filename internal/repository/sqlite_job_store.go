package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fadilmartias/job-board/internal/model"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS job_postings (
	category    TEXT    NOT NULL,
	web_index   TEXT    NOT NULL,
	title       TEXT    NOT NULL,
	company     TEXT    NOT NULL,
	description TEXT    NOT NULL,
	document    TEXT    NOT NULL,
	created_at  INTEGER NOT NULL,
	PRIMARY KEY (category, web_index)
);
CREATE INDEX IF NOT EXISTS idx_job_postings_created_at ON job_postings (category, created_at DESC);
`

// SQLiteJobStore keeps postings in a single sqlite table.
type SQLiteJobStore struct {
	db *sql.DB
}

func OpenSQLiteJobStore(dbPath string) (*SQLiteJobStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return &SQLiteJobStore{db: db}, nil
}

func (s *SQLiteJobStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteJobStore) Save(ctx context.Context, posting *model.JobPosting) error {
	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		id := newWebIndex()
		now := time.Now()
		result, err := s.db.ExecContext(ctx, `
			INSERT OR IGNORE INTO job_postings
				(category, web_index, title, company, description, document, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, posting.Category, id, posting.Title, posting.Company, posting.Description, posting.Document, now.UnixNano())
		if err != nil {
			return fmt.Errorf("insert job: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			continue
		}
		posting.WebIndex = id
		posting.CreatedAt = now
		return nil
	}
	return ErrWebIndexExhausted
}

func (s *SQLiteJobStore) Get(ctx context.Context, category, webIndex string) (*model.JobPosting, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT title, company, description, document, created_at
		FROM job_postings
		WHERE category = ? AND web_index = ?
	`, category, webIndex)

	posting := &model.JobPosting{Category: category, WebIndex: webIndex}
	var createdAt int64
	err := row.Scan(&posting.Title, &posting.Company, &posting.Description, &posting.Document, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	posting.CreatedAt = time.Unix(0, createdAt)
	return posting, nil
}

func (s *SQLiteJobStore) List(ctx context.Context, category string) ([]model.JobEntry, error) {
	return s.query(ctx, `
		SELECT web_index, created_at FROM job_postings WHERE category = ?
	`, category)
}

func (s *SQLiteJobStore) Latest(ctx context.Context, category string, n int) ([]model.JobEntry, error) {
	return s.query(ctx, `
		SELECT web_index, created_at FROM job_postings
		WHERE category = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, category, n)
}

func (s *SQLiteJobStore) query(ctx context.Context, query string, category string, args ...any) ([]model.JobEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, append([]any{category}, args...)...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	entries := []model.JobEntry{}
	for rows.Next() {
		var webIndex string
		var createdAt int64
		if err := rows.Scan(&webIndex, &createdAt); err != nil {
			return nil, err
		}
		entries = append(entries, model.JobEntry{
			Category:  category,
			WebIndex:  webIndex,
			CreatedAt: time.Unix(0, createdAt),
		})
	}
	return entries, rows.Err()
}
