package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/fadilmartias/job-board/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// JobRepository is the postgres JobStore. The document vector of every
// posting is kept in a pgvector column next to the rendered page.
type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db}
}

func (r *JobRepository) Save(ctx context.Context, posting *model.JobPosting) error {
	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		posting.WebIndex = newWebIndex()
		result := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(posting)
		if result.Error != nil {
			return fmt.Errorf("create job: %w", result.Error)
		}
		if result.RowsAffected == 1 {
			return nil
		}
	}
	posting.WebIndex = ""
	return ErrWebIndexExhausted
}

func (r *JobRepository) Get(ctx context.Context, category, webIndex string) (*model.JobPosting, error) {
	var j model.JobPosting
	err := r.db.WithContext(ctx).
		First(&j, "category = ? AND web_index = ?", category, webIndex).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &j, nil
}

func (r *JobRepository) List(ctx context.Context, category string) ([]model.JobEntry, error) {
	var jobs []model.JobPosting
	err := r.db.WithContext(ctx).
		Select("category", "web_index", "created_at").
		Where("category = ?", category).
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return entries(jobs), nil
}

func (r *JobRepository) Latest(ctx context.Context, category string, n int) ([]model.JobEntry, error) {
	var jobs []model.JobPosting
	err := r.db.WithContext(ctx).
		Select("category", "web_index", "created_at").
		Where("category = ?", category).
		Order("created_at DESC").
		Limit(n).
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("latest jobs: %w", err)
	}
	return entries(jobs), nil
}

func entries(jobs []model.JobPosting) []model.JobEntry {
	out := make([]model.JobEntry, len(jobs))
	for i := range jobs {
		out[i] = jobs[i].Entry()
	}
	return out
}
