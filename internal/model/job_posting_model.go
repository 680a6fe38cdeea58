package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// JobPosting is an accepted job advert. Category and WebIndex together
// identify it; Document holds the rendered HTML page.
type JobPosting struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Category    string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_job_postings_category_web_index,priority:1" json:"category"`
	WebIndex    string          `gorm:"type:varchar(16);not null;uniqueIndex:idx_job_postings_category_web_index,priority:2" json:"web_index"`
	Title       string          `gorm:"type:text" json:"title"`
	Company     string          `gorm:"type:text" json:"company"`
	Description string          `gorm:"type:text" json:"description"`
	Document    string          `gorm:"type:text" json:"-"`
	Embedding   pgvector.Vector `gorm:"type:vector" json:"-"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (j *JobPosting) TableName() string {
	return "job_postings"
}

func (j *JobPosting) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}

func (j *JobPosting) Entry() JobEntry {
	return JobEntry{Category: j.Category, WebIndex: j.WebIndex, CreatedAt: j.CreatedAt}
}

// JobEntry is the listing view of a persisted posting.
type JobEntry struct {
	Category  string    `json:"category"`
	WebIndex  string    `json:"web_index"`
	CreatedAt time.Time `json:"created_at"`
}

func (e JobEntry) URL() string {
	return "/categories/" + e.Category + "/" + e.WebIndex
}
