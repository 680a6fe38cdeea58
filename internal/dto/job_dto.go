package dto

import (
	"github.com/fadilmartias/job-board/internal/classifier"
	"github.com/fadilmartias/job-board/internal/model"
)

// JobSubmissionDTO is the employer form posted to /employers.
type JobSubmissionDTO struct {
	Title       string `form:"title" json:"title"`
	Company     string `form:"company" json:"company"`
	Description string `form:"description" json:"description"`
}

// AddJobDTO is the confirmation form posted to /add_job. Ypred carries the
// suggested category label, or the one the employer picked instead.
type AddJobDTO struct {
	Title       string `form:"title" json:"title"`
	Company     string `form:"company" json:"company"`
	Description string `form:"description" json:"description"`
	Ypred       string `form:"ypred" json:"ypred"`
}

type SuggestionDTO struct {
	Index int    `json:"index"`
	Label string `json:"label"`
	Slug  string `json:"slug"`
}

type CategoryJobsDTO struct {
	Category classifier.Category `json:"category"`
	Jobs     []model.JobEntry    `json:"jobs"`
}
