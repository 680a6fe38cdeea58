package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"

	"github.com/fadilmartias/job-board/internal/classifier"
	"github.com/fadilmartias/job-board/internal/dto"
	"github.com/fadilmartias/job-board/internal/embedding"
	"github.com/fadilmartias/job-board/internal/model"
	"github.com/fadilmartias/job-board/internal/repository"
	"github.com/fadilmartias/job-board/internal/response"
	"github.com/fadilmartias/job-board/internal/view"
	"github.com/pgvector/pgvector-go"
)

// Renderer renders a named view, optionally inside a layout. It is satisfied
// by fiber view engines.
type Renderer interface {
	Render(out io.Writer, name string, binding interface{}, layout ...string) error
}

// JobUsecase holds the loaded models and the job store for the lifetime of
// the process. It is never mutated after construction.
type JobUsecase struct {
	vectorizer *embedding.Vectorizer
	classifier *classifier.Classifier
	store      repository.JobStore
	renderer   Renderer
}

func NewJobUsecase(vectorizer *embedding.Vectorizer, classifier *classifier.Classifier, store repository.JobStore, renderer Renderer) *JobUsecase {
	return &JobUsecase{vectorizer: vectorizer, classifier: classifier, store: store, renderer: renderer}
}

func (uc *JobUsecase) Categories() []classifier.Category {
	return uc.classifier.Categories().All()
}

// Suggest predicts the category of a posting from its title and description.
func (uc *JobUsecase) Suggest(title, description string) (classifier.Prediction, error) {
	features := uc.vectorizer.Vectorize(title, description)
	prediction, err := uc.classifier.Classify(features)
	if err != nil {
		return classifier.Prediction{}, fmt.Errorf("classify job: %w", err)
	}
	return prediction, nil
}

// AddJob renders the posting page and stores it under the category named by
// req.Ypred, which may be a label or a slug.
func (uc *JobUsecase) AddJob(ctx context.Context, req dto.AddJobDTO) (*model.JobPosting, classifier.Category, error) {
	category, err := uc.classifier.Categories().Resolve(req.Ypred)
	if err != nil {
		return nil, classifier.Category{}, err
	}

	var doc bytes.Buffer
	err = uc.renderer.Render(&doc, view.Job, map[string]any{
		"PageTitle":     req.Title,
		"Title":         req.Title,
		"Company":       req.Company,
		"Description":   req.Description,
		"CategoryLabel": category.Label,
	}, view.Layout)
	if err != nil {
		return nil, category, fmt.Errorf("render job document: %w", err)
	}

	posting := &model.JobPosting{
		Category:    category.Slug,
		Title:       req.Title,
		Company:     req.Company,
		Description: req.Description,
		Document:    doc.String(),
		Embedding:   pgvector.NewVector(uc.vectorizer.Vectorize(req.Title, req.Description)),
	}
	if err := uc.store.Save(ctx, posting); err != nil {
		return nil, category, fmt.Errorf("save job: %w", err)
	}
	log.Printf("Job %s added to %s", posting.WebIndex, category.Slug)
	return posting, category, nil
}

// LatestJobs returns the n newest postings of every category, in category order.
func (uc *JobUsecase) LatestJobs(ctx context.Context, n int) ([]dto.CategoryJobsDTO, error) {
	categories := uc.Categories()
	out := make([]dto.CategoryJobsDTO, 0, len(categories))
	for _, c := range categories {
		jobs, err := uc.store.Latest(ctx, c.Slug, n)
		if err != nil {
			return nil, fmt.Errorf("latest jobs for %s: %w", c.Slug, err)
		}
		out = append(out, dto.CategoryJobsDTO{Category: c, Jobs: jobs})
	}
	return out, nil
}

// ListJobs returns every posting of a category. Categories outside the set
// have no postings.
func (uc *JobUsecase) ListJobs(ctx context.Context, slug string) ([]model.JobEntry, error) {
	if _, ok := uc.classifier.Categories().BySlug(slug); !ok {
		return []model.JobEntry{}, nil
	}
	return uc.store.List(ctx, slug)
}

// ListJobsPage returns one page of a category's postings, newest first.
func (uc *JobUsecase) ListJobsPage(ctx context.Context, slug string, page, pageSize int) ([]model.JobEntry, response.Pagination, error) {
	if _, ok := uc.classifier.Categories().BySlug(slug); !ok {
		return []model.JobEntry{}, response.NewPagination(page, pageSize, 0), nil
	}
	all, err := uc.store.Latest(ctx, slug, -1)
	if err != nil {
		return nil, response.Pagination{}, err
	}
	p := response.NewPagination(page, pageSize, len(all))
	lo, hi := p.Bounds()
	return all[lo:hi], p, nil
}

func (uc *JobUsecase) GetJob(ctx context.Context, slug, webIndex string) (*model.JobPosting, error) {
	if _, ok := uc.classifier.Categories().BySlug(slug); !ok {
		return nil, repository.ErrJobNotFound
	}
	return uc.store.Get(ctx, slug, webIndex)
}
