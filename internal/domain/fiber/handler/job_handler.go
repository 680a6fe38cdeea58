package handler

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fadilmartias/job-board/internal/classifier"
	"github.com/fadilmartias/job-board/internal/dto"
	"github.com/fadilmartias/job-board/internal/middleware"
	"github.com/fadilmartias/job-board/internal/repository"
	"github.com/fadilmartias/job-board/internal/response"
	"github.com/fadilmartias/job-board/internal/usecase"
	"github.com/fadilmartias/job-board/internal/util"
	"github.com/fadilmartias/job-board/internal/view"
	"github.com/gofiber/fiber/v2"
)

const maxUploadSize = 5 * 1024 * 1024

// extractPDFText is swapped out in tests, which run without MuPDF documents.
var extractPDFText = util.ExtractPDFText

type JobHandler struct {
	uc          *usecase.JobUsecase
	latestCount int
}

func NewJobHandler(uc *usecase.JobUsecase, latestCount int) *JobHandler {
	return &JobHandler{uc: uc, latestCount: latestCount}
}

func (h *JobHandler) RegisterRoutes(app *fiber.App) {
	app.Get("/", h.Index)
	app.Get("/employers", h.EmployersForm)
	app.Post("/employers", middleware.RateLimiter(20, time.Minute), h.SuggestCategory)
	app.Post("/add_job", h.AddJob)
	app.Get("/categories", h.Categories)
	app.Get("/categories/:category", h.Category)
	app.Get("/categories/:category/:id", h.Job)

	api := app.Group("/api")
	api.Post("/suggest", middleware.RateLimiter(20, time.Minute), h.APISuggest)
	api.Get("/categories/:category", h.APICategory)
}

func (h *JobHandler) Index(c *fiber.Ctx) error {
	latest, err := h.uc.LatestJobs(c.UserContext(), h.latestCount)
	if err != nil {
		return err
	}
	return c.Render(view.Home, fiber.Map{"Latest": latest}, view.Layout)
}

func (h *JobHandler) EmployersForm(c *fiber.Ctx) error {
	return c.Render(view.Employers, h.employersBinding(dto.JobSubmissionDTO{}, "", ""), view.Layout)
}

// SuggestCategory classifies the submitted posting and shows the confirmation
// form. Absent fields are treated as empty text.
func (h *JobHandler) SuggestCategory(c *fiber.Ctx) error {
	req := dto.JobSubmissionDTO{
		Title:       c.FormValue("title"),
		Company:     c.FormValue("company"),
		Description: c.FormValue("description"),
	}

	uploaded, err := h.uploadedDescription(c)
	if err != nil {
		return err
	}
	switch {
	case uploaded == "":
	case strings.TrimSpace(req.Description) == "":
		req.Description = uploaded
	default:
		req.Description = req.Description + "\n\n" + uploaded
	}

	prediction, err := h.uc.Suggest(req.Title, req.Description)
	if err != nil {
		return err
	}
	message := fmt.Sprintf("The suggested category of this job is %s.", prediction.Category.Label)
	return c.Render(view.Employers, h.employersBinding(req, message, prediction.Category.Label), view.Layout)
}

// AddJob stores the confirmed posting. Every field must be present and ypred
// must name a known category.
func (h *JobHandler) AddJob(c *fiber.Ctx) error {
	values := make(map[string]string, 4)
	missing := map[string]string{}
	for _, field := range []string{"title", "company", "description", "ypred"} {
		v, ok := formValue(c, field)
		if !ok {
			missing[field] = "is required"
		}
		values[field] = v
	}
	if len(missing) > 0 {
		return util.NewFormError("missing job fields", missing)
	}

	req := dto.AddJobDTO{
		Title:       values["title"],
		Company:     values["company"],
		Description: values["description"],
		Ypred:       values["ypred"],
	}
	posting, category, err := h.uc.AddJob(c.UserContext(), req)
	if errors.Is(err, classifier.ErrUnknownCategory) {
		return util.NewFormError("invalid job category", map[string]string{"ypred": "is not a known category"})
	}
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).Render(view.JobAdded, fiber.Map{
		"PageTitle": "Job added",
		"URL":       posting.Entry().URL(),
		"Category":  category,
	}, view.Layout)
}

func (h *JobHandler) Categories(c *fiber.Ctx) error {
	return c.Render(view.Categories, fiber.Map{
		"PageTitle":  "Categories",
		"Categories": h.uc.Categories(),
	}, view.Layout)
}

// Category lists every posting of a category. Unknown categories render an
// empty listing.
func (h *JobHandler) Category(c *fiber.Ctx) error {
	slug := c.Params("category")
	jobs, err := h.uc.ListJobs(c.UserContext(), slug)
	if err != nil {
		return err
	}
	heading := slug
	for _, category := range h.uc.Categories() {
		if category.Slug == slug {
			heading = category.Label
		}
	}
	return c.Render(view.Category, fiber.Map{
		"PageTitle": heading,
		"Heading":   heading,
		"Jobs":      jobs,
	}, view.Layout)
}

func (h *JobHandler) Job(c *fiber.Ctx) error {
	posting, err := h.uc.GetJob(c.UserContext(), c.Params("category"), c.Params("id"))
	if errors.Is(err, repository.ErrJobNotFound) {
		return fiber.ErrNotFound
	}
	if err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return c.SendString(posting.Document)
}

func (h *JobHandler) APISuggest(c *fiber.Ctx) error {
	var req dto.JobSubmissionDTO
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
		}, err)
	}
	prediction, err := h.uc.Suggest(req.Title, req.Description)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to suggest category",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success suggest category",
		Data: dto.SuggestionDTO{
			Index: prediction.Index,
			Label: prediction.Category.Label,
			Slug:  prediction.Category.Slug,
		},
	})
}

func (h *JobHandler) APICategory(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	pageSize := min(c.QueryInt("page_size", response.DefaultPageSize), response.MaxPageSize)
	jobs, pagination, err := h.uc.ListJobsPage(c.UserContext(), c.Params("category"), page, pageSize)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to list jobs",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message:    "Success list jobs",
		Data:       jobs,
		Pagination: &pagination,
	})
}

func (h *JobHandler) employersBinding(req dto.JobSubmissionDTO, message, ypred string) fiber.Map {
	return fiber.Map{
		"PageTitle":        "Employers",
		"PredictedMessage": message,
		"Title":            req.Title,
		"Company":          req.Company,
		"Description":      req.Description,
		"Ypred":            ypred,
		"Categories":       h.uc.Categories(),
	}
}

// uploadedDescription extracts the text of an optional PDF upload.
func (h *JobHandler) uploadedDescription(c *fiber.Ctx) (string, error) {
	file, err := c.FormFile("description_file")
	if err != nil || file.Size == 0 {
		return "", nil
	}
	if file.Size > maxUploadSize {
		return "", fiber.NewError(fiber.StatusRequestEntityTooLarge, "description file is too large (max 5MB)")
	}
	if !strings.EqualFold(filepath.Ext(file.Filename), ".pdf") {
		return "", fiber.NewError(fiber.StatusBadRequest, "description file must be a PDF")
	}

	tmp, err := os.CreateTemp("", "job-description-*.pdf")
	if err != nil {
		return "", err
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := c.SaveFile(file, tmpPath); err != nil {
		return "", fmt.Errorf("cannot save description file: %w", err)
	}
	text, err := extractPDFText(tmpPath)
	if err != nil {
		log.Printf("PDF extraction failed for %s: %v", file.Filename, err)
		return "", fiber.NewError(fiber.StatusUnprocessableEntity, "could not read text from the description file")
	}
	return text, nil
}

// formValue reports whether key was sent at all, which FormValue cannot
// distinguish from an empty value.
func formValue(c *fiber.Ctx, key string) (string, bool) {
	if form, err := c.MultipartForm(); err == nil {
		v, ok := form.Value[key]
		if !ok || len(v) == 0 {
			return "", false
		}
		return v[0], true
	}
	args := c.Request().PostArgs()
	if !args.Has(key) {
		return "", false
	}
	return string(args.Peek(key)), true
}
