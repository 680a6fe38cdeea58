package handler

import (
	"errors"
	"log"
	"strings"

	"github.com/fadilmartias/job-board/internal/config"
	"github.com/fadilmartias/job-board/internal/util"
	"github.com/fadilmartias/job-board/internal/view"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandler renders the HTML error pages, or the JSON error envelope for
// /api routes.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"
	var details any

	var e *fiber.Error
	var formErr *util.FormError
	switch {
	case errors.As(err, &formErr):
		code = fiber.StatusBadRequest
		message = formErr.Message
		details = formErr.Errors
	case errors.As(err, &e):
		code = e.Code
		message = e.Message
	default:
		log.Printf("Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
		if !config.LoadAppConfig().IsProduction() {
			message = err.Error()
		}
	}

	if strings.HasPrefix(c.Path(), "/api/") {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    code,
			Message: message,
			Details: details,
		}, err)
	}

	name := view.Internal
	if code == fiber.StatusNotFound {
		name = view.NotFound
	}
	c.Status(code)
	if renderErr := c.Render(name, fiber.Map{
		"PageTitle": message,
		"Code":      code,
		"Message":   message,
		"Details":   details,
	}, view.Layout); renderErr != nil {
		log.Printf("Could not render %s page: %v", name, renderErr)
		return c.Status(code).SendString(message)
	}
	return nil
}
