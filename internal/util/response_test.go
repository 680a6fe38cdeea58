package util

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/fadilmartias/job-board/internal/response"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormErrorMessage(t *testing.T) {
	err := NewFormError("invalid job", map[string]string{"ypred": "is required", "title": "is required"})

	assert.Equal(t, "form error: invalid job (title is required, ypred is required)", err.Error())
	assert.Equal(t, "form error: empty", NewFormError("empty", nil).Error())
}

func TestSuccessResponse(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		p := response.NewPagination(1, 10, 1)
		return SuccessResponse(c, SuccessResponseFormat{Message: "ok", Data: []string{"a"}, Pagination: &p})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	var got map[string]any
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, true, got["success"])
	assert.Equal(t, "ok", got["message"])
	assert.NotNil(t, got["pagination"])
}

func TestErrorResponse(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return ErrorResponse(c, ErrorResponseFormat{Code: fiber.StatusBadRequest, Message: "bad"}, errors.New("boom"))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	var got OrderedErrorResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.False(t, got.Success)
	assert.Equal(t, "bad", got.Message)
}
