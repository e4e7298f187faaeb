package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"spotboard/internal/models"
	"spotboard/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHumanizeParam(t *testing.T) {
	tests := []struct {
		param    string
		expected string
	}{
		{"id", "ID"},
		{"imageId", "image ID"},
		{"posterImageId", "poster image ID"},
		{"something", "something"},
	}
	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			assert.Equal(t, tt.expected, humanizeParam(tt.param))
		})
	}
}

func TestParsePage(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		return models.RespondWithError(c, appErr)
	}})
	app.Get("/items", func(c *fiber.Ctx) error {
		q, err := parsePage(c, defaultPageSize)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"page": q.Page, "size": q.Size, "sort": q.Sort})
	})

	tests := []struct {
		name   string
		query  string
		status int
		page   float64
		size   float64
		sort   string
	}{
		{name: "defaults", query: "", status: http.StatusOK, page: 1, size: 10, sort: string(repository.SortRecent)},
		{name: "explicit", query: "?page=3&size=30&sort=LIKE", status: http.StatusOK, page: 3, size: 30, sort: string(repository.SortLike)},
		{name: "popular", query: "?sort=popular", status: http.StatusOK, page: 1, size: 10, sort: string(repository.SortPopular)},
		{name: "size above maximum", query: "?size=31", status: http.StatusBadRequest},
		{name: "zero size", query: "?size=0", status: http.StatusBadRequest},
		{name: "zero page", query: "?page=0", status: http.StatusBadRequest},
		{name: "unknown sort falls back to recent", query: "?sort=oldest", status: http.StatusOK, page: 1, size: 10, sort: string(repository.SortRecent)},
		{name: "blank sort", query: "?sort=%20", status: http.StatusOK, page: 1, size: 10, sort: string(repository.SortRecent)},
		{name: "non numeric", query: "?page=abc", status: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/items"+tt.query, nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			require.Equal(t, tt.status, resp.StatusCode)

			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			if tt.status != http.StatusOK {
				assert.Equal(t, models.CodeValidation, body["errorCode"])
				return
			}
			assert.Equal(t, tt.page, body["page"])
			assert.Equal(t, tt.size, body["size"])
			assert.Equal(t, tt.sort, body["sort"])
		})
	}
}

func TestFromFiberError(t *testing.T) {
	tests := []struct {
		in     *fiber.Error
		status int
		code   string
	}{
		{fiber.ErrNotFound, http.StatusNotFound, models.CodeNotFound},
		{fiber.ErrRequestEntityTooLarge, http.StatusRequestEntityTooLarge, models.CodeFileTooLarge},
		{fiber.ErrUnsupportedMediaType, http.StatusUnsupportedMediaType, models.CodeUnsupportedMediaType},
		{fiber.ErrBadRequest, http.StatusBadRequest, models.CodeValidation},
		{fiber.ErrTooManyRequests, http.StatusTooManyRequests, models.CodeRateLimited},
		{fiber.ErrServiceUnavailable, http.StatusInternalServerError, models.CodeInternal},
		{fiber.ErrConflict, http.StatusConflict, "HTTP_409"},
	}
	for _, tt := range tests {
		t.Run(tt.in.Message, func(t *testing.T) {
			got := fromFiberError(tt.in)
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.code, got.Code)
		})
	}
}
