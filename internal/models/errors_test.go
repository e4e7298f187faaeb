package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		status int
		code   string
	}{
		{"not found", NewNotFoundError("Poster", 7), http.StatusNotFound, CodeNotFound},
		{"validation", NewValidationError("bad"), http.StatusBadRequest, CodeValidation},
		{"missing part", NewMissingPartError("image"), http.StatusBadRequest, CodeMissingPart},
		{"media type", NewUnsupportedMediaTypeError("text/plain"), http.StatusUnsupportedMediaType, CodeUnsupportedMediaType},
		{"expired", NewAuthError(CodeExpiredToken, "expired"), http.StatusUnauthorized, CodeExpiredToken},
		{"denied", NewAccessDeniedError("no"), http.StatusForbidden, CodeAccessDenied},
		{"duplicate like", NewDuplicateError(CodeDuplicateLike, "dup"), http.StatusConflict, CodeDuplicateLike},
		{"format", NewUnsupportedFormatError("ext"), http.StatusBadRequest, CodeUnsupportedFormat},
		{"too large", NewFileTooLargeError(10 << 20), http.StatusRequestEntityTooLarge, CodeFileTooLarge},
		{"internal", NewInternalError(errors.New("boom")), http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.Status)
			assert.Equal(t, tt.code, tt.err.Code)
		})
	}
}

func TestHasCode_UnwrapsWrappedErrors(t *testing.T) {
	err := fmt.Errorf("liking poster: %w", NewDuplicateError(CodeDuplicateLike, "already liked"))
	assert.True(t, HasCode(err, CodeDuplicateLike))
	assert.False(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(errors.New("plain"), CodeDuplicateLike))
}

func TestRespondWithError_WritesErrorCodeBody(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return RespondWithError(c, NewFileTooLargeError(5<<20))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	var body map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, CodeFileTooLarge, body["errorCode"])
	assert.Equal(t, "File too large (max 5MB)", body["message"])
}

func TestMemberCanModify(t *testing.T) {
	writer := &Member{ID: 1, Role: RoleUser}
	other := &Member{ID: 2, Role: RoleUser}
	admin := &Member{ID: 3, Role: RoleAdmin}

	assert.True(t, writer.CanModify(1))
	assert.False(t, other.CanModify(1))
	assert.True(t, admin.CanModify(1))
	assert.False(t, (*Member)(nil).CanModify(1))
}
