package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"spotboard/internal/auth"
	"spotboard/internal/authz"
	"spotboard/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

type mockMembers struct {
	mock.Mock
}

func (m *mockMembers) GetByID(ctx context.Context, id uint) (*models.Member, error) {
	args := m.Called(ctx, id)
	member, _ := args.Get(0).(*models.Member)
	return member, args.Error(1)
}

type fakeDenyList struct {
	revoked map[string]bool
	err     error
}

func (f *fakeDenyList) IsRevoked(_ context.Context, token string) (bool, error) {
	return f.revoked[token], f.err
}

func testErrorHandler(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return models.RespondWithError(c, appErr)
	}
	return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{ErrorCode: models.CodeInternal, Message: err.Error()})
}

func newAuthApp(t *testing.T, members MemberLoader, deny RevocationChecker) *fiber.App {
	t.Helper()
	app := fiber.New(fiber.Config{ErrorHandler: testErrorHandler})
	app.Use(Authenticate(auth.NewTokens(testSecret, time.Hour), deny, members))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"memberId": CurrentMemberID(c)})
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, path, authHeader string) (int, models.ErrorResponse, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var raw map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&raw)
	var body models.ErrorResponse
	if code, ok := raw["errorCode"].(string); ok {
		body.ErrorCode = code
	}
	return resp.StatusCode, body, raw
}

func TestAuthenticate(t *testing.T) {
	tokens := auth.NewTokens(testSecret, time.Hour)
	valid, _, err := tokens.Issue(7)
	require.NoError(t, err)
	ghost, _, err := tokens.Issue(99)
	require.NoError(t, err)

	wrongKey, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id": 7, "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("a-completely-different-secret-value"))
	require.NoError(t, err)

	members := &mockMembers{}
	members.On("GetByID", mock.Anything, uint(7)).Return(&models.Member{ID: 7, Role: models.RoleUser}, nil)
	members.On("GetByID", mock.Anything, uint(99)).Return(nil, models.NewNotFoundError("Member", 99))

	deny := &fakeDenyList{revoked: map[string]bool{}}
	app := newAuthApp(t, members, deny)

	tests := []struct {
		name     string
		header   string
		status   int
		code     string
		memberID float64
	}{
		{name: "no header is anonymous", status: http.StatusOK, memberID: 0},
		{name: "valid token", header: "Bearer " + valid, status: http.StatusOK, memberID: 7},
		{name: "basic scheme", header: "Basic dXNlcjpwYXNz", status: http.StatusUnauthorized, code: models.CodeMalformedToken},
		{name: "empty bearer", header: "Bearer ", status: http.StatusUnauthorized, code: models.CodeMalformedToken},
		{name: "garbage token", header: "Bearer abc.def.ghi", status: http.StatusUnauthorized, code: models.CodeMalformedToken},
		{name: "wrong key", header: "Bearer " + wrongKey, status: http.StatusUnauthorized, code: models.CodeInvalidSignature},
		{name: "member gone", header: "Bearer " + ghost, status: http.StatusNotFound, code: models.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body, raw := doRequest(t, app, http.MethodGet, "/whoami", tt.header)
			assert.Equal(t, tt.status, status)
			if tt.code != "" {
				assert.Equal(t, tt.code, body.ErrorCode)
				return
			}
			assert.Equal(t, tt.memberID, raw["memberId"])
		})
	}

	t.Run("logged out token", func(t *testing.T) {
		deny.revoked[valid] = true
		defer delete(deny.revoked, valid)

		status, body, _ := doRequest(t, app, http.MethodGet, "/whoami", "Bearer "+valid)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, models.CodeLoggedOutToken, body.ErrorCode)
	})

	t.Run("deny list failure fails closed", func(t *testing.T) {
		deny.err = errors.New("redis down")
		defer func() { deny.err = nil }()

		status, _, _ := doRequest(t, app, http.MethodGet, "/whoami", "Bearer "+valid)
		assert.Equal(t, http.StatusInternalServerError, status)
	})
}

func TestAuthorize(t *testing.T) {
	enforcer, err := authz.NewEnforcer()
	require.NoError(t, err)

	members := &mockMembers{}
	members.On("GetByID", mock.Anything, uint(1)).Return(&models.Member{ID: 1, Role: models.RoleUser}, nil)
	members.On("GetByID", mock.Anything, uint(2)).Return(&models.Member{ID: 2, Role: models.RoleAdmin}, nil)

	tokens := auth.NewTokens(testSecret, time.Hour)
	userToken, _, err := tokens.Issue(1)
	require.NoError(t, err)
	adminToken, _, err := tokens.Issue(2)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: testErrorHandler})
	app.Use(Authenticate(tokens, &fakeDenyList{}, members))
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) }
	guard := Authorize(enforcer)
	app.Get("/api/locations", guard, ok)
	app.Post("/api/locations", guard, ok)
	app.Delete("/api/locations/:id", guard, ok)

	tests := []struct {
		name   string
		method string
		path   string
		header string
		status int
	}{
		{"anonymous read", http.MethodGet, "/api/locations", "", http.StatusNoContent},
		{"anonymous write is forbidden", http.MethodPost, "/api/locations", "", http.StatusForbidden},
		{"user write", http.MethodPost, "/api/locations", "Bearer " + userToken, http.StatusNoContent},
		{"user admin route", http.MethodDelete, "/api/locations/3", "Bearer " + userToken, http.StatusForbidden},
		{"admin route", http.MethodDelete, "/api/locations/3", "Bearer " + adminToken, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body, _ := doRequest(t, app, tt.method, tt.path, tt.header)
			assert.Equal(t, tt.status, status)
			if tt.status == http.StatusForbidden {
				assert.Equal(t, models.CodeAccessDenied, body.ErrorCode)
			}
		})
	}
}
