package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"spotboard/internal/auth"
	"spotboard/internal/models"
	"spotboard/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by Authenticate.
const (
	LocalMemberID    = "memberID"
	LocalMember      = "member"
	LocalToken       = "token"
	LocalTokenExpiry = "tokenExpiry"
)

// TokenVerifier checks a raw bearer token.
type TokenVerifier interface {
	Verify(raw string) (*auth.Claims, error)
}

// RevocationChecker reports whether a token was logged out.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// MemberLoader loads the member a verified token names.
type MemberLoader interface {
	GetByID(ctx context.Context, id uint) (*models.Member, error)
}

// Authenticate resolves the bearer token, if any, to a member. Requests
// without an Authorization header continue as anonymous; a header that is
// present but not valid always stops the request.
func Authenticate(tokens TokenVerifier, deny RevocationChecker, members MemberLoader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return c.Next()
		}

		raw, ok := strings.CutPrefix(header, "Bearer ")
		raw = strings.TrimSpace(raw)
		if !ok || raw == "" {
			return authFailure(models.NewAuthError(models.CodeMalformedToken, "Authorization header must be a Bearer token"))
		}

		claims, err := tokens.Verify(raw)
		if err != nil {
			return authFailure(err)
		}

		revoked, err := deny.IsRevoked(c.UserContext(), raw)
		if err != nil {
			return err
		}
		if revoked {
			return authFailure(models.NewAuthError(models.CodeLoggedOutToken, "Token has been logged out"))
		}

		member, err := members.GetByID(c.UserContext(), claims.MemberID)
		if err != nil {
			return err
		}

		c.Locals(LocalMemberID, member.ID)
		c.Locals(LocalMember, member)
		c.Locals(LocalToken, raw)
		if claims.ExpiresAt != nil {
			c.Locals(LocalTokenExpiry, claims.ExpiresAt.Time)
		}
		c.SetUserContext(WithMemberID(c.UserContext(), member.ID))

		return c.Next()
	}
}

func authFailure(err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		observability.AuthFailures.WithLabelValues(appErr.Code).Inc()
	}
	return err
}

// CurrentMember returns the authenticated member or nil for anonymous requests.
func CurrentMember(c *fiber.Ctx) *models.Member {
	m, _ := c.Locals(LocalMember).(*models.Member)
	return m
}

// CurrentMemberID returns the authenticated member id, 0 when anonymous.
func CurrentMemberID(c *fiber.Ctx) uint {
	id, _ := c.Locals(LocalMemberID).(uint)
	return id
}

// CurrentToken returns the raw bearer token and its expiry.
func CurrentToken(c *fiber.Ctx) (string, time.Time) {
	raw, _ := c.Locals(LocalToken).(string)
	exp, _ := c.Locals(LocalTokenExpiry).(time.Time)
	return raw, exp
}
