package server

import (
	"time"

	"spotboard/internal/middleware"
	"spotboard/internal/models"
	"spotboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

type signupRequest struct {
	LoginID  string  `json:"loginId" validate:"required,loginid"`
	Password string  `json:"password" validate:"required,password"`
	Nickname string  `json:"nickname" validate:"required,trimmed,min=2,max=20"`
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
}

type loginRequest struct {
	LoginID  string `json:"loginId" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expiresAt"`
	Member    *models.Member `json:"member"`
}

// Signup handles POST /api/auth/signup
// @Summary Member signup
// @Description Register a new member account with the USER role
// @Tags auth
// @Accept json
// @Produce json
// @Param request body signupRequest true "Signup request"
// @Success 201 {object} models.Member
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/signup [post]
func (s *Server) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	member, err := s.memberService.Signup(c.UserContext(), service.SignupInput{
		LoginID:  req.LoginID,
		Password: req.Password,
		Nickname: req.Nickname,
		Email:    req.Email,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(member)
}

// Login handles POST /api/auth/login
// @Summary Member login
// @Description Exchange a login id and password for a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body loginRequest true "Login request"
// @Success 200 {object} loginResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	member, err := s.memberService.Authenticate(c.UserContext(), req.LoginID, req.Password)
	if err != nil {
		return err
	}

	token, expiresAt, err := s.tokens.Issue(member.ID)
	if err != nil {
		return models.NewInternalError(err)
	}
	return c.JSON(loginResponse{Token: token, ExpiresAt: expiresAt, Member: member})
}

// Logout handles POST /api/auth/logout. The presented token is denied until
// it would have expired anyway.
// @Summary Member logout
// @Tags auth
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	token, expiresAt := middleware.CurrentToken(c)
	if token == "" {
		return models.NewAccessDeniedError("Sign in to access this resource")
	}
	if err := s.denyList.Revoke(c.UserContext(), token, expiresAt); err != nil {
		return models.NewInternalError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
