package server

import (
	"log/slog"
	"time"

	"spotboard/internal/middleware"
	"spotboard/internal/models"

	"github.com/gofiber/fiber/v2"
)

type nicknameRequest struct {
	Nickname string `json:"nickname" validate:"required,trimmed,min=2,max=20"`
}

// memberProfile is the public view of a member.
type memberProfile struct {
	ID        uint                `json:"id"`
	Nickname  string              `json:"nickname"`
	Role      models.Role         `json:"role"`
	Image     *models.MemberImage `json:"image,omitempty"`
	CreatedAt time.Time           `json:"createdAt"`
}

func profileOf(m *models.Member) memberProfile {
	return memberProfile{ID: m.ID, Nickname: m.Nickname, Role: m.Role, Image: m.Image, CreatedAt: m.CreatedAt}
}

// GetMe returns the signed-in member
// @Summary Current member
// @Tags members
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Member
// @Failure 403 {object} models.ErrorResponse
// @Router /members/me [get]
func (s *Server) GetMe(c *fiber.Ctx) error {
	me, err := currentMember(c)
	if err != nil {
		return err
	}
	member, err := s.memberService.Get(c.UserContext(), me.ID)
	if err != nil {
		return err
	}
	return c.JSON(member)
}

// UpdateMe renames the signed-in member
// @Summary Change nickname
// @Tags members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body nicknameRequest true "New nickname"
// @Success 200 {object} models.Member
// @Failure 409 {object} models.ErrorResponse
// @Router /members/me [put]
func (s *Server) UpdateMe(c *fiber.Ctx) error {
	me, err := currentMember(c)
	if err != nil {
		return err
	}
	var req nicknameRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	member, err := s.memberService.UpdateNickname(c.UserContext(), me.ID, req.Nickname)
	if err != nil {
		return err
	}
	return c.JSON(member)
}

// ReplaceMyImage uploads a new profile picture
// @Summary Replace profile image
// @Tags members
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image formData file true "Profile image"
// @Success 200 {object} models.MemberImage
// @Failure 400 {object} models.ErrorResponse
// @Failure 415 {object} models.ErrorResponse
// @Router /members/me/image [put]
func (s *Server) ReplaceMyImage(c *fiber.Ctx) error {
	me, err := currentMember(c)
	if err != nil {
		return err
	}
	form, err := bindForm(c, nil)
	if err != nil {
		return err
	}
	atts, closeAll, err := openAttachments(form, "image", true)
	if err != nil {
		return err
	}
	defer closeAll()
	if len(atts) != 1 {
		return models.NewValidationError("Exactly one profile image is allowed")
	}

	img, err := s.memberService.ReplaceImage(c.UserContext(), me.ID, atts[0])
	if err != nil {
		return err
	}
	return c.JSON(img)
}

// DeleteMyImage removes the profile picture
// @Summary Delete profile image
// @Tags members
// @Security BearerAuth
// @Success 204
// @Router /members/me/image [delete]
func (s *Server) DeleteMyImage(c *fiber.Ctx) error {
	me, err := currentMember(c)
	if err != nil {
		return err
	}
	if err := s.memberService.DeleteImage(c.UserContext(), me.ID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteMe withdraws the signed-in member with everything they wrote
// @Summary Delete account
// @Tags members
// @Security BearerAuth
// @Success 204
// @Router /members/me [delete]
func (s *Server) DeleteMe(c *fiber.Ctx) error {
	me, err := currentMember(c)
	if err != nil {
		return err
	}
	if _, err := s.memberService.Delete(c.UserContext(), me.ID); err != nil {
		return err
	}

	// The token outlives the account otherwise.
	if token, expiresAt := middleware.CurrentToken(c); token != "" {
		if err := s.denyList.Revoke(c.UserContext(), token, expiresAt); err != nil {
			s.logger.WarnContext(c.UserContext(), "revoke token after account deletion failed",
				slog.String("error", err.Error()))
		}
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetMember returns a member's public profile
// @Summary Member profile
// @Tags members
// @Produce json
// @Param id path int true "Member ID"
// @Success 200 {object} memberProfile
// @Failure 404 {object} models.ErrorResponse
// @Router /members/{id} [get]
func (s *Server) GetMember(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	member, err := s.memberService.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(profileOf(member))
}

// GetMemberPosters lists the posters a member wrote
// @Summary Member posters
// @Tags members
// @Produce json
// @Param id path int true "Member ID"
// @Param page query int false "Page (1-based)"
// @Param size query int false "Page size (max 30)"
// @Param sort query string false "recent, like or popular"
// @Success 200 {object} models.Page[models.PosterSummary]
// @Router /members/{id}/posters [get]
func (s *Server) GetMemberPosters(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	q, err := parsePage(c, defaultPageSize)
	if err != nil {
		return err
	}
	page, err := s.memberService.Posters(c.UserContext(), id, q)
	if err != nil {
		return err
	}
	return c.JSON(page)
}
