package server

import (
	"github.com/gofiber/fiber/v2"
)

type commentRequest struct {
	Content string `json:"content" validate:"required,max=1000"`
}

// CreateComment handles POST /api/posters/:id/comments
// @Summary Comment on a poster
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Poster ID"
// @Param request body commentRequest true "Comment"
// @Success 201 {object} models.Comment
// @Failure 404 {object} models.ErrorResponse
// @Router /posters/{id}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	me, err := currentMember(c)
	if err != nil {
		return err
	}
	posterID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req commentRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	comment, err := s.commentService.Create(c.UserContext(), me, posterID, req.Content)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// UpdateComment handles PUT /api/comments/:id (owner only)
// @Summary Edit a comment
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Param request body commentRequest true "Comment"
// @Success 200 {object} models.Comment
// @Failure 403 {object} models.ErrorResponse
// @Router /comments/{id} [put]
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	me, err := currentMember(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req commentRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	comment, err := s.commentService.Update(c.UserContext(), me, id, req.Content)
	if err != nil {
		return err
	}
	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/comments/:id (owner only)
// @Summary Delete a comment and its likes
// @Tags comments
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 204
// @Router /comments/{id} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	me, err := currentMember(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := s.commentService.Delete(c.UserContext(), me, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LikeComment handles POST /api/comments/:id/likes
// @Summary Like a comment
// @Tags comments
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 204
// @Failure 409 {object} models.ErrorResponse
// @Router /comments/{id}/likes [post]
func (s *Server) LikeComment(c *fiber.Ctx) error {
	return s.toggleLike(c, s.commentService.Like)
}

// UnlikeComment handles DELETE /api/comments/:id/likes
// @Summary Remove a comment like
// @Tags comments
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 204
// @Router /comments/{id}/likes [delete]
func (s *Server) UnlikeComment(c *fiber.Ctx) error {
	return s.toggleLike(c, s.commentService.Unlike)
}
