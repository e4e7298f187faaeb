package server

import (
	"spotboard/internal/middleware"
	"spotboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

type posterForm struct {
	Title   string `form:"title" json:"title" validate:"required,max=100"`
	Content string `form:"content" json:"content" validate:"required,max=5000"`
}

// CreatePoster handles POST /api/locations/:id/posters
// @Summary Write a poster at a location
// @Tags posters
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Location ID"
// @Param title formData string true "Title"
// @Param content formData string true "Content"
// @Param images formData file false "Images"
// @Success 201 {object} models.PosterSummary
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /locations/{id}/posters [post]
func (s *Server) CreatePoster(c *fiber.Ctx) error {
	me, err := currentMember(c)
	if err != nil {
		return err
	}
	locationID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req posterForm
	form, err := bindForm(c, &req)
	if err != nil {
		return err
	}
	atts, closeAll, err := openAttachments(form, "images", false)
	if err != nil {
		return err
	}
	defer closeAll()

	poster, err := s.posterService.Create(c.UserContext(), me, service.CreatePosterInput{
		LocationID: locationID,
		Title:      req.Title,
		Content:    req.Content,
		Images:     atts,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(poster)
}

// BestPosters handles GET /api/posters/best
// @Summary Most liked posters
// @Tags posters
// @Produce json
// @Success 200 {array} models.PosterSummary
// @Router /posters/best [get]
func (s *Server) BestPosters(c *fiber.Ctx) error {
	rows, err := s.posterService.Best(c.UserContext(), middleware.CurrentMemberID(c))
	if err != nil {
		return err
	}
	return c.JSON(rows)
}

// GetPoster handles GET /api/posters/:id
// @Summary Poster detail
// @Tags posters
// @Produce json
// @Param id path int true "Poster ID"
// @Success 200 {object} models.PosterSummary
// @Failure 404 {object} models.ErrorResponse
// @Router /posters/{id} [get]
func (s *Server) GetPoster(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	poster, err := s.posterService.Get(c.UserContext(), id, middleware.CurrentMemberID(c))
	if err != nil {
		return err
	}
	return c.JSON(poster)
}

// UpdatePoster handles PUT /api/posters/:id
// @Summary Edit a poster
// @Tags posters
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Poster ID"
// @Param request body posterForm true "Poster fields"
// @Success 200 {object} models.PosterSummary
// @Failure 403 {object} models.ErrorResponse
// @Router /posters/{id} [put]
func (s *Server) UpdatePoster(c *fiber.Ctx) error {
	me, err := currentMember(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req posterForm
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	poster, err := s.posterService.Update(c.UserContext(), me, id, service.UpdatePosterInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		return err
	}
	return c.JSON(poster)
}

// DeletePoster handles DELETE /api/posters/:id
// @Summary Delete a poster with its comments, likes and images
// @Tags posters
// @Security BearerAuth
// @Param id path int true "Poster ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Router /posters/{id} [delete]
func (s *Server) DeletePoster(c *fiber.Ctx) error {
	me, err := currentMember(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if _, err := s.posterService.Delete(c.UserContext(), me, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeletePosterImage handles DELETE /api/posters/:id/images/:imageId
// @Summary Delete one poster image
// @Tags posters
// @Security BearerAuth
// @Param id path int true "Poster ID"
// @Param imageId path int true "Image ID"
// @Success 204
// @Router /posters/{id}/images/{imageId} [delete]
func (s *Server) DeletePosterImage(c *fiber.Ctx) error {
	me, err := currentMember(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	imageID, err := parseID(c, "imageId")
	if err != nil {
		return err
	}
	if err := s.posterService.DeleteImage(c.UserContext(), me, id, imageID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LikePoster handles POST /api/posters/:id/likes
// @Summary Like a poster
// @Tags posters
// @Security BearerAuth
// @Param id path int true "Poster ID"
// @Success 204
// @Failure 409 {object} models.ErrorResponse
// @Router /posters/{id}/likes [post]
func (s *Server) LikePoster(c *fiber.Ctx) error {
	return s.toggleLike(c, s.posterService.Like)
}

// UnlikePoster handles DELETE /api/posters/:id/likes
// @Summary Remove a poster like
// @Tags posters
// @Security BearerAuth
// @Param id path int true "Poster ID"
// @Success 204
// @Router /posters/{id}/likes [delete]
func (s *Server) UnlikePoster(c *fiber.Ctx) error {
	return s.toggleLike(c, s.posterService.Unlike)
}

// GetPosterComments handles GET /api/posters/:id/comments
// @Summary Comments on a poster
// @Tags posters
// @Produce json
// @Param id path int true "Poster ID"
// @Param page query int false "Page (1-based)"
// @Param size query int false "Page size (max 30, default 5)"
// @Param sort query string false "recent, like or popular"
// @Success 200 {object} models.Page[models.CommentSummary]
// @Router /posters/{id}/comments [get]
func (s *Server) GetPosterComments(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	q, err := parsePage(c, defaultCommentPageSize)
	if err != nil {
		return err
	}
	page, err := s.posterService.Comments(c.UserContext(), id, q)
	if err != nil {
		return err
	}
	return c.JSON(page)
}
