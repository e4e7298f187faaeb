package server

import (
	"spotboard/internal/media"
	"spotboard/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetImage handles GET /api/images/:name
// @Summary Fetch a stored image
// @Description Redirects to the URL the media store serves the file from
// @Tags images
// @Param name path string true "Stored file name"
// @Success 302
// @Failure 404 {object} models.ErrorResponse
// @Router /images/{name} [get]
func (s *Server) GetImage(c *fiber.Ctx) error {
	name := c.Params("name")
	if !s.media.Exists(name) {
		return models.NewNotFoundError("Image", name)
	}
	return c.Redirect(s.media.Resolve(name), fiber.StatusFound)
}

// ServeMedia streams a stored file from the local media directory.
func (s *Server) ServeMedia(c *fiber.Ctx) error {
	name := c.Params("name")
	f, err := s.media.Open(name)
	if err != nil {
		return models.NewNotFoundError("Image", name)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return models.NewInternalError(err)
	}

	c.Type(media.Extension(name))
	c.Set(fiber.HeaderCacheControl, "public, max-age=31536000, immutable")
	return c.SendStream(f, int(info.Size()))
}
