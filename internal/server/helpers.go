package server

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"unicode"

	"spotboard/internal/middleware"
	"spotboard/internal/models"
	"spotboard/internal/repository"
	"spotboard/internal/service"
	"spotboard/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultPageSize        = 10
	defaultCommentPageSize = 5
	maxImagesPerUpload     = 10
)

// parseID extracts a route parameter by name as a positive uint.
// The error message is derived from the parameter name (e.g. "id" -> "Invalid ID",
// "imageId" -> "Invalid image ID").
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		return 0, models.NewValidationError("Invalid " + humanizeParam(param))
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		words := splitCamel(param[:len(param)-2])
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	return append(words, s[start:])
}

type pageQuery struct {
	Page int    `query:"page" validate:"gte=1"`
	Size int    `query:"size" validate:"gte=1,lte=30"`
	Sort string `query:"sort"`
}

// parsePage reads page, size and sort. Sizes above the listing maximum are
// rejected rather than clamped; an unknown sort falls back to recent.
func parsePage(c *fiber.Ctx, defaultSize int) (repository.ListQuery, error) {
	q := pageQuery{Page: 1, Size: defaultSize}
	if err := c.QueryParser(&q); err != nil {
		return repository.ListQuery{}, models.NewValidationError("Invalid pagination parameters")
	}
	q.Sort = strings.ToLower(strings.TrimSpace(q.Sort))
	if err := validation.ValidateStruct(&q); err != nil {
		return repository.ListQuery{}, err
	}
	return repository.ListQuery{
		Page:     q.Page,
		Size:     q.Size,
		Sort:     repository.ParseSort(q.Sort),
		ViewerID: middleware.CurrentMemberID(c),
	}, nil
}

// currentMember returns the authenticated member or ACCESS_DENIED for
// anonymous callers.
func currentMember(c *fiber.Ctx) (*models.Member, error) {
	member := middleware.CurrentMember(c)
	if member == nil {
		return nil, models.NewAccessDeniedError("Sign in to access this resource")
	}
	return member, nil
}

func hasContentType(c *fiber.Ctx, mime string) bool {
	ct := strings.ToLower(strings.TrimSpace(c.Get(fiber.HeaderContentType)))
	return strings.HasPrefix(ct, mime)
}

// bindJSON decodes a JSON body into dst and validates it.
func bindJSON(c *fiber.Ctx, dst interface{}) error {
	if !hasContentType(c, fiber.MIMEApplicationJSON) {
		return models.NewUnsupportedMediaTypeError(c.Get(fiber.HeaderContentType))
	}
	if err := c.BodyParser(dst); err != nil {
		return models.NewValidationError("Invalid request body")
	}
	return validation.ValidateStruct(dst)
}

// bindForm decodes the text fields of a multipart body into dst, validates
// them and returns the parsed form for file access.
func bindForm(c *fiber.Ctx, dst interface{}) (*multipart.Form, error) {
	if !hasContentType(c, fiber.MIMEMultipartForm) {
		return nil, models.NewUnsupportedMediaTypeError(c.Get(fiber.HeaderContentType))
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, models.NewValidationError("Invalid multipart body")
	}
	if dst != nil {
		if err := c.BodyParser(dst); err != nil {
			return nil, models.NewValidationError("Invalid request body")
		}
		if err := validation.ValidateStruct(dst); err != nil {
			return nil, err
		}
	}
	return form, nil
}

// openAttachments opens the files sent under part. The returned func closes
// every opened file.
func openAttachments(form *multipart.Form, part string, required bool) ([]service.Attachment, func(), error) {
	files := form.File[part]
	if len(files) == 0 && required {
		return nil, func() {}, models.NewMissingPartError(part)
	}
	if len(files) > maxImagesPerUpload {
		return nil, func() {}, models.NewValidationError(fmt.Sprintf("At most %d images may be uploaded at once", maxImagesPerUpload))
	}

	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	atts := make([]service.Attachment, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("open upload %q: %w", fh.Filename, err)
		}
		opened = append(opened, f)
		atts = append(atts, service.Attachment{Filename: fh.Filename, Content: f})
	}
	return atts, closeAll, nil
}

// toggleLike applies like or unlike for the signed-in member to the :id
// target and answers 204.
func (s *Server) toggleLike(c *fiber.Ctx, apply func(ctx context.Context, memberID, targetID uint) error) error {
	me, err := currentMember(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := apply(c.UserContext(), me.ID, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
