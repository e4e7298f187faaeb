package server

import (
	"spotboard/internal/middleware"
	"spotboard/internal/models"
	"spotboard/internal/repository"
	"spotboard/internal/service"
	"spotboard/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type locationListQuery struct {
	MinLat   *float64 `query:"minLat" validate:"omitempty,latitude"`
	MaxLat   *float64 `query:"maxLat" validate:"omitempty,latitude"`
	MinLng   *float64 `query:"minLng" validate:"omitempty,longitude"`
	MaxLng   *float64 `query:"maxLng" validate:"omitempty,longitude"`
	Keyword  string   `query:"keyword" validate:"max=100"`
	Approved *bool    `query:"approved"`
}

// filter turns the query into a repository filter. The bounding box is
// all four corners or none.
func (q locationListQuery) filter() (repository.LocationFilter, error) {
	f := repository.LocationFilter{Keyword: q.Keyword, Approved: q.Approved}

	set := 0
	for _, v := range []*float64{q.MinLat, q.MaxLat, q.MinLng, q.MaxLng} {
		if v != nil {
			set++
		}
	}
	switch set {
	case 0:
		return f, nil
	case 4:
	default:
		return f, models.NewValidationError("minLat, maxLat, minLng and maxLng must be given together")
	}
	if *q.MinLat > *q.MaxLat || *q.MinLng > *q.MaxLng {
		return f, models.NewValidationError("Bounding box minimum must not exceed its maximum")
	}
	f.Bounds = &repository.BoundingBox{MinLat: *q.MinLat, MaxLat: *q.MaxLat, MinLng: *q.MinLng, MaxLng: *q.MaxLng}
	return f, nil
}

type locationForm struct {
	Latitude    *float64 `form:"latitude" json:"latitude" validate:"required,latitude"`
	Longitude   *float64 `form:"longitude" json:"longitude" validate:"required,longitude"`
	Title       string   `form:"title" json:"title" validate:"required,max=100"`
	Address     string   `form:"address" json:"address" validate:"max=255"`
	Description string   `form:"description" json:"description" validate:"max=2000"`
}

type approveRequest struct {
	Approved *bool `json:"approved" validate:"required"`
}

// ListLocations handles GET /api/locations
// @Summary List locations
// @Description Paged listing with optional bounding box, keyword and approval filters
// @Tags locations
// @Produce json
// @Param minLat query number false "Bounding box south edge"
// @Param maxLat query number false "Bounding box north edge"
// @Param minLng query number false "Bounding box west edge"
// @Param maxLng query number false "Bounding box east edge"
// @Param keyword query string false "Matches title, address or description"
// @Param approved query bool false "Only approved (true) or pending (false)"
// @Param page query int false "Page (1-based)"
// @Param size query int false "Page size (max 30)"
// @Param sort query string false "recent, like or popular"
// @Success 200 {object} models.Page[models.LocationSummary]
// @Failure 400 {object} models.ErrorResponse
// @Router /locations [get]
func (s *Server) ListLocations(c *fiber.Ctx) error {
	var lq locationListQuery
	if err := c.QueryParser(&lq); err != nil {
		return models.NewValidationError("Invalid location filter")
	}
	if err := validation.ValidateStruct(&lq); err != nil {
		return err
	}
	filter, err := lq.filter()
	if err != nil {
		return err
	}
	q, err := parsePage(c, defaultPageSize)
	if err != nil {
		return err
	}

	page, err := s.locationService.List(c.UserContext(), filter, q)
	if err != nil {
		return err
	}
	return c.JSON(page)
}

// BestLocations handles GET /api/locations/best
// @Summary Most liked locations
// @Tags locations
// @Produce json
// @Success 200 {array} models.LocationSummary
// @Router /locations/best [get]
func (s *Server) BestLocations(c *fiber.Ctx) error {
	rows, err := s.locationService.Best(c.UserContext(), middleware.CurrentMemberID(c))
	if err != nil {
		return err
	}
	return c.JSON(rows)
}

// GetLocation handles GET /api/locations/:id
// @Summary Location detail
// @Tags locations
// @Produce json
// @Param id path int true "Location ID"
// @Success 200 {object} models.LocationSummary
// @Failure 404 {object} models.ErrorResponse
// @Router /locations/{id} [get]
func (s *Server) GetLocation(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	loc, err := s.locationService.Get(c.UserContext(), id, middleware.CurrentMemberID(c))
	if err != nil {
		return err
	}
	return c.JSON(loc)
}

// CreateLocation handles POST /api/locations
// @Summary Register a location
// @Description New locations start unapproved
// @Tags locations
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param latitude formData number true "Latitude"
// @Param longitude formData number true "Longitude"
// @Param title formData string true "Title"
// @Param address formData string false "Address"
// @Param description formData string false "Description"
// @Param images formData file false "Images"
// @Success 201 {object} models.LocationSummary
// @Failure 400 {object} models.ErrorResponse
// @Failure 415 {object} models.ErrorResponse
// @Router /locations [post]
func (s *Server) CreateLocation(c *fiber.Ctx) error {
	var req locationForm
	form, err := bindForm(c, &req)
	if err != nil {
		return err
	}
	atts, closeAll, err := openAttachments(form, "images", false)
	if err != nil {
		return err
	}
	defer closeAll()

	loc, err := s.locationService.Create(c.UserContext(), service.CreateLocationInput{
		Latitude:    *req.Latitude,
		Longitude:   *req.Longitude,
		Title:       req.Title,
		Address:     req.Address,
		Description: req.Description,
		Images:      atts,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(loc)
}

// UpdateLocation handles PUT /api/locations/:id
// @Summary Edit a location
// @Tags locations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Location ID"
// @Param request body locationForm true "Location fields"
// @Success 200 {object} models.LocationSummary
// @Router /locations/{id} [put]
func (s *Server) UpdateLocation(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req locationForm
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	loc, err := s.locationService.Update(c.UserContext(), id, service.UpdateLocationInput{
		Latitude:    *req.Latitude,
		Longitude:   *req.Longitude,
		Title:       req.Title,
		Address:     req.Address,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(loc)
}

// ApproveLocation handles PATCH /api/locations/:id/approve
// @Summary Approve or withdraw a location
// @Tags locations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Location ID"
// @Param request body approveRequest true "Approval flag"
// @Success 200 {object} models.LocationSummary
// @Router /locations/{id}/approve [patch]
func (s *Server) ApproveLocation(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req approveRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	loc, err := s.locationService.Approve(c.UserContext(), id, *req.Approved)
	if err != nil {
		return err
	}
	return c.JSON(loc)
}

// DeleteLocation handles DELETE /api/locations/:id
// @Summary Delete a location with its posters, comments, likes and images
// @Tags locations
// @Security BearerAuth
// @Param id path int true "Location ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /locations/{id} [delete]
func (s *Server) DeleteLocation(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if _, err := s.locationService.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteLocationImage handles DELETE /api/locations/:id/images/:imageId
// @Summary Delete one location image
// @Tags locations
// @Security BearerAuth
// @Param id path int true "Location ID"
// @Param imageId path int true "Image ID"
// @Success 204
// @Router /locations/{id}/images/{imageId} [delete]
func (s *Server) DeleteLocationImage(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	imageID, err := parseID(c, "imageId")
	if err != nil {
		return err
	}
	if err := s.locationService.DeleteImage(c.UserContext(), id, imageID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LikeLocation handles POST /api/locations/:id/likes
// @Summary Like a location
// @Tags locations
// @Security BearerAuth
// @Param id path int true "Location ID"
// @Success 204
// @Failure 409 {object} models.ErrorResponse
// @Router /locations/{id}/likes [post]
func (s *Server) LikeLocation(c *fiber.Ctx) error {
	return s.toggleLike(c, s.locationService.Like)
}

// UnlikeLocation handles DELETE /api/locations/:id/likes
// @Summary Remove a location like
// @Tags locations
// @Security BearerAuth
// @Param id path int true "Location ID"
// @Success 204
// @Router /locations/{id}/likes [delete]
func (s *Server) UnlikeLocation(c *fiber.Ctx) error {
	return s.toggleLike(c, s.locationService.Unlike)
}

// GetLocationPosters handles GET /api/locations/:id/posters
// @Summary Posters at a location
// @Tags locations
// @Produce json
// @Param id path int true "Location ID"
// @Param page query int false "Page (1-based)"
// @Param size query int false "Page size (max 30)"
// @Param sort query string false "recent, like or popular"
// @Success 200 {object} models.Page[models.PosterSummary]
// @Router /locations/{id}/posters [get]
func (s *Server) GetLocationPosters(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	q, err := parsePage(c, defaultPageSize)
	if err != nil {
		return err
	}
	page, err := s.locationService.Posters(c.UserContext(), id, q)
	if err != nil {
		return err
	}
	return c.JSON(page)
}
