package service

import (
	"context"
	"log/slog"

	"spotboard/internal/media"
	"spotboard/internal/models"
	"spotboard/internal/repository"
)

type LocationService struct {
	locations repository.LocationRepository
	posters   repository.PosterRepository
	likes     repository.LikeRepository
	cascade   *Cascade
	media     media.Store
	logger    *slog.Logger
}

type CreateLocationInput struct {
	Latitude    float64
	Longitude   float64
	Title       string
	Address     string
	Description string
	Images      []Attachment
}

type UpdateLocationInput struct {
	Latitude    float64
	Longitude   float64
	Title       string
	Address     string
	Description string
}

func NewLocationService(
	locations repository.LocationRepository,
	posters repository.PosterRepository,
	likes repository.LikeRepository,
	cascade *Cascade,
	store media.Store,
	logger *slog.Logger,
) *LocationService {
	return &LocationService{
		locations: locations,
		posters:   posters,
		likes:     likes,
		cascade:   cascade,
		media:     store,
		logger:    logger,
	}
}

// Create registers an unapproved location with its images.
func (s *LocationService) Create(ctx context.Context, in CreateLocationInput) (*models.LocationSummary, error) {
	stored, err := storeAll(ctx, s.media, s.logger, in.Images)
	if err != nil {
		return nil, err
	}

	loc := &models.Location{
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		Title:       in.Title,
		Address:     in.Address,
		Description: in.Description,
	}
	for _, f := range stored {
		loc.Images = append(loc.Images, models.LocationImage{UploadName: f.uploadName, StoreName: f.storeName})
	}

	if err := s.locations.Create(ctx, loc); err != nil {
		discard(ctx, s.media, s.logger, stored)
		return nil, err
	}
	return s.locations.Summary(ctx, loc.ID, 0)
}

func (s *LocationService) Get(ctx context.Context, id, viewerID uint) (*models.LocationSummary, error) {
	return s.locations.Summary(ctx, id, viewerID)
}

func (s *LocationService) List(ctx context.Context, filter repository.LocationFilter, q repository.ListQuery) (*models.Page[models.LocationSummary], error) {
	rows, total, err := s.locations.List(ctx, filter, q)
	if err != nil {
		return nil, err
	}
	return page(rows, q, total), nil
}

func (s *LocationService) Best(ctx context.Context, viewerID uint) ([]models.LocationSummary, error) {
	return s.locations.Best(ctx, viewerID)
}

func (s *LocationService) Posters(ctx context.Context, locationID uint, q repository.ListQuery) (*models.Page[models.PosterSummary], error) {
	rows, total, err := s.posters.ListByLocation(ctx, locationID, q)
	if err != nil {
		return nil, err
	}
	return page(rows, q, total), nil
}

func (s *LocationService) Update(ctx context.Context, id uint, in UpdateLocationInput) (*models.LocationSummary, error) {
	err := s.locations.Update(ctx, &models.Location{
		ID:          id,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		Title:       in.Title,
		Address:     in.Address,
		Description: in.Description,
	})
	if err != nil {
		return nil, err
	}
	return s.locations.Summary(ctx, id, 0)
}

func (s *LocationService) Approve(ctx context.Context, id uint, approved bool) (*models.LocationSummary, error) {
	if err := s.locations.SetApproved(ctx, id, approved); err != nil {
		return nil, err
	}
	return s.locations.Summary(ctx, id, 0)
}

func (s *LocationService) Delete(ctx context.Context, id uint) (*CascadeReport, error) {
	return s.cascade.DeleteLocation(ctx, id)
}

func (s *LocationService) DeleteImage(ctx context.Context, locationID, imageID uint) error {
	_, err := s.cascade.DeleteLocationImage(ctx, locationID, imageID)
	return err
}

func (s *LocationService) Like(ctx context.Context, memberID, locationID uint) error {
	return s.likes.Like(ctx, repository.LikeLocation, memberID, locationID)
}

func (s *LocationService) Unlike(ctx context.Context, memberID, locationID uint) error {
	return s.likes.Unlike(ctx, repository.LikeLocation, memberID, locationID)
}

// page wraps one listing page in the response envelope.
func page[T any](rows []T, q repository.ListQuery, total int64) *models.Page[T] {
	q = q.Normalize()
	return &models.Page[T]{Items: rows, Page: q.Page, Size: q.Size, TotalCount: total}
}
