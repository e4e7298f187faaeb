package repository

import (
	"context"
	"errors"
	"strings"

	"spotboard/internal/models"

	"gorm.io/gorm"
)

// BoundingBox limits a location listing to a coordinate rectangle.
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// likeEscaper makes a keyword match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LocationFilter narrows the global location listing.
type LocationFilter struct {
	Bounds   *BoundingBox
	Keyword  string
	Approved *bool
}

func (f LocationFilter) scope(db *gorm.DB) *gorm.DB {
	if b := f.Bounds; b != nil {
		db = db.Where("locations.latitude BETWEEN ? AND ?", b.MinLat, b.MaxLat).
			Where("locations.longitude BETWEEN ? AND ?", b.MinLng, b.MaxLng)
	}
	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		like := "%" + likeEscaper.Replace(strings.ToLower(kw)) + "%"
		db = db.Where(
			`(LOWER(locations.title) LIKE ? ESCAPE '\' OR LOWER(locations.address) LIKE ? ESCAPE '\' OR LOWER(locations.description) LIKE ? ESCAPE '\')`,
			like, like, like,
		)
	}
	if f.Approved != nil {
		db = db.Where("locations.approved = ?", *f.Approved)
	}
	return db
}

// LocationRepository defines the interface for location data operations
type LocationRepository interface {
	Create(ctx context.Context, loc *models.Location) error
	GetByID(ctx context.Context, id uint) (*models.Location, error)
	Summary(ctx context.Context, id, viewerID uint) (*models.LocationSummary, error)
	List(ctx context.Context, filter LocationFilter, q ListQuery) ([]models.LocationSummary, int64, error)
	Best(ctx context.Context, viewerID uint) ([]models.LocationSummary, error)
	Update(ctx context.Context, loc *models.Location) error
	SetApproved(ctx context.Context, id uint, approved bool) error
}

type locationRepository struct {
	db *gorm.DB
}

// NewLocationRepository creates a new location repository
func NewLocationRepository(db *gorm.DB) LocationRepository {
	return &locationRepository{db: db}
}

// Create inserts the location and its image rows in one transaction.
func (r *locationRepository) Create(ctx context.Context, loc *models.Location) error {
	return r.db.WithContext(ctx).Create(loc).Error
}

func (r *locationRepository) GetByID(ctx context.Context, id uint) (*models.Location, error) {
	var loc models.Location
	err := r.db.WithContext(ctx).Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("id")
	}).First(&loc, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Location", id)
	}
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

func (r *locationRepository) Summary(ctx context.Context, id, viewerID uint) (*models.LocationSummary, error) {
	var row models.LocationSummary
	found, err := locationList.one(ctx, r.db, id, viewerID, &row)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, models.NewNotFoundError("Location", id)
	}
	rows := []models.LocationSummary{row}
	if err := r.attachImages(ctx, rows); err != nil {
		return nil, err
	}
	return &rows[0], nil
}

func (r *locationRepository) List(ctx context.Context, filter LocationFilter, q ListQuery) ([]models.LocationSummary, int64, error) {
	rows := []models.LocationSummary{}
	total, err := locationList.page(ctx, r.db, filter.scope, q, &rows)
	if err != nil {
		return nil, 0, err
	}
	if err := r.attachImages(ctx, rows); err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *locationRepository) Best(ctx context.Context, viewerID uint) ([]models.LocationSummary, error) {
	rows := []models.LocationSummary{}
	if err := locationList.best(ctx, r.db, noScope, viewerID, &rows); err != nil {
		return nil, err
	}
	if err := r.attachImages(ctx, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *locationRepository) Update(ctx context.Context, loc *models.Location) error {
	res := r.db.WithContext(ctx).Model(&models.Location{ID: loc.ID}).Updates(map[string]interface{}{
		"latitude":    loc.Latitude,
		"longitude":   loc.Longitude,
		"title":       loc.Title,
		"address":     loc.Address,
		"description": loc.Description,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Location", loc.ID)
	}
	return nil
}

func (r *locationRepository) SetApproved(ctx context.Context, id uint, approved bool) error {
	res := r.db.WithContext(ctx).Model(&models.Location{}).Where("id = ?", id).Update("approved", approved)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Location", id)
	}
	return nil
}

// attachImages loads every image of the page in one IN query.
func (r *locationRepository) attachImages(ctx context.Context, rows []models.LocationSummary) error {
	if len(rows) == 0 {
		return nil
	}
	ids := make([]uint, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}

	var images []models.LocationImage
	if err := r.db.WithContext(ctx).Where("location_id IN ?", ids).Order("id").Find(&images).Error; err != nil {
		return err
	}

	byLocation := make(map[uint][]models.LocationImage, len(rows))
	for _, img := range images {
		byLocation[img.LocationID] = append(byLocation[img.LocationID], img)
	}
	for i := range rows {
		rows[i].Images = byLocation[rows[i].ID]
		if rows[i].Images == nil {
			rows[i].Images = []models.LocationImage{}
		}
	}
	return nil
}
