package repository

import (
	"context"
	"errors"

	"spotboard/internal/database"
	"spotboard/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PosterRepository defines the interface for poster data operations
type PosterRepository interface {
	Create(ctx context.Context, poster *models.Poster) error
	GetByID(ctx context.Context, id uint) (*models.Poster, error)
	Summary(ctx context.Context, id, viewerID uint) (*models.PosterSummary, error)
	ListByLocation(ctx context.Context, locationID uint, q ListQuery) ([]models.PosterSummary, int64, error)
	ListByMember(ctx context.Context, memberID uint, q ListQuery) ([]models.PosterSummary, int64, error)
	Best(ctx context.Context, viewerID uint) ([]models.PosterSummary, error)
	Update(ctx context.Context, poster *models.Poster) error
}

type posterRepository struct {
	db *gorm.DB
}

// NewPosterRepository creates a new poster repository
func NewPosterRepository(db *gorm.DB) PosterRepository {
	return &posterRepository{db: db}
}

// Create inserts the poster and its image rows. The writer and then the
// location are share locked first so a concurrent delete of either sees
// this poster or makes the insert fail with NOT_FOUND.
func (r *posterRepository) Create(ctx context.Context, poster *models.Poster) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockParent(tx, &models.Member{}, poster.MemberID); err != nil {
			return err
		}
		if err := lockParent(tx, &models.Location{}, poster.LocationID); err != nil {
			return err
		}
		return tx.Create(poster).Error
	})
	if database.IsForeignKeyViolation(err) {
		return models.NewNotFoundError("Location", poster.LocationID)
	}
	return err
}

func (r *posterRepository) GetByID(ctx context.Context, id uint) (*models.Poster, error) {
	var poster models.Poster
	err := r.db.WithContext(ctx).
		Preload("Writer").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&poster, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Poster", id)
	}
	if err != nil {
		return nil, err
	}
	return &poster, nil
}

func (r *posterRepository) Summary(ctx context.Context, id, viewerID uint) (*models.PosterSummary, error) {
	var row models.PosterSummary
	found, err := posterList.one(ctx, r.db, id, viewerID, &row)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, models.NewNotFoundError("Poster", id)
	}
	rows := []models.PosterSummary{row}
	if err := r.attachImages(ctx, rows); err != nil {
		return nil, err
	}
	return &rows[0], nil
}

func (r *posterRepository) ListByLocation(ctx context.Context, locationID uint, q ListQuery) ([]models.PosterSummary, int64, error) {
	return r.list(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("posters.location_id = ?", locationID)
	}, q)
}

func (r *posterRepository) ListByMember(ctx context.Context, memberID uint, q ListQuery) ([]models.PosterSummary, int64, error) {
	return r.list(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("posters.member_id = ?", memberID)
	}, q)
}

func (r *posterRepository) list(ctx context.Context, scope func(*gorm.DB) *gorm.DB, q ListQuery) ([]models.PosterSummary, int64, error) {
	rows := []models.PosterSummary{}
	total, err := posterList.page(ctx, r.db, scope, q, &rows)
	if err != nil {
		return nil, 0, err
	}
	if err := r.attachImages(ctx, rows); err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *posterRepository) Best(ctx context.Context, viewerID uint) ([]models.PosterSummary, error) {
	rows := []models.PosterSummary{}
	if err := posterList.best(ctx, r.db, noScope, viewerID, &rows); err != nil {
		return nil, err
	}
	if err := r.attachImages(ctx, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *posterRepository) Update(ctx context.Context, poster *models.Poster) error {
	res := r.db.WithContext(ctx).Model(&models.Poster{ID: poster.ID}).Updates(map[string]interface{}{
		"title":   poster.Title,
		"content": poster.Content,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Poster", poster.ID)
	}
	return nil
}

func (r *posterRepository) attachImages(ctx context.Context, rows []models.PosterSummary) error {
	if len(rows) == 0 {
		return nil
	}
	ids := make([]uint, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}

	var images []models.PosterImage
	if err := r.db.WithContext(ctx).Where("poster_id IN ?", ids).Order("id").Find(&images).Error; err != nil {
		return err
	}

	byPoster := make(map[uint][]models.PosterImage, len(rows))
	for _, img := range images {
		byPoster[img.PosterID] = append(byPoster[img.PosterID], img)
	}
	for i := range rows {
		rows[i].Images = byPoster[rows[i].ID]
		if rows[i].Images == nil {
			rows[i].Images = []models.PosterImage{}
		}
	}
	return nil
}

// lockParent takes a shared row lock on the parent of a new child row and
// reports NOT_FOUND when it does not exist. SQLite ignores the lock clause
// and serialises writers instead.
func lockParent(tx *gorm.DB, model interface{}, id uint) error {
	var ids []uint
	err := tx.Clauses(clause.Locking{Strength: clause.LockingStrengthShare}).
		Model(model).
		Where("id = ?", id).
		Pluck("id", &ids).Error
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return models.NewNotFoundError(resourceName(model), id)
	}
	return nil
}

func resourceName(model interface{}) string {
	switch model.(type) {
	case *models.Location:
		return "Location"
	case *models.Poster:
		return "Poster"
	case *models.Comment:
		return "Comment"
	case *models.Member:
		return "Member"
	default:
		return "Resource"
	}
}
