package repository

import (
	"context"
	"errors"

	"spotboard/internal/database"
	"spotboard/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByPoster(ctx context.Context, posterID uint, q ListQuery) ([]models.CommentSummary, int64, error)
	Update(ctx context.Context, comment *models.Comment) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create locks the writer and then the poster, mirroring Poster creation.
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockParent(tx, &models.Member{}, comment.MemberID); err != nil {
			return err
		}
		if err := lockParent(tx, &models.Poster{}, comment.PosterID); err != nil {
			return err
		}
		return tx.Create(comment).Error
	})
	if database.IsForeignKeyViolation(err) {
		return models.NewNotFoundError("Poster", comment.PosterID)
	}
	return err
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).Preload("Writer").First(&comment, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Comment", id)
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByPoster pages the comments of a poster. A poster that does not
// exist simply has no comments.
func (r *commentRepository) ListByPoster(ctx context.Context, posterID uint, q ListQuery) ([]models.CommentSummary, int64, error) {
	rows := []models.CommentSummary{}
	total, err := commentList.page(ctx, r.db, func(db *gorm.DB) *gorm.DB {
		return db.Where("comments.poster_id = ?", posterID)
	}, q, &rows)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	res := r.db.WithContext(ctx).Model(&models.Comment{ID: comment.ID}).Update("content", comment.Content)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", comment.ID)
	}
	return nil
}
