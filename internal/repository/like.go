package repository

import (
	"context"
	"fmt"

	"spotboard/internal/database"
	"spotboard/internal/models"

	"gorm.io/gorm"
)

// LikeTarget is the kind of entity a like points at.
type LikeTarget int

const (
	LikeLocation LikeTarget = iota
	LikePoster
	LikeComment
)

func (t LikeTarget) String() string {
	switch t {
	case LikeLocation:
		return "location"
	case LikePoster:
		return "poster"
	case LikeComment:
		return "comment"
	default:
		return fmt.Sprintf("LikeTarget(%d)", int(t))
	}
}

type likeTable struct {
	parent   interface{}
	resource string
	fk       string
	newRow   func(memberID, targetID uint) interface{}
	model    interface{}
}

func (t LikeTarget) table() likeTable {
	switch t {
	case LikePoster:
		return likeTable{
			parent: &models.Poster{}, resource: "Poster", fk: "poster_id", model: &models.PosterLike{},
			newRow: func(m, id uint) interface{} { return &models.PosterLike{MemberID: m, PosterID: id} },
		}
	case LikeComment:
		return likeTable{
			parent: &models.Comment{}, resource: "Comment", fk: "comment_id", model: &models.CommentLike{},
			newRow: func(m, id uint) interface{} { return &models.CommentLike{MemberID: m, CommentID: id} },
		}
	default:
		return likeTable{
			parent: &models.Location{}, resource: "Location", fk: "location_id", model: &models.LocationLike{},
			newRow: func(m, id uint) interface{} { return &models.LocationLike{MemberID: m, LocationID: id} },
		}
	}
}

// LikeRepository registers and removes likes on locations, posters and comments.
type LikeRepository interface {
	Like(ctx context.Context, target LikeTarget, memberID, targetID uint) error
	Unlike(ctx context.Context, target LikeTarget, memberID, targetID uint) error
	Count(ctx context.Context, target LikeTarget, targetID uint) (int64, error)
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Like inserts one (member, target) row. The existence check gives the
// friendly DUPLICATE_LIKE; the unique index decides under concurrency and
// is mapped to the same error. The member is locked before the target, the
// same order a member deletion takes.
func (r *likeRepository) Like(ctx context.Context, target LikeTarget, memberID, targetID uint) error {
	t := target.table()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockParent(tx, &models.Member{}, memberID); err != nil {
			return err
		}
		if err := lockParent(tx, t.parent, targetID); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(t.model).
			Where("member_id = ? AND "+t.fk+" = ?", memberID, targetID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return duplicateLike(target)
		}
		return tx.Create(t.newRow(memberID, targetID)).Error
	})
	switch {
	case database.IsUniqueViolation(err):
		return duplicateLike(target)
	case database.IsForeignKeyViolation(err):
		return models.NewNotFoundError(t.resource, targetID)
	}
	return err
}

// Unlike removes the member's like; NOT_FOUND when there was none.
func (r *likeRepository) Unlike(ctx context.Context, target LikeTarget, memberID, targetID uint) error {
	t := target.table()
	res := r.db.WithContext(ctx).
		Where("member_id = ? AND "+t.fk+" = ?", memberID, targetID).
		Delete(t.model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError(t.resource+" like", targetID)
	}
	return nil
}

func (r *likeRepository) Count(ctx context.Context, target LikeTarget, targetID uint) (int64, error) {
	t := target.table()
	var count int64
	err := r.db.WithContext(ctx).Model(t.model).Where(t.fk+" = ?", targetID).Count(&count).Error
	return count, err
}

func duplicateLike(target LikeTarget) error {
	return models.NewDuplicateError(models.CodeDuplicateLike, fmt.Sprintf("You already liked this %s", target))
}
