package repository

import (
	"context"
	"errors"

	"spotboard/internal/models"

	"gorm.io/gorm"
)

// MemberRepository defines the interface for member data operations
type MemberRepository interface {
	Create(ctx context.Context, member *models.Member) error
	GetByID(ctx context.Context, id uint) (*models.Member, error)
	GetByLoginID(ctx context.Context, loginID string) (*models.Member, error)
	LoginIDTaken(ctx context.Context, loginID string) (bool, error)
	NicknameTaken(ctx context.Context, nickname string, exceptID uint) (bool, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	UpdateNickname(ctx context.Context, id uint, nickname string) error
	SetRole(ctx context.Context, id uint, role models.Role) error
	ReplaceImage(ctx context.Context, memberID uint, img *models.MemberImage) (replaced string, err error)
}

type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) Create(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *memberRepository) GetByID(ctx context.Context, id uint) (*models.Member, error) {
	var member models.Member
	err := r.db.WithContext(ctx).Preload("Image").First(&member, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Member", id)
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// GetByLoginID returns (nil, nil) when no member has loginID.
func (r *memberRepository) GetByLoginID(ctx context.Context, loginID string) (*models.Member, error) {
	var members []models.Member
	if err := r.db.WithContext(ctx).Where("login_id = ?", loginID).Limit(1).Find(&members).Error; err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}
	return &members[0], nil
}

func (r *memberRepository) LoginIDTaken(ctx context.Context, loginID string) (bool, error) {
	return r.exists(ctx, r.db.Where("login_id = ?", loginID))
}

func (r *memberRepository) NicknameTaken(ctx context.Context, nickname string, exceptID uint) (bool, error) {
	q := r.db.Where("nickname = ?", nickname)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	return r.exists(ctx, q)
}

func (r *memberRepository) EmailTaken(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, r.db.Where("email = ?", email))
}

func (r *memberRepository) exists(ctx context.Context, q *gorm.DB) (bool, error) {
	var count int64
	if err := q.WithContext(ctx).Model(&models.Member{}).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *memberRepository) UpdateNickname(ctx context.Context, id uint, nickname string) error {
	res := r.db.WithContext(ctx).Model(&models.Member{ID: id}).Update("nickname", nickname)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Member", id)
	}
	return nil
}

func (r *memberRepository) SetRole(ctx context.Context, id uint, role models.Role) error {
	res := r.db.WithContext(ctx).Model(&models.Member{ID: id}).Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Member", id)
	}
	return nil
}

// ReplaceImage swaps the member's profile image row for img in one
// transaction and returns the store name of the row it replaced, if any.
// The caller deletes that file once this returns.
func (r *memberRepository) ReplaceImage(ctx context.Context, memberID uint, img *models.MemberImage) (string, error) {
	var replaced string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockParent(tx, &models.Member{}, memberID); err != nil {
			return err
		}

		var old []string
		if err := tx.Model(&models.MemberImage{}).Where("member_id = ?", memberID).Pluck("store_name", &old).Error; err != nil {
			return err
		}
		if len(old) > 0 {
			if err := tx.Where("member_id = ?", memberID).Delete(&models.MemberImage{}).Error; err != nil {
				return err
			}
			replaced = old[0]
		}

		img.MemberID = memberID
		return tx.Create(img).Error
	})
	if err != nil {
		return "", err
	}
	return replaced, nil
}
