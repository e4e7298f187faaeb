package models

import "time"

// LocationLike records one member's approval of a location. The composite
// unique index is the real guard against double likes.
type LocationLike struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	MemberID   uint      `gorm:"not null;uniqueIndex:idx_location_likes_member_target,priority:1" json:"memberId"`
	LocationID uint      `gorm:"not null;uniqueIndex:idx_location_likes_member_target,priority:2;index" json:"locationId"`
	Member     *Member   `gorm:"foreignKey:MemberID;constraint:OnDelete:RESTRICT" json:"-"`
	Location   *Location `gorm:"foreignKey:LocationID;constraint:OnDelete:RESTRICT" json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
}

type PosterLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	MemberID  uint      `gorm:"not null;uniqueIndex:idx_poster_likes_member_target,priority:1" json:"memberId"`
	PosterID  uint      `gorm:"not null;uniqueIndex:idx_poster_likes_member_target,priority:2;index" json:"posterId"`
	Member    *Member   `gorm:"foreignKey:MemberID;constraint:OnDelete:RESTRICT" json:"-"`
	Poster    *Poster   `gorm:"foreignKey:PosterID;constraint:OnDelete:RESTRICT" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

type CommentLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	MemberID  uint      `gorm:"not null;uniqueIndex:idx_comment_likes_member_target,priority:1" json:"memberId"`
	CommentID uint      `gorm:"not null;uniqueIndex:idx_comment_likes_member_target,priority:2;index" json:"commentId"`
	Member    *Member   `gorm:"foreignKey:MemberID;constraint:OnDelete:RESTRICT" json:"-"`
	Comment   *Comment  `gorm:"foreignKey:CommentID;constraint:OnDelete:RESTRICT" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}
