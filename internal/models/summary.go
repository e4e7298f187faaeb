package models

import "time"

// LocationSummary is a location row with read-time derived counts.
type LocationSummary struct {
	ID          uint            `json:"id"`
	Latitude    float64         `json:"latitude"`
	Longitude   float64         `json:"longitude"`
	Title       string          `json:"title"`
	Address     string          `json:"address"`
	Description string          `json:"description"`
	Approved    bool            `json:"approved"`
	CreatedAt   time.Time       `json:"createdAt"`
	LikeCount   int64           `json:"likeCount"`
	PosterCount int64           `json:"posterCount"`
	Liked       bool            `json:"liked"`
	Images      []LocationImage `gorm:"-" json:"images"`
}

// PosterSummary is a poster row with read-time derived counts.
type PosterSummary struct {
	ID             uint          `json:"id"`
	LocationID     uint          `json:"locationId"`
	MemberID       uint          `json:"memberId"`
	WriterNickname string        `json:"writerNickname"`
	Title          string        `json:"title"`
	Content        string        `json:"content"`
	CreatedAt      time.Time     `json:"createdAt"`
	LikeCount      int64         `json:"likeCount"`
	CommentCount   int64         `json:"commentCount"`
	Liked          bool          `json:"liked"`
	Images         []PosterImage `gorm:"-" json:"images"`
}

// CommentSummary is a comment row with its read-time like count.
type CommentSummary struct {
	ID             uint      `json:"id"`
	PosterID       uint      `json:"posterId"`
	MemberID       uint      `json:"memberId"`
	WriterNickname string    `json:"writerNickname"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
	LikeCount      int64     `json:"likeCount"`
	Liked          bool      `json:"liked"`
}

// Page is the envelope for paginated listings.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	TotalCount int64 `json:"totalCount"`
}
