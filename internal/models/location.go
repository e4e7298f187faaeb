package models

import "time"

// Location is a geocoded spot that posters attach to. Locations have no
// owner; changes after creation are an ADMIN capability.
type Location struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Latitude    float64         `gorm:"not null;index:idx_locations_coords,priority:1" json:"latitude"`
	Longitude   float64         `gorm:"not null;index:idx_locations_coords,priority:2" json:"longitude"`
	Title       string          `gorm:"size:100;not null" json:"title"`
	Address     string          `gorm:"size:255" json:"address"`
	Description string          `gorm:"type:text" json:"description"`
	Approved    bool            `gorm:"not null;default:false" json:"approved"`
	Images      []LocationImage `gorm:"foreignKey:LocationID" json:"images,omitempty"`
	CreatedAt   time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Poster is a member-authored post scoped to one location. Parent rows are
// protected by RESTRICT foreign keys; deletions go through the cascade.
type Poster struct {
	ID         uint          `gorm:"primaryKey" json:"id"`
	LocationID uint          `gorm:"not null;index" json:"locationId"`
	Location   *Location     `gorm:"foreignKey:LocationID;constraint:OnDelete:RESTRICT" json:"-"`
	MemberID   uint          `gorm:"not null;index" json:"memberId"`
	Writer     *Member       `gorm:"foreignKey:MemberID;constraint:OnDelete:RESTRICT" json:"writer,omitempty"`
	Title      string        `gorm:"size:100;not null" json:"title"`
	Content    string        `gorm:"type:text;not null" json:"content"`
	Images     []PosterImage `gorm:"foreignKey:PosterID" json:"images,omitempty"`
	CreatedAt  time.Time     `gorm:"index" json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

// Comment is a member-authored reply to a poster.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PosterID  uint      `gorm:"not null;index" json:"posterId"`
	Poster    *Poster   `gorm:"foreignKey:PosterID;constraint:OnDelete:RESTRICT" json:"-"`
	MemberID  uint      `gorm:"not null;index" json:"memberId"`
	Writer    *Member   `gorm:"foreignKey:MemberID;constraint:OnDelete:RESTRICT" json:"writer,omitempty"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
