package models

import (
	"time"

	"gorm.io/gorm"
)

// ImageRoutePrefix is the public path under which stored images are addressed.
// The image endpoint redirects from here to the media store's resolved URL.
const ImageRoutePrefix = "/api/images/"

// ImagePath returns the public path for a stored file name.
func ImagePath(storeName string) string {
	return ImageRoutePrefix + storeName
}

// MemberImage is a member's single profile picture.
type MemberImage struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	MemberID   uint      `gorm:"not null;uniqueIndex" json:"-"`
	UploadName string    `gorm:"size:255;not null" json:"uploadName"`
	StoreName  string    `gorm:"size:64;not null;uniqueIndex" json:"-"`
	URL        string    `gorm:"-" json:"url"`
	CreatedAt  time.Time `json:"createdAt"`
}

type PosterImage struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PosterID   uint      `gorm:"not null;index" json:"-"`
	UploadName string    `gorm:"size:255;not null" json:"uploadName"`
	StoreName  string    `gorm:"size:64;not null;uniqueIndex" json:"-"`
	URL        string    `gorm:"-" json:"url"`
	CreatedAt  time.Time `json:"createdAt"`
}

type LocationImage struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	LocationID uint      `gorm:"not null;index" json:"-"`
	UploadName string    `gorm:"size:255;not null" json:"uploadName"`
	StoreName  string    `gorm:"size:64;not null;uniqueIndex" json:"-"`
	URL        string    `gorm:"-" json:"url"`
	CreatedAt  time.Time `json:"createdAt"`
}

// AfterFind fills the public URL; gorm calls it for every loaded row.
func (i *MemberImage) AfterFind(_ *gorm.DB) error {
	i.URL = ImagePath(i.StoreName)
	return nil
}

func (i *PosterImage) AfterFind(_ *gorm.DB) error {
	i.URL = ImagePath(i.StoreName)
	return nil
}

func (i *LocationImage) AfterFind(_ *gorm.DB) error {
	i.URL = ImagePath(i.StoreName)
	return nil
}
