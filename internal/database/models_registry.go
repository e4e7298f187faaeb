package database

import "spotboard/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.Member{},
		&models.MemberImage{},
		&models.Location{},
		&models.LocationImage{},
		&models.Poster{},
		&models.PosterImage{},
		&models.Comment{},
		&models.LocationLike{},
		&models.PosterLike{},
		&models.CommentLike{},
	}
}
