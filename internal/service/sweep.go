package service

import (
	"context"
	"fmt"

	"spotboard/internal/media"
	"spotboard/internal/models"

	"gorm.io/gorm"
)

// SweepOrphanMedia removes stored files that no image row references.
func SweepOrphanMedia(ctx context.Context, db *gorm.DB, store media.Store, dryRun bool) (*media.SweepResult, error) {
	referenced := map[string]struct{}{}
	for _, model := range []interface{}{&models.LocationImage{}, &models.PosterImage{}, &models.MemberImage{}} {
		var names []string
		if err := db.WithContext(ctx).Model(model).Pluck("store_name", &names).Error; err != nil {
			return nil, fmt.Errorf("collect referenced media: %w", err)
		}
		for _, n := range names {
			referenced[n] = struct{}{}
		}
	}

	return media.Sweep(ctx, store, func(name string) bool {
		_, ok := referenced[name]
		return ok
	}, dryRun)
}
