// Package service implements the application's use cases on top of the
// repositories, the media store and the cascade coordinator.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"spotboard/internal/media"
	"spotboard/internal/models"
	"spotboard/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CascadeReport summarises one cascading deletion.
type CascadeReport struct {
	Entity       string           `json:"entity"`
	ID           uint             `json:"id"`
	Rows         map[string]int64 `json:"rows"`
	FilesRemoved int              `json:"filesRemoved"`
	FilesMissing int              `json:"filesMissing"`
	FileErrors   int              `json:"fileErrors"`

	files []string
}

func (r *CascadeReport) logAttrs() []any {
	attrs := []any{
		slog.String("entity", r.Entity),
		slog.Any("id", r.ID),
		slog.Int("files_removed", r.FilesRemoved),
		slog.Int("files_missing", r.FilesMissing),
		slog.Int("file_errors", r.FileErrors),
	}
	for table, n := range r.Rows {
		attrs = append(attrs, slog.Int64("rows."+table, n))
	}
	return attrs
}

// Cascade deletes a parent entity together with every dependent row and
// stored file. Rows go children first inside one transaction; files are
// removed only after that transaction commits.
type Cascade struct {
	db     *gorm.DB
	media  media.Store
	logger *slog.Logger
}

func NewCascade(db *gorm.DB, store media.Store, logger *slog.Logger) *Cascade {
	return &Cascade{db: db, media: store, logger: logger}
}

func (c *Cascade) DeleteLocation(ctx context.Context, id uint) (*CascadeReport, error) {
	return c.run(ctx, "location", id, func(w *walker) error {
		if err := w.lockRoot(&models.Location{}, "Location", id); err != nil {
			return err
		}
		return w.locations([]uint{id})
	})
}

func (c *Cascade) DeletePoster(ctx context.Context, id uint) (*CascadeReport, error) {
	return c.run(ctx, "poster", id, func(w *walker) error {
		if err := w.lockRoot(&models.Poster{}, "Poster", id); err != nil {
			return err
		}
		return w.posters([]uint{id})
	})
}

func (c *Cascade) DeleteComment(ctx context.Context, id uint) (*CascadeReport, error) {
	return c.run(ctx, "comment", id, func(w *walker) error {
		if err := w.lockRoot(&models.Comment{}, "Comment", id); err != nil {
			return err
		}
		return w.comments([]uint{id})
	})
}

// DeleteMember removes the member's posters (with their subtrees), the
// comments and likes the member wrote elsewhere, the profile image and the
// member row.
func (c *Cascade) DeleteMember(ctx context.Context, id uint) (*CascadeReport, error) {
	return c.run(ctx, "member", id, func(w *walker) error {
		if err := w.lockRoot(&models.Member{}, "Member", id); err != nil {
			return err
		}

		posterIDs, err := w.lockIDs(&models.Poster{}, "member_id = ?", id)
		if err != nil {
			return err
		}
		if err := w.posters(posterIDs); err != nil {
			return err
		}

		commentIDs, err := w.lockIDs(&models.Comment{}, "member_id = ?", id)
		if err != nil {
			return err
		}
		if err := w.comments(commentIDs); err != nil {
			return err
		}

		if err := w.delete(&models.LocationLike{}, "location_likes", "member_id = ?", id); err != nil {
			return err
		}
		if err := w.delete(&models.PosterLike{}, "poster_likes", "member_id = ?", id); err != nil {
			return err
		}
		if err := w.delete(&models.CommentLike{}, "comment_likes", "member_id = ?", id); err != nil {
			return err
		}

		if err := w.collectFiles(&models.MemberImage{}, "member_id = ?", id); err != nil {
			return err
		}
		if err := w.delete(&models.MemberImage{}, "member_images", "member_id = ?", id); err != nil {
			return err
		}
		return w.delete(&models.Member{}, "members", "id = ?", id)
	})
}

// DeleteLocationImage removes one image of a location.
func (c *Cascade) DeleteLocationImage(ctx context.Context, locationID, imageID uint) (*CascadeReport, error) {
	return c.run(ctx, "location_image", imageID, func(w *walker) error {
		return w.image(&models.LocationImage{}, "location_images", "location_id", locationID, imageID)
	})
}

// DeletePosterImage removes one image of a poster.
func (c *Cascade) DeletePosterImage(ctx context.Context, posterID, imageID uint) (*CascadeReport, error) {
	return c.run(ctx, "poster_image", imageID, func(w *walker) error {
		return w.image(&models.PosterImage{}, "poster_images", "poster_id", posterID, imageID)
	})
}

// DeleteMemberImage removes the member's profile image.
func (c *Cascade) DeleteMemberImage(ctx context.Context, memberID uint) (*CascadeReport, error) {
	return c.run(ctx, "member_image", memberID, func(w *walker) error {
		if err := w.collectFiles(&models.MemberImage{}, "member_id = ?", memberID); err != nil {
			return err
		}
		if len(w.rep.files) == 0 {
			return models.NewNotFoundError("Member image", memberID)
		}
		return w.delete(&models.MemberImage{}, "member_images", "member_id = ?", memberID)
	})
}

func (c *Cascade) run(ctx context.Context, entity string, id uint, fn func(*walker) error) (*CascadeReport, error) {
	span, ctx := observability.NewSpan(ctx, "cascade."+entity,
		attribute.String("cascade.entity", entity),
		attribute.Int64("cascade.id", int64(id)),
	)
	defer span.End()

	rep := &CascadeReport{Entity: entity, ID: id, Rows: map[string]int64{}}
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&walker{tx: tx, rep: rep})
	})
	if err != nil {
		span.SetError(err)
		var appErr *models.AppError
		if !errors.As(err, &appErr) {
			c.logger.ErrorContext(ctx, "cascade delete rolled back", slog.String("entity", entity), slog.Any("id", id), slog.String("error", err.Error()))
		}
		return nil, err
	}

	// The rows are gone; a cancelled request must not leave their files.
	c.removeFiles(context.WithoutCancel(ctx), rep)

	observability.CascadeDeletes.WithLabelValues(entity).Inc()
	span.AddAttributes(
		attribute.Int("cascade.files_removed", rep.FilesRemoved),
		attribute.Int("cascade.file_errors", rep.FileErrors),
	)
	c.logger.InfoContext(ctx, "cascade delete committed", rep.logAttrs()...)
	return rep, nil
}

func (c *Cascade) removeFiles(ctx context.Context, rep *CascadeReport) {
	for _, name := range rep.files {
		removed, err := c.media.Delete(ctx, name)
		switch {
		case err != nil:
			rep.FileErrors++
			observability.CascadeFiles.WithLabelValues("error").Inc()
			c.logger.WarnContext(ctx, "failed to remove media file after delete",
				slog.String("store_name", name), slog.String("error", err.Error()))
		case removed:
			rep.FilesRemoved++
			observability.CascadeFiles.WithLabelValues("removed").Inc()
		default:
			rep.FilesMissing++
			observability.CascadeFiles.WithLabelValues("missing").Inc()
		}
	}
}

// walker performs the row deletions of one cascade inside its transaction.
type walker struct {
	tx  *gorm.DB
	rep *CascadeReport
}

func (w *walker) lockRoot(model interface{}, resource string, id uint) error {
	ids, err := w.lockIDs(model, "id = ?", id)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return models.NewNotFoundError(resource, id)
	}
	return nil
}

// lockIDs selects matching ids FOR UPDATE so concurrent likes and child
// inserts, which share-lock their parent, wait for this transaction.
func (w *walker) lockIDs(model interface{}, query string, args ...interface{}) ([]uint, error) {
	var ids []uint
	err := w.tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Model(model).
		Where(query, args...).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("lock %T: %w", model, err)
	}
	return ids, nil
}

func (w *walker) delete(model interface{}, table, query string, args ...interface{}) error {
	res := w.tx.Where(query, args...).Delete(model)
	if res.Error != nil {
		return fmt.Errorf("delete %s: %w", table, res.Error)
	}
	w.rep.Rows[table] += res.RowsAffected
	return nil
}

func (w *walker) collectFiles(model interface{}, query string, args ...interface{}) error {
	var names []string
	if err := w.tx.Model(model).Where(query, args...).Pluck("store_name", &names).Error; err != nil {
		return fmt.Errorf("collect %T files: %w", model, err)
	}
	w.rep.files = append(w.rep.files, names...)
	return nil
}

func (w *walker) locations(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	posterIDs, err := w.lockIDs(&models.Poster{}, "location_id IN ?", ids)
	if err != nil {
		return err
	}
	if err := w.posters(posterIDs); err != nil {
		return err
	}
	if err := w.delete(&models.LocationLike{}, "location_likes", "location_id IN ?", ids); err != nil {
		return err
	}
	if err := w.collectFiles(&models.LocationImage{}, "location_id IN ?", ids); err != nil {
		return err
	}
	if err := w.delete(&models.LocationImage{}, "location_images", "location_id IN ?", ids); err != nil {
		return err
	}
	return w.delete(&models.Location{}, "locations", "id IN ?", ids)
}

func (w *walker) posters(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	commentIDs, err := w.lockIDs(&models.Comment{}, "poster_id IN ?", ids)
	if err != nil {
		return err
	}
	if err := w.comments(commentIDs); err != nil {
		return err
	}
	if err := w.delete(&models.PosterLike{}, "poster_likes", "poster_id IN ?", ids); err != nil {
		return err
	}
	if err := w.collectFiles(&models.PosterImage{}, "poster_id IN ?", ids); err != nil {
		return err
	}
	if err := w.delete(&models.PosterImage{}, "poster_images", "poster_id IN ?", ids); err != nil {
		return err
	}
	return w.delete(&models.Poster{}, "posters", "id IN ?", ids)
}

func (w *walker) comments(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	if err := w.delete(&models.CommentLike{}, "comment_likes", "comment_id IN ?", ids); err != nil {
		return err
	}
	return w.delete(&models.Comment{}, "comments", "id IN ?", ids)
}

func (w *walker) image(model interface{}, table, parentCol string, parentID, imageID uint) error {
	where := "id = ? AND " + parentCol + " = ?"
	if err := w.collectFiles(model, where, imageID, parentID); err != nil {
		return err
	}
	if len(w.rep.files) == 0 {
		return models.NewNotFoundError("Image", imageID)
	}
	return w.delete(model, table, where, imageID, parentID)
}
