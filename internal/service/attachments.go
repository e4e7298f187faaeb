package service

import (
	"context"
	"io"
	"log/slog"

	"spotboard/internal/media"
)

// Attachment is one uploaded file handed to a create operation.
type Attachment struct {
	Filename string
	Content  io.Reader
}

type storedFile struct {
	uploadName string
	storeName  string
}

// storeAll writes every attachment before the owning row is inserted. If
// one write fails the files already written are removed again.
func storeAll(ctx context.Context, store media.Store, logger *slog.Logger, atts []Attachment) ([]storedFile, error) {
	stored := make([]storedFile, 0, len(atts))
	for _, a := range atts {
		name, err := store.Store(ctx, a.Filename, a.Content)
		if err != nil {
			discard(ctx, store, logger, stored)
			return nil, err
		}
		stored = append(stored, storedFile{uploadName: a.Filename, storeName: name})
	}
	return stored, nil
}

// discard removes files whose rows were never committed.
func discard(ctx context.Context, store media.Store, logger *slog.Logger, files []storedFile) {
	ctx = context.WithoutCancel(ctx)
	for _, f := range files {
		if _, err := store.Delete(ctx, f.storeName); err != nil {
			logger.WarnContext(ctx, "failed to discard uncommitted media file",
				slog.String("store_name", f.storeName), slog.String("error", err.Error()))
		}
	}
}
