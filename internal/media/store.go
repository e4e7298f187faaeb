// Package media stores uploaded files under generated names and resolves
// them to public URLs.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"regexp"
	"slices"
	"strings"

	"spotboard/internal/models"
	"spotboard/internal/observability"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// Store persists binary uploads. Names returned by Store are opaque and
// unique; Delete is idempotent and reports whether a file was removed.
type Store interface {
	Store(ctx context.Context, originalName string, r io.Reader) (string, error)
	Delete(ctx context.Context, name string) (bool, error)
	Resolve(name string) string
	List(ctx context.Context) ([]string, error)
}

// Config controls where files live and what is accepted.
type Config struct {
	Dir               string
	PublicURL         string
	MaxFileSize       int64
	AllowedExtensions []string
}

var storeNamePattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.[a-z0-9]+$`)

// LocalStore keeps files in a flat directory on an afero filesystem.
type LocalStore struct {
	fs  afero.Fs
	cfg Config
}

// NewLocalStore creates the media directory if needed.
func NewLocalStore(fsys afero.Fs, cfg Config) (*LocalStore, error) {
	if cfg.Dir == "" {
		return nil, errors.New("media directory is required")
	}
	if err := fsys.MkdirAll(cfg.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	cfg.PublicURL = strings.TrimRight(cfg.PublicURL, "/")
	return &LocalStore{fs: fsys, cfg: cfg}, nil
}

// Extension returns the lowercased text after the last dot, or "" when the
// name has none.
func Extension(name string) string {
	i := strings.LastIndex(name, ".")
	if i < 0 || i == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

// Store writes r under a fresh uuid name keeping the original extension.
func (s *LocalStore) Store(ctx context.Context, originalName string, r io.Reader) (string, error) {
	ext := Extension(originalName)
	if ext == "" {
		observability.MediaOperations.WithLabelValues("store", "rejected").Inc()
		return "", models.NewUnsupportedFormatError("File has no extension")
	}
	if !slices.Contains(s.cfg.AllowedExtensions, ext) {
		observability.MediaOperations.WithLabelValues("store", "rejected").Inc()
		return "", models.NewUnsupportedFormatError(fmt.Sprintf("Extension %q is not allowed", ext))
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := uuid.NewString() + "." + ext
	full := path.Join(s.cfg.Dir, name)

	f, err := s.fs.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		observability.MediaOperations.WithLabelValues("store", "error").Inc()
		return "", fmt.Errorf("create media file: %w", err)
	}

	n, copyErr := io.Copy(f, io.LimitReader(r, s.cfg.MaxFileSize+1))
	closeErr := f.Close()

	switch {
	case copyErr != nil || closeErr != nil:
		_ = s.fs.Remove(full)
		observability.MediaOperations.WithLabelValues("store", "error").Inc()
		return "", fmt.Errorf("write media file: %w", errors.Join(copyErr, closeErr))
	case n > s.cfg.MaxFileSize:
		_ = s.fs.Remove(full)
		observability.MediaOperations.WithLabelValues("store", "rejected").Inc()
		return "", models.NewFileTooLargeError(s.cfg.MaxFileSize)
	}

	observability.MediaOperations.WithLabelValues("store", "ok").Inc()
	return name, nil
}

// Delete removes a stored file. A missing file is not an error.
func (s *LocalStore) Delete(_ context.Context, name string) (bool, error) {
	if !storeNamePattern.MatchString(name) {
		return false, fmt.Errorf("invalid media name %q", name)
	}
	err := s.fs.Remove(path.Join(s.cfg.Dir, name))
	switch {
	case err == nil:
		observability.MediaOperations.WithLabelValues("delete", "ok").Inc()
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		observability.MediaOperations.WithLabelValues("delete", "missing").Inc()
		return false, nil
	default:
		observability.MediaOperations.WithLabelValues("delete", "error").Inc()
		return false, fmt.Errorf("delete media file: %w", err)
	}
}

// Resolve maps a stored name to the URL clients fetch it from.
func (s *LocalStore) Resolve(name string) string {
	return s.cfg.PublicURL + "/" + name
}

// Exists reports whether name is a valid stored file.
func (s *LocalStore) Exists(name string) bool {
	if !storeNamePattern.MatchString(name) {
		return false
	}
	ok, err := afero.Exists(s.fs, path.Join(s.cfg.Dir, name))
	return err == nil && ok
}

// List returns every stored file name.
func (s *LocalStore) List(_ context.Context) ([]string, error) {
	entries, err := afero.ReadDir(s.fs, s.cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("list media dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && storeNamePattern.MatchString(e.Name()) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Open returns a reader for a stored file.
func (s *LocalStore) Open(name string) (afero.File, error) {
	if !storeNamePattern.MatchString(name) {
		return nil, fs.ErrNotExist
	}
	return s.fs.Open(path.Join(s.cfg.Dir, name))
}
