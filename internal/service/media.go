package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/atinyakov/CropCircle/internal/models"
)

// ErrEmptyUpload is returned when an upload carries no bytes.
var ErrEmptyUpload = errors.New("empty upload")

// MediaRepository defines the persistence operations needed by MediaService.
type MediaRepository interface {
	AddMedia(ctx context.Context, email, path string, m *models.Media) error
}

// MediaService stores uploaded files under a directory and records their metadata.
type MediaService struct {
	repo MediaRepository
	dir  string
}

// NewMediaService constructs a MediaService writing files into dir.
func NewMediaService(repo MediaRepository, dir string) *MediaService {
	return &MediaService{repo: repo, dir: dir}
}

// Upload copies r to disk and records it for email. The file is removed
// again if the metadata cannot be stored.
func (s *MediaService) Upload(ctx context.Context, email string, m models.Media, r io.Reader) (*models.Media, error) {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}

	m.ID = uuid.NewString()
	path := filepath.Join(s.dir, m.ID)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, fmt.Errorf("create media file: %w", err)
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && n == 0 {
		err = ErrEmptyUpload
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, err
	}
	m.Size = n

	if err := s.repo.AddMedia(ctx, email, path, &m); err != nil {
		_ = os.Remove(path)
		return nil, err
	}
	return &m, nil
}
