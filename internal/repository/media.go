package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/atinyakov/CropCircle/internal/models"
)

// PostgresMediaRepository stores metadata for uploaded files.
type PostgresMediaRepository struct {
	DB *sql.DB
}

// NewPostgresMediaRepository creates a PostgresMediaRepository on db.
func NewPostgresMediaRepository(db *sql.DB) *PostgresMediaRepository {
	return &PostgresMediaRepository{DB: db}
}

// AddMedia records m, stored on disk at path, for email and fills in CreatedAt.
func (r *PostgresMediaRepository) AddMedia(ctx context.Context, email, path string, m *models.Media) error {
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO media (id, user_email, filename, content_type, size, caption, path)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, m.ID, email, m.Filename, m.ContentType, m.Size, m.Caption, path).Scan(&m.CreatedAt)
	if err != nil {
		return fmt.Errorf("AddMedia: %w", err)
	}
	return nil
}
