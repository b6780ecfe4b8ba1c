// Package highlights provides database operations for the highlight mirror.
//
// This package implements the HighlightRemote interface defined in
// internal/tracker/remote.go.
//
//	var _ tracker.HighlightRemote = (*Repository)(nil)
package highlights

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/shelfmark/shelfmark/internal/database"
	"github.com/shelfmark/shelfmark/internal/entities"
	"github.com/shelfmark/shelfmark/internal/tracker"
)

// Repository handles all highlight persistence operations.
type Repository struct {
	db *gorm.DB
}

var _ tracker.HighlightRemote = (*Repository)(nil)

// NewRepository creates a new highlights repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetHighlights retrieves every highlight belonging to a user, oldest
// first.
func (r *Repository) GetHighlights(ctx context.Context, userID string) ([]entities.Highlight, error) {
	var rows []database.HighlightRow
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	highlights := make([]entities.Highlight, 0, len(rows))
	for _, row := range rows {
		highlights = append(highlights, database.FromHighlightRow(row))
	}
	return highlights, nil
}

// AddHighlight inserts a new highlight for a user.
func (r *Repository) AddHighlight(ctx context.Context, userID string, h entities.Highlight) (entities.Highlight, error) {
	row := database.ToHighlightRow(userID, h)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return entities.Highlight{}, err
	}
	return database.FromHighlightRow(row), nil
}

// UpdateHighlight replaces a highlight's text and stamps the server-side
// modification date.
func (r *Repository) UpdateHighlight(ctx context.Context, id, text string) error {
	result := r.db.WithContext(ctx).Model(&database.HighlightRow{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"text":          text,
			"modified_date": time.Now().UTC().Format(time.RFC3339),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteHighlight removes a single highlight row.
func (r *Repository) DeleteHighlight(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&database.HighlightRow{}, "id = ?", id).Error
}

// ToggleFavorite writes the favorite flag.
func (r *Repository) ToggleFavorite(ctx context.Context, id string, isFavorite bool) error {
	result := r.db.WithContext(ctx).Model(&database.HighlightRow{}).
		Where("id = ?", id).
		Update("is_favorite", isFavorite)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
