// Package books provides database operations for the book mirror.
//
// This package implements the BookRemote interface defined in
// internal/tracker/remote.go.
//
//	var _ tracker.BookRemote = (*Repository)(nil)
package books

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/shelfmark/shelfmark/internal/database"
	"github.com/shelfmark/shelfmark/internal/entities"
	"github.com/shelfmark/shelfmark/internal/tracker"
)

// Repository handles all book persistence operations.
type Repository struct {
	db *gorm.DB
}

var _ tracker.BookRemote = (*Repository)(nil)

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetBooks retrieves every book belonging to a user, oldest first.
func (r *Repository) GetBooks(ctx context.Context, userID string) ([]entities.Book, error) {
	var rows []database.BookRow
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	books := make([]entities.Book, 0, len(rows))
	for _, row := range rows {
		books = append(books, database.FromBookRow(row))
	}
	return books, nil
}

// GetBook retrieves a single book by id.
func (r *Repository) GetBook(ctx context.Context, id string) (entities.Book, error) {
	var row database.BookRow
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return entities.Book{}, err
	}
	return database.FromBookRow(row), nil
}

// AddBook inserts a new book for a user.
func (r *Repository) AddBook(ctx context.Context, userID string, book entities.Book) (entities.Book, error) {
	row := database.ToBookRow(userID, book)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return entities.Book{}, err
	}
	return database.FromBookRow(row), nil
}

// patchColumns maps remote patch field names onto columns. Only fields the
// engine actually patches are listed; anything else is rejected.
var patchColumns = map[string]string{
	"title":       "title",
	"author":      "author",
	"description": "description",
	"genre":       "genre",
	"total_pages": "total_pages",
}

// UpdateBook applies a partial field update and answers with the
// server-side update timestamp.
func (r *Repository) UpdateBook(ctx context.Context, id string, fields tracker.BookPatch) (tracker.PatchResult, error) {
	updates := make(map[string]any, len(fields)+1)
	for key, value := range fields {
		column, ok := patchColumns[key]
		if !ok {
			return tracker.PatchResult{}, fmt.Errorf("unknown book field %q", key)
		}
		updates[column] = value
	}
	now := time.Now().UTC()
	updates["updated_at"] = now

	result := r.db.WithContext(ctx).Model(&database.BookRow{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return tracker.PatchResult{}, result.Error
	}
	if result.RowsAffected == 0 {
		return tracker.PatchResult{}, gorm.ErrRecordNotFound
	}
	return tracker.PatchResult{UpdatedAt: now.Format(time.RFC3339)}, nil
}

// DeleteBook removes a book row and cascades to its highlight rows in one
// transaction.
func (r *Repository) DeleteBook(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("book_id = ?", id).Delete(&database.HighlightRow{}).Error; err != nil {
			return err
		}
		return tx.Delete(&database.BookRow{}, "id = ?", id).Error
	})
}

// UpdateReadingStatus persists a status change together with the date
// stamps it implies, in a single statement so a concurrent reader never
// sees them split.
func (r *Repository) UpdateReadingStatus(ctx context.Context, id string, status entities.ReadingStatus) error {
	var row database.BookRow
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	updates := map[string]any{"status": string(status)}
	switch status {
	case entities.StatusCompleted:
		if row.StartDate == "" {
			updates["start_date"] = now
		}
		updates["completed_date"] = now
	case entities.StatusNotStarted:
		updates["start_date"] = ""
		updates["completed_date"] = ""
	case entities.StatusInProgress:
		if row.StartDate == "" {
			updates["start_date"] = now
		}
		updates["completed_date"] = ""
	}

	return r.db.WithContext(ctx).Model(&database.BookRow{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// UpdateReadingProgress persists a page change.
func (r *Repository) UpdateReadingProgress(ctx context.Context, id string, currentPage int) error {
	result := r.db.WithContext(ctx).Model(&database.BookRow{}).
		Where("id = ?", id).
		Update("current_page", currentPage)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
