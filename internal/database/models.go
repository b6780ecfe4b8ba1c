package database

import (
	"encoding/json"
	"time"

	"github.com/shelfmark/shelfmark/internal/entities"
	"github.com/shelfmark/shelfmark/internal/progress"
)

// BookRow is the persisted shape of a book. Domain timestamps cross this
// boundary as ISO-8601 strings (empty when unset); CreatedAt/UpdatedAt are
// server-side bookkeeping stamped by gorm.
type BookRow struct {
	ID            string `gorm:"primaryKey;size:32"`
	UserID        string `gorm:"index;size:64"`
	Title         string `gorm:"size:512"`
	Author        string `gorm:"size:256"`
	TotalPages    int
	CurrentPage   int
	Status        string `gorm:"size:20"`
	StartDate     string `gorm:"size:40"`
	CompletedDate string `gorm:"size:40"`
	Genre         string `gorm:"size:100"`
	Categories    string `gorm:"type:text"` // JSON-encoded string array
	Description   string `gorm:"type:text"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (BookRow) TableName() string {
	return "books"
}

// HighlightRow is the persisted shape of a highlight.
type HighlightRow struct {
	ID           string `gorm:"primaryKey;size:32"`
	UserID       string `gorm:"index;size:64"`
	BookID       string `gorm:"index;size:32"`
	Text         string `gorm:"type:text"`
	Page         int
	IsFavorite   bool   `gorm:"default:false"`
	CreatedDate  string `gorm:"size:40"`
	ModifiedDate string `gorm:"size:40"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (HighlightRow) TableName() string {
	return "highlights"
}

// SnapshotRow is the key-value slot holding the serialized local state.
type SnapshotRow struct {
	Key       string `gorm:"primaryKey;size:64"`
	Version   int
	Payload   []byte `gorm:"type:blob"`
	UpdatedAt time.Time
}

func (SnapshotRow) TableName() string {
	return "snapshots"
}

// ToBookRow converts a domain book for persistence.
func ToBookRow(userID string, b entities.Book) BookRow {
	categories, _ := json.Marshal(b.Categories)
	return BookRow{
		ID:            b.ID,
		UserID:        userID,
		Title:         b.Title,
		Author:        b.Author,
		TotalPages:    b.TotalPages,
		CurrentPage:   b.CurrentPage,
		Status:        string(b.Status),
		StartDate:     progress.FormatTime(b.StartDate),
		CompletedDate: progress.FormatTime(b.CompletedDate),
		Genre:         b.Genre,
		Categories:    string(categories),
		Description:   b.Description,
	}
}

// FromBookRow converts a persisted row back into a domain book. Malformed
// dates or categories degrade to unset rather than failing the load.
func FromBookRow(row BookRow) entities.Book {
	var categories []string
	if row.Categories != "" {
		_ = json.Unmarshal([]byte(row.Categories), &categories)
	}
	return entities.Book{
		ID:            row.ID,
		Title:         row.Title,
		Author:        row.Author,
		TotalPages:    row.TotalPages,
		CurrentPage:   row.CurrentPage,
		Status:        entities.ReadingStatus(row.Status),
		StartDate:     progress.ParseTime(row.StartDate),
		CompletedDate: progress.ParseTime(row.CompletedDate),
		Genre:         row.Genre,
		Categories:    categories,
		Description:   row.Description,
	}
}

// ToHighlightRow converts a domain highlight for persistence.
func ToHighlightRow(userID string, h entities.Highlight) HighlightRow {
	created := h.CreatedAt
	return HighlightRow{
		ID:           h.ID,
		UserID:       userID,
		BookID:       h.BookID,
		Text:         h.Text,
		Page:         h.Page,
		IsFavorite:   h.IsFavorite,
		CreatedDate:  progress.FormatTime(&created),
		ModifiedDate: progress.FormatTime(h.ModifiedAt),
	}
}

// FromHighlightRow converts a persisted row back into a domain highlight.
func FromHighlightRow(row HighlightRow) entities.Highlight {
	h := entities.Highlight{
		ID:         row.ID,
		BookID:     row.BookID,
		Text:       row.Text,
		Page:       row.Page,
		IsFavorite: row.IsFavorite,
		ModifiedAt: progress.ParseTime(row.ModifiedDate),
	}
	if created := progress.ParseTime(row.CreatedDate); created != nil {
		h.CreatedAt = *created
	}
	return h
}
