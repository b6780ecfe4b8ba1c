package entities

import "time"

// ReadingStatus is the lifecycle status of a tracked book. The three values
// form a closed set; the transition policy in internal/progress matches on
// them exhaustively.
type ReadingStatus string

const (
	StatusNotStarted ReadingStatus = "NOT_STARTED"
	StatusInProgress ReadingStatus = "IN_PROGRESS"
	StatusCompleted  ReadingStatus = "COMPLETED"
)

// Valid reports whether s is one of the known statuses.
func (s ReadingStatus) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Book is a tracked reading item. CurrentPage and Status are kept mutually
// consistent by the store: the only ways to change either are the progress
// derivation and the explicit status-change paths.
type Book struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Author        string        `json:"author"`
	TotalPages    int           `json:"total_pages"`
	CurrentPage   int           `json:"current_page"`
	Status        ReadingStatus `json:"status"`
	StartDate     *time.Time    `json:"start_date,omitempty"`
	CompletedDate *time.Time    `json:"completed_date,omitempty"`
	Genre         string        `json:"genre,omitempty"`
	Categories    []string      `json:"categories,omitempty"`
	Description   string        `json:"description,omitempty"`
}

// Highlight is a user-captured excerpt tied to one book. The relation is
// one-directional: a highlight stores its BookID, books never embed
// highlight lists.
type Highlight struct {
	ID         string     `json:"id"`
	BookID     string     `json:"book_id"`
	Text       string     `json:"text"`
	Page       int        `json:"page"`
	IsFavorite bool       `json:"is_favorite"`
	CreatedAt  time.Time  `json:"created_at"`
	ModifiedAt *time.Time `json:"modified_at,omitempty"`
}

// SortKey returns the timestamp highlights are ordered by: the last
// modification when one exists, otherwise the creation time.
func (h Highlight) SortKey() time.Time {
	if h.ModifiedAt != nil {
		return *h.ModifiedAt
	}
	return h.CreatedAt
}

// EnrichedHighlight joins a highlight with its book's display fields at view
// time. It is derived, never persisted.
type EnrichedHighlight struct {
	Highlight
	BookTitle       string `json:"book_title"`
	BookAuthor      string `json:"book_author"`
	BookCurrentPage int    `json:"book_current_page"`
	BookTotalPages  int    `json:"book_total_pages"`
}
