package tracker

import (
	"context"

	"github.com/shelfmark/shelfmark/internal/entities"
)

// BookPatch carries partial book fields for a remote update. Keys are the
// remote field names: "title", "author", "description", "genre",
// "total_pages".
type BookPatch map[string]any

// PatchResult is the remote store's acknowledgement of a partial update.
// The timestamp is an ISO-8601 string generated server-side.
type PatchResult struct {
	UpdatedAt string
}

// BookRemote is the remote persistence collaborator for books. All
// timestamps cross this boundary as ISO-8601 strings; the collaborator owns
// server-side timestamp generation.
type BookRemote interface {
	GetBooks(ctx context.Context, userID string) ([]entities.Book, error)
	GetBook(ctx context.Context, id string) (entities.Book, error)
	AddBook(ctx context.Context, userID string, book entities.Book) (entities.Book, error)
	UpdateBook(ctx context.Context, id string, fields BookPatch) (PatchResult, error)
	DeleteBook(ctx context.Context, id string) error
	UpdateReadingStatus(ctx context.Context, id string, status entities.ReadingStatus) error
	UpdateReadingProgress(ctx context.Context, id string, currentPage int) error
}

// HighlightRemote is the remote persistence collaborator for highlights.
type HighlightRemote interface {
	GetHighlights(ctx context.Context, userID string) ([]entities.Highlight, error)
	AddHighlight(ctx context.Context, userID string, h entities.Highlight) (entities.Highlight, error)
	UpdateHighlight(ctx context.Context, id, text string) error
	DeleteHighlight(ctx context.Context, id string) error
	ToggleFavorite(ctx context.Context, id string, isFavorite bool) error
}
