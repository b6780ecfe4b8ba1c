package tracker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmark/shelfmark/internal/entities"
	"github.com/shelfmark/shelfmark/internal/identity"
	"github.com/shelfmark/shelfmark/internal/store"
)

var errRemoteDown = errors.New("remote store unavailable")

// fakeBookRemote records the calls it receives in order and fails the
// operations listed in failOn.
type fakeBookRemote struct {
	calls  []string
	failOn map[string]bool

	books []entities.Book
}

func (f *fakeBookRemote) call(name string) error {
	f.calls = append(f.calls, name)
	if f.failOn[name] {
		return errRemoteDown
	}
	return nil
}

func (f *fakeBookRemote) GetBooks(ctx context.Context, userID string) ([]entities.Book, error) {
	if err := f.call("GetBooks"); err != nil {
		return nil, err
	}
	return f.books, nil
}

func (f *fakeBookRemote) GetBook(ctx context.Context, id string) (entities.Book, error) {
	if err := f.call("GetBook"); err != nil {
		return entities.Book{}, err
	}
	return entities.Book{ID: id}, nil
}

func (f *fakeBookRemote) AddBook(ctx context.Context, userID string, book entities.Book) (entities.Book, error) {
	if err := f.call("AddBook"); err != nil {
		return entities.Book{}, err
	}
	return book, nil
}

func (f *fakeBookRemote) UpdateBook(ctx context.Context, id string, fields BookPatch) (PatchResult, error) {
	if err := f.call("UpdateBook"); err != nil {
		return PatchResult{}, err
	}
	return PatchResult{UpdatedAt: "2024-06-01T12:00:00Z"}, nil
}

func (f *fakeBookRemote) DeleteBook(ctx context.Context, id string) error {
	return f.call("DeleteBook")
}

func (f *fakeBookRemote) UpdateReadingStatus(ctx context.Context, id string, status entities.ReadingStatus) error {
	return f.call("UpdateReadingStatus")
}

func (f *fakeBookRemote) UpdateReadingProgress(ctx context.Context, id string, currentPage int) error {
	return f.call("UpdateReadingProgress")
}

type fakeHighlightRemote struct {
	calls  []string
	failOn map[string]bool

	highlights []entities.Highlight
}

func (f *fakeHighlightRemote) call(name string) error {
	f.calls = append(f.calls, name)
	if f.failOn[name] {
		return errRemoteDown
	}
	return nil
}

func (f *fakeHighlightRemote) GetHighlights(ctx context.Context, userID string) ([]entities.Highlight, error) {
	if err := f.call("GetHighlights"); err != nil {
		return nil, err
	}
	return f.highlights, nil
}

func (f *fakeHighlightRemote) AddHighlight(ctx context.Context, userID string, h entities.Highlight) (entities.Highlight, error) {
	if err := f.call("AddHighlight"); err != nil {
		return entities.Highlight{}, err
	}
	return h, nil
}

func (f *fakeHighlightRemote) UpdateHighlight(ctx context.Context, id, text string) error {
	return f.call("UpdateHighlight")
}

func (f *fakeHighlightRemote) DeleteHighlight(ctx context.Context, id string) error {
	return f.call("DeleteHighlight")
}

func (f *fakeHighlightRemote) ToggleFavorite(ctx context.Context, id string, isFavorite bool) error {
	return f.call("ToggleFavorite")
}

type fixture struct {
	service    *Service
	store      *store.Store
	books      *fakeBookRemote
	highlights *fakeHighlightRemote
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := store.New()
	books := &fakeBookRemote{failOn: map[string]bool{}}
	highlights := &fakeHighlightRemote{failOn: map[string]bool{}}
	service := NewService(st, books, highlights, identity.NewStatic("local"), nil)
	return &fixture{service: service, store: st, books: books, highlights: highlights}
}

func (f *fixture) seedBooks(t *testing.T, ids ...string) {
	t.Helper()
	for _, id := range ids {
		_, err := f.service.AddBook(context.Background(), NewBook{Title: "Book " + id, Author: "A", TotalPages: 300})
		require.NoError(t, err)
	}
	f.books.calls = nil
}

func TestAddBook(t *testing.T) {
	t.Run("persists the seeded book", func(t *testing.T) {
		f := newFixture(t)

		book, err := f.service.AddBook(context.Background(), NewBook{Title: "Dune", Author: "Herbert", TotalPages: 412})
		require.NoError(t, err)
		assert.NotEmpty(t, book.ID)
		assert.Equal(t, entities.StatusInProgress, book.Status)
		assert.Equal(t, []string{"AddBook"}, f.books.calls)
		assert.Len(t, f.store.Books(), 1)
	})

	t.Run("rejects non-positive total pages without remote traffic", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.AddBook(context.Background(), NewBook{Title: "Dune", TotalPages: 0})
		assert.ErrorIs(t, err, store.ErrInvalidTotalPages)
		assert.Empty(t, f.books.calls)
	})

	t.Run("remote failure rolls the insert back", func(t *testing.T) {
		f := newFixture(t)
		f.books.failOn["AddBook"] = true

		_, err := f.service.AddBook(context.Background(), NewBook{Title: "Dune", TotalPages: 412})
		assert.ErrorIs(t, err, errRemoteDown)
		assert.Empty(t, f.store.Books())
	})
}

func TestUpdateReadingProgressSync(t *testing.T) {
	t.Run("status call precedes page call when the status changes", func(t *testing.T) {
		f := newFixture(t)
		f.seedBooks(t, "one")
		bookID := f.store.Books()[0].ID

		require.NoError(t, f.service.UpdateReadingProgress(context.Background(), bookID, 300))
		assert.Equal(t, []string{"UpdateReadingStatus", "UpdateReadingProgress"}, f.books.calls)
	})

	t.Run("no status call when only the page moves", func(t *testing.T) {
		f := newFixture(t)
		f.seedBooks(t, "one")
		bookID := f.store.Books()[0].ID

		require.NoError(t, f.service.UpdateReadingProgress(context.Background(), bookID, 42))
		assert.Equal(t, []string{"UpdateReadingProgress"}, f.books.calls)
	})

	t.Run("remote failure restores the exact previous state", func(t *testing.T) {
		f := newFixture(t)
		f.seedBooks(t, "one")
		bookID := f.store.Books()[0].ID
		require.NoError(t, f.service.UpdateReadingProgress(context.Background(), bookID, 10))
		f.books.calls = nil
		f.books.failOn["UpdateReadingProgress"] = true

		err := f.service.UpdateReadingProgress(context.Background(), bookID, 100)
		assert.ErrorIs(t, err, errRemoteDown)

		b, ok := f.store.BookByID(bookID)
		require.True(t, ok)
		assert.Equal(t, 10, b.CurrentPage)
		assert.Equal(t, entities.StatusInProgress, b.Status)
	})

	t.Run("invalid page fails before any remote call", func(t *testing.T) {
		f := newFixture(t)
		f.seedBooks(t, "one")
		bookID := f.store.Books()[0].ID

		err := f.service.UpdateReadingProgress(context.Background(), bookID, 999)
		assert.ErrorIs(t, err, store.ErrInvalidPage)
		assert.Empty(t, f.books.calls)
	})

	t.Run("unknown book", func(t *testing.T) {
		f := newFixture(t)
		f.seedBooks(t, "one")

		err := f.service.UpdateReadingProgress(context.Background(), "missing", 10)
		assert.ErrorIs(t, err, store.ErrBookNotFound)
	})
}

func TestUpdateBookStatusSync(t *testing.T) {
	t.Run("illegal transition is a local no-op with no remote traffic", func(t *testing.T) {
		f := newFixture(t)
		f.seedBooks(t, "one")
		bookID := f.store.Books()[0].ID
		require.NoError(t, f.service.UpdateReadingProgress(context.Background(), bookID, 300))
		f.books.calls = nil

		require.NoError(t, f.service.UpdateBookStatus(context.Background(), bookID, entities.StatusNotStarted))
		assert.Empty(t, f.books.calls)
		b, _ := f.store.BookByID(bookID)
		assert.Equal(t, entities.StatusCompleted, b.Status)
	})

	t.Run("completed pushes the page to the total remotely", func(t *testing.T) {
		f := newFixture(t)
		f.seedBooks(t, "one")
		bookID := f.store.Books()[0].ID

		require.NoError(t, f.service.UpdateBookStatus(context.Background(), bookID, entities.StatusCompleted))
		assert.Equal(t, []string{"UpdateReadingStatus", "UpdateReadingProgress"}, f.books.calls)
	})

	t.Run("invalid status value", func(t *testing.T) {
		f := newFixture(t)
		f.seedBooks(t, "one")
		bookID := f.store.Books()[0].ID

		err := f.service.UpdateBookStatus(context.Background(), bookID, entities.ReadingStatus("PAUSED"))
		assert.ErrorIs(t, err, store.ErrInvalidStatus)
	})

	t.Run("remote failure rolls back", func(t *testing.T) {
		f := newFixture(t)
		f.seedBooks(t, "one")
		bookID := f.store.Books()[0].ID
		f.books.failOn["UpdateReadingStatus"] = true

		err := f.service.UpdateBookStatus(context.Background(), bookID, entities.StatusCompleted)
		assert.ErrorIs(t, err, errRemoteDown)
		b, _ := f.store.BookByID(bookID)
		assert.Equal(t, entities.StatusInProgress, b.Status)
		assert.Equal(t, 1, b.CurrentPage)
	})
}

func TestUpdateTotalPagesSync(t *testing.T) {
	t.Run("patch precedes status and page calls", func(t *testing.T) {
		f := newFixture(t)
		f.seedBooks(t, "one")
		bookID := f.store.Books()[0].ID
		require.NoError(t, f.service.UpdateReadingProgress(context.Background(), bookID, 300))
		f.books.calls = nil

		// Growing the total reopens the completed book but keeps the page.
		require.NoError(t, f.service.UpdateTotalPages(context.Background(), bookID, 400))
		assert.Equal(t, []string{"UpdateBook", "UpdateReadingStatus"}, f.books.calls)
	})

	t.Run("clamped page triggers a page call", func(t *testing.T) {
		f := newFixture(t)
		f.seedBooks(t, "one")
		bookID := f.store.Books()[0].ID
		require.NoError(t, f.service.UpdateReadingProgress(context.Background(), bookID, 250))
		f.books.calls = nil

		require.NoError(t, f.service.UpdateTotalPages(context.Background(), bookID, 200))
		assert.Equal(t, []string{"UpdateBook", "UpdateReadingStatus", "UpdateReadingProgress"}, f.books.calls)
	})
}

func TestDeleteBookSync(t *testing.T) {
	t.Run("last book is undeletable", func(t *testing.T) {
		f := newFixture(t)
		f.seedBooks(t, "one")
		bookID := f.store.Books()[0].ID

		err := f.service.DeleteBook(context.Background(), bookID)
		assert.ErrorIs(t, err, store.ErrLastBook)
		assert.Empty(t, f.books.calls)
	})

	t.Run("delete cascades locally and persists once", func(t *testing.T) {
		f := newFixture(t)
		f.seedBooks(t, "one", "two")
		bookID := f.store.Books()[0].ID
		_, err := f.service.AddHighlight(context.Background(), NewHighlight{BookID: bookID, Text: "q", Page: 1})
		require.NoError(t, err)

		require.NoError(t, f.service.DeleteBook(context.Background(), bookID))
		assert.Equal(t, []string{"DeleteBook"}, f.books.calls)
		assert.Len(t, f.store.Books(), 1)
		assert.Empty(t, f.store.Highlights())
	})

	t.Run("remote failure restores the book and its highlights", func(t *testing.T) {
		f := newFixture(t)
		f.seedBooks(t, "one", "two")
		bookID := f.store.Books()[0].ID
		_, err := f.service.AddHighlight(context.Background(), NewHighlight{BookID: bookID, Text: "q", Page: 1})
		require.NoError(t, err)
		f.books.failOn["DeleteBook"] = true

		err = f.service.DeleteBook(context.Background(), bookID)
		assert.ErrorIs(t, err, errRemoteDown)
		assert.Len(t, f.store.Books(), 2)
		assert.Len(t, f.store.Highlights(), 1)
	})
}

func TestHighlightSync(t *testing.T) {
	t.Run("add rejects unknown book before remote traffic", func(t *testing.T) {
		f := newFixture(t)
		f.seedBooks(t, "one")

		_, err := f.service.AddHighlight(context.Background(), NewHighlight{BookID: "missing", Text: "q", Page: 1})
		assert.ErrorIs(t, err, store.ErrUnknownBook)
		assert.Empty(t, f.highlights.calls)
	})

	t.Run("toggle favorite persists the new flag", func(t *testing.T) {
		f := newFixture(t)
		f.seedBooks(t, "one")
		bookID := f.store.Books()[0].ID
		h, err := f.service.AddHighlight(context.Background(), NewHighlight{BookID: bookID, Text: "q", Page: 1})
		require.NoError(t, err)
		f.highlights.calls = nil

		got, err := f.service.ToggleFavorite(context.Background(), h.ID)
		require.NoError(t, err)
		assert.True(t, got.IsFavorite)
		assert.Equal(t, []string{"ToggleFavorite"}, f.highlights.calls)
	})

	t.Run("update failure restores the old text", func(t *testing.T) {
		f := newFixture(t)
		f.seedBooks(t, "one")
		bookID := f.store.Books()[0].ID
		h, err := f.service.AddHighlight(context.Background(), NewHighlight{BookID: bookID, Text: "original", Page: 1})
		require.NoError(t, err)
		f.highlights.failOn["UpdateHighlight"] = true

		err = f.service.UpdateHighlight(context.Background(), h.ID, "edited")
		assert.ErrorIs(t, err, errRemoteDown)
		got, ok := f.store.HighlightByID(h.ID)
		require.True(t, ok)
		assert.Equal(t, "original", got.Text)
		assert.Nil(t, got.ModifiedAt)
	})

	t.Run("delete unknown highlight", func(t *testing.T) {
		f := newFixture(t)
		f.seedBooks(t, "one")

		err := f.service.DeleteHighlight(context.Background(), "missing")
		assert.ErrorIs(t, err, store.ErrHighlightNotFound)
	})
}

func TestHydrate(t *testing.T) {
	t.Run("replaces local state with the remote mirror", func(t *testing.T) {
		f := newFixture(t)
		f.books.books = []entities.Book{{ID: "rb1", Title: "Remote", TotalPages: 100, Status: entities.StatusInProgress, CurrentPage: 5}}
		f.highlights.highlights = []entities.Highlight{{ID: "rh1", BookID: "rb1", Text: "remote quote"}}

		require.NoError(t, f.service.Hydrate(context.Background()))
		assert.Len(t, f.store.Books(), 1)
		assert.Len(t, f.store.Highlights(), 1)
	})

	t.Run("fetch failure leaves local state untouched", func(t *testing.T) {
		f := newFixture(t)
		f.seedBooks(t, "one")
		f.books.failOn["GetBooks"] = true

		err := f.service.Hydrate(context.Background())
		assert.ErrorIs(t, err, errRemoteDown)
		assert.Len(t, f.store.Books(), 1)
	})
}

func TestAuthentication(t *testing.T) {
	f := newFixture(t)
	f.service.identity = identity.NewStatic("")

	_, err := f.service.AddBook(context.Background(), NewBook{Title: "T", TotalPages: 10})
	assert.ErrorIs(t, err, identity.ErrNotAuthenticated)
	assert.Empty(t, f.books.calls)

	err = f.service.UpdateReadingProgress(context.Background(), "b1", 10)
	assert.ErrorIs(t, err, identity.ErrNotAuthenticated)
}
