// Package tracker is the optimistic sync controller: it brackets entity
// store mutations with calls to the remote persistence collaborator. Every
// mutation follows the same protocol: snapshot the state, apply the local
// write, then persist remotely; a remote failure restores the snapshot
// wholesale and surfaces the error to the caller. Nothing is retried or
// coalesced.
package tracker

import (
	"context"
	"fmt"
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"

	"github.com/shelfmark/shelfmark/internal/entities"
	"github.com/shelfmark/shelfmark/internal/identity"
	"github.com/shelfmark/shelfmark/internal/store"
)

// Service wires the store, the remote collaborators and the identity
// provider together. It is the only component permitted to call the remote
// store. A single mutex serializes mutations end to end, so the
// snapshot/apply/commit-or-revert protocol of one mutation can never
// interleave with another and a rollback always restores exactly the state
// the mutation started from.
type Service struct {
	mu         sync.Mutex
	store      *store.Store
	books      BookRemote
	highlights HighlightRemote
	identity   identity.Provider
	log        *zap.Logger
}

// NewService creates the sync controller.
func NewService(st *store.Store, books BookRemote, highlights HighlightRemote, id identity.Provider, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: st, books: books, highlights: highlights, identity: id, log: log}
}

// Store exposes the underlying entity store for read paths (derived views).
func (s *Service) Store() *store.Store {
	return s.store
}

// NewBook is the caller-supplied part of a book; status, page and dates are
// seeded by the store.
type NewBook struct {
	Title       string
	Author      string
	TotalPages  int
	Genre       string
	Categories  []string
	Description string
}

// NewHighlight is the caller-supplied part of a highlight.
type NewHighlight struct {
	BookID     string
	Text       string
	Page       int
	IsFavorite bool
}

// Hydrate replaces the local state with the remote mirror. Used at startup
// when no usable local snapshot exists.
func (s *Service) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID, err := s.identity.CurrentUserID()
	if err != nil {
		return err
	}
	books, err := s.books.GetBooks(ctx, userID)
	if err != nil {
		return fmt.Errorf("fetch books: %w", err)
	}
	highlights, err := s.highlights.GetHighlights(ctx, userID)
	if err != nil {
		return fmt.Errorf("fetch highlights: %w", err)
	}
	s.store.Restore(store.State{Books: books, Highlights: highlights})
	s.log.Info("hydrated from remote store",
		zap.Int("books", len(books)),
		zap.Int("highlights", len(highlights)))
	return nil
}

// AddBook creates a book locally and persists it.
func (s *Service) AddBook(ctx context.Context, input NewBook) (entities.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID, err := s.identity.CurrentUserID()
	if err != nil {
		return entities.Book{}, err
	}
	if input.TotalPages <= 0 {
		return entities.Book{}, store.ErrInvalidTotalPages
	}

	id, err := gonanoid.New()
	if err != nil {
		return entities.Book{}, fmt.Errorf("generate book id: %w", err)
	}

	snap := s.store.State()
	book := s.store.AddBook(entities.Book{
		ID:          id,
		Title:       input.Title,
		Author:      input.Author,
		TotalPages:  input.TotalPages,
		Genre:       input.Genre,
		Categories:  input.Categories,
		Description: input.Description,
	})

	err = s.commitOrRevert(ctx, snap, "add book", func(ctx context.Context) error {
		_, err := s.books.AddBook(ctx, userID, book)
		return err
	})
	if err != nil {
		return entities.Book{}, err
	}
	return book, nil
}

// DeleteBook removes a book and its highlights. The last remaining book is
// undeletable.
func (s *Service) DeleteBook(ctx context.Context, bookID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.identity.CurrentUserID(); err != nil {
		return err
	}
	if _, ok := s.store.BookByID(bookID); !ok {
		return store.ErrBookNotFound
	}
	if s.store.IsLastBook() {
		return store.ErrLastBook
	}

	snap := s.store.State()
	s.store.DeleteBook(bookID)

	return s.commitOrRevert(ctx, snap, "delete book", func(ctx context.Context) error {
		return s.books.DeleteBook(ctx, bookID)
	})
}

// UpdateReadingProgress moves a book to a new page. When the page change
// also changes the status, the remote status call is issued before the
// remote page call so an external reader never sees a page inconsistent
// with the old status.
func (s *Service) UpdateReadingProgress(ctx context.Context, bookID string, currentPage int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.identity.CurrentUserID(); err != nil {
		return err
	}
	before, ok := s.store.BookByID(bookID)
	if !ok {
		return store.ErrBookNotFound
	}

	snap := s.store.State()
	if err := s.store.UpdateReadingProgress(bookID, currentPage); err != nil {
		return err
	}
	after, _ := s.store.BookByID(bookID)

	return s.commitOrRevert(ctx, snap, "update reading progress", func(ctx context.Context) error {
		if after.Status != before.Status {
			if err := s.books.UpdateReadingStatus(ctx, bookID, after.Status); err != nil {
				return err
			}
		}
		return s.books.UpdateReadingProgress(ctx, bookID, after.CurrentPage)
	})
}

// UpdateBookStatus applies a direct status change. An illegal transition is
// a silent no-op with no remote traffic; callers pre-check with
// progress.CanChangeStatus to surface a message of their own.
func (s *Service) UpdateBookStatus(ctx context.Context, bookID string, status entities.ReadingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.identity.CurrentUserID(); err != nil {
		return err
	}
	if !status.Valid() {
		return store.ErrInvalidStatus
	}
	before, ok := s.store.BookByID(bookID)
	if !ok {
		return store.ErrBookNotFound
	}

	snap := s.store.State()
	if !s.store.UpdateBookStatus(bookID, status) {
		return nil
	}
	after, _ := s.store.BookByID(bookID)

	return s.commitOrRevert(ctx, snap, "update book status", func(ctx context.Context) error {
		if err := s.books.UpdateReadingStatus(ctx, bookID, after.Status); err != nil {
			return err
		}
		if after.CurrentPage != before.CurrentPage {
			return s.books.UpdateReadingProgress(ctx, bookID, after.CurrentPage)
		}
		return nil
	})
}

// UpdateTotalPages corrects a book's page count, clamping the current page
// and re-deriving the status when needed. Remote calls keep the fixed
// status-before-page order.
func (s *Service) UpdateTotalPages(ctx context.Context, bookID string, newTotal int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.identity.CurrentUserID(); err != nil {
		return err
	}
	before, ok := s.store.BookByID(bookID)
	if !ok {
		return store.ErrBookNotFound
	}

	snap := s.store.State()
	if err := s.store.UpdateTotalPages(bookID, newTotal); err != nil {
		return err
	}
	after, _ := s.store.BookByID(bookID)

	return s.commitOrRevert(ctx, snap, "update total pages", func(ctx context.Context) error {
		if _, err := s.books.UpdateBook(ctx, bookID, BookPatch{"total_pages": newTotal}); err != nil {
			return err
		}
		if after.Status != before.Status {
			if err := s.books.UpdateReadingStatus(ctx, bookID, after.Status); err != nil {
				return err
			}
		}
		if after.CurrentPage != before.CurrentPage {
			return s.books.UpdateReadingProgress(ctx, bookID, after.CurrentPage)
		}
		return nil
	})
}

// UpdateBookDescription sets the free-text description.
func (s *Service) UpdateBookDescription(ctx context.Context, bookID, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.identity.CurrentUserID(); err != nil {
		return err
	}

	snap := s.store.State()
	if !s.store.UpdateBookDescription(bookID, description) {
		return store.ErrBookNotFound
	}

	return s.commitOrRevert(ctx, snap, "update book description", func(ctx context.Context) error {
		_, err := s.books.UpdateBook(ctx, bookID, BookPatch{"description": description})
		return err
	})
}

// UpdateBookGenre sets the genre.
func (s *Service) UpdateBookGenre(ctx context.Context, bookID, genre string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.identity.CurrentUserID(); err != nil {
		return err
	}

	snap := s.store.State()
	if !s.store.UpdateBookGenre(bookID, genre) {
		return store.ErrBookNotFound
	}

	return s.commitOrRevert(ctx, snap, "update book genre", func(ctx context.Context) error {
		_, err := s.books.UpdateBook(ctx, bookID, BookPatch{"genre": genre})
		return err
	})
}

// AddHighlight creates a highlight on an existing book.
func (s *Service) AddHighlight(ctx context.Context, input NewHighlight) (entities.Highlight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID, err := s.identity.CurrentUserID()
	if err != nil {
		return entities.Highlight{}, err
	}

	id, err := gonanoid.New()
	if err != nil {
		return entities.Highlight{}, fmt.Errorf("generate highlight id: %w", err)
	}

	snap := s.store.State()
	h, err := s.store.AddHighlight(entities.Highlight{
		ID:         id,
		BookID:     input.BookID,
		Text:       input.Text,
		Page:       input.Page,
		IsFavorite: input.IsFavorite,
	})
	if err != nil {
		return entities.Highlight{}, err
	}

	err = s.commitOrRevert(ctx, snap, "add highlight", func(ctx context.Context) error {
		_, err := s.highlights.AddHighlight(ctx, userID, h)
		return err
	})
	if err != nil {
		return entities.Highlight{}, err
	}
	return h, nil
}

// UpdateHighlight replaces a highlight's text.
func (s *Service) UpdateHighlight(ctx context.Context, id, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.identity.CurrentUserID(); err != nil {
		return err
	}

	snap := s.store.State()
	if err := s.store.UpdateHighlight(id, text); err != nil {
		return err
	}

	return s.commitOrRevert(ctx, snap, "update highlight", func(ctx context.Context) error {
		return s.highlights.UpdateHighlight(ctx, id, text)
	})
}

// DeleteHighlight removes one highlight.
func (s *Service) DeleteHighlight(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.identity.CurrentUserID(); err != nil {
		return err
	}

	snap := s.store.State()
	if !s.store.DeleteHighlight(id) {
		return store.ErrHighlightNotFound
	}

	return s.commitOrRevert(ctx, snap, "delete highlight", func(ctx context.Context) error {
		return s.highlights.DeleteHighlight(ctx, id)
	})
}

// ToggleFavorite flips a highlight's favorite flag and returns the updated
// highlight.
func (s *Service) ToggleFavorite(ctx context.Context, id string) (entities.Highlight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.identity.CurrentUserID(); err != nil {
		return entities.Highlight{}, err
	}

	snap := s.store.State()
	h, ok := s.store.ToggleFavoriteHighlight(id)
	if !ok {
		return entities.Highlight{}, store.ErrHighlightNotFound
	}

	err := s.commitOrRevert(ctx, snap, "toggle favorite", func(ctx context.Context) error {
		return s.highlights.ToggleFavorite(ctx, id, h.IsFavorite)
	})
	if err != nil {
		return entities.Highlight{}, err
	}
	return h, nil
}

// commitOrRevert is the shared tail of the optimistic protocol: the local
// write has already happened against the captured snapshot, so a remote
// failure restores that snapshot exactly and reports the error once.
func (s *Service) commitOrRevert(ctx context.Context, snap store.State, op string, persist func(context.Context) error) error {
	if err := persist(ctx); err != nil {
		s.store.Restore(snap)
		s.log.Warn("remote persistence failed, local state rolled back",
			zap.String("operation", op),
			zap.Error(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
