// Package store is the authoritative in-memory collection of books and
// highlights. Every mutator replaces the affected collection with a fresh
// slice instead of editing in place; the derived-view cache in
// internal/views relies on that to detect change by reference identity.
//
// The slices themselves are immutable once published, so the store's mutex
// only guards the snapshot swap: readers take a consistent State without
// copying, and a held State can never be torn by a later mutation.
package store

import (
	"sync"
	"time"

	"github.com/shelfmark/shelfmark/internal/entities"
	"github.com/shelfmark/shelfmark/internal/progress"
)

// State is a full snapshot of the store. Because mutators never edit slices
// in place, holding on to a State is free and restoring one is an exact
// rollback.
type State struct {
	Books      []entities.Book      `json:"books"`
	Highlights []entities.Highlight `json:"highlights"`
}

// Store owns the current State and applies the transition policy on every
// mutation.
type Store struct {
	mu    sync.RWMutex
	state State
	clock func() time.Time
}

// New creates an empty store.
func New() *Store {
	return NewWithClock(time.Now)
}

// NewWithClock creates an empty store with an injected clock, used by tests
// to pin date stamps.
func NewWithClock(clock func() time.Time) *Store {
	return &Store{clock: clock}
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Restore replaces the whole state with a previously captured snapshot.
// Used by the sync controller for hard rollback after a remote failure, and
// by the snapshot loader at startup.
func (s *Store) Restore(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
}

// Books returns the current book collection. The slice must not be mutated
// by the caller.
func (s *Store) Books() []entities.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Books
}

// Highlights returns the current highlight collection. The slice must not
// be mutated by the caller.
func (s *Store) Highlights() []entities.Highlight {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Highlights
}

// BookByID looks up a book.
func (s *Store) BookByID(id string) (entities.Book, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := bookIndex(s.state.Books, id); idx >= 0 {
		return s.state.Books[idx], true
	}
	return entities.Book{}, false
}

// HighlightByID looks up a highlight.
func (s *Store) HighlightByID(id string) (entities.Highlight, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := highlightIndex(s.state.Highlights, id); idx >= 0 {
		return s.state.Highlights[idx], true
	}
	return entities.Highlight{}, false
}

// HighlightsForBook returns the highlights referencing one book, in
// insertion order.
func (s *Store) HighlightsForBook(bookID string) []entities.Highlight {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entities.Highlight
	for _, h := range s.state.Highlights {
		if h.BookID == bookID {
			out = append(out, h)
		}
	}
	return out
}

// IsLastBook reports whether the collection holds exactly one book. Callers
// use it to pre-check deletion, which refuses to empty the collection.
func (s *Store) IsLastBook() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.state.Books) == 1
}

// AddBook inserts a new book. The very first book in an empty collection is
// seeded as already being read (IN_PROGRESS at page 1); every later book
// starts NOT_STARTED at page 0. The genre defaults to the first category,
// or "Unknown" when there are none.
func (s *Store) AddBook(book entities.Book) entities.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock().UTC()

	if len(s.state.Books) == 0 {
		book.Status = entities.StatusInProgress
		book.CurrentPage = 1
		book.StartDate = &now
	} else {
		book.Status = entities.StatusNotStarted
		book.CurrentPage = 0
		book.StartDate = nil
	}
	book.CompletedDate = nil

	if book.Categories == nil {
		book.Categories = []string{}
	}
	if book.Genre == "" {
		if len(book.Categories) > 0 {
			book.Genre = book.Categories[0]
		} else {
			book.Genre = "Unknown"
		}
	}

	books := make([]entities.Book, 0, len(s.state.Books)+1)
	books = append(books, s.state.Books...)
	books = append(books, book)
	s.state = State{Books: books, Highlights: s.state.Highlights}
	return book
}

// AddHighlight validates and inserts a highlight. The text must be
// non-empty, the page non-negative and the referenced book must exist;
// CreatedAt is stamped on insert.
func (s *Store) AddHighlight(h entities.Highlight) (entities.Highlight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h.Text == "" {
		return entities.Highlight{}, ErrEmptyHighlightText
	}
	if h.Page < 0 {
		return entities.Highlight{}, ErrInvalidPage
	}
	if bookIndex(s.state.Books, h.BookID) < 0 {
		return entities.Highlight{}, ErrUnknownBook
	}

	h.CreatedAt = s.clock().UTC()
	h.ModifiedAt = nil

	highlights := make([]entities.Highlight, 0, len(s.state.Highlights)+1)
	highlights = append(highlights, s.state.Highlights...)
	highlights = append(highlights, h)
	s.state = State{Books: s.state.Books, Highlights: highlights}
	return h, nil
}

// UpdateReadingProgress moves a book to a new page and re-derives status,
// start date and completed date from it. All four fields land in a single
// state replacement so no reader can observe a page inconsistent with the
// status.
func (s *Store) UpdateReadingProgress(bookID string, currentPage int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := bookIndex(s.state.Books, bookID)
	if idx < 0 {
		return ErrBookNotFound
	}
	book := s.state.Books[idx]
	if currentPage < 0 || currentPage > book.TotalPages {
		return ErrInvalidPage
	}

	d := progress.DeriveStatus(currentPage, book.TotalPages, book.StartDate, book.CompletedDate, s.clock().UTC())
	book.CurrentPage = currentPage
	book.Status = d.Status
	book.StartDate = d.StartDate
	book.CompletedDate = d.CompletedDate

	s.replaceBook(idx, book)
	return nil
}

// UpdateBookStatus applies a direct status change when the transition
// policy allows it. A disallowed transition is a silent no-op: callers are
// expected to pre-check with progress.CanChangeStatus and surface their own
// message. Returns whether the state changed.
func (s *Store) UpdateBookStatus(bookID string, status entities.ReadingStatus) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !status.Valid() {
		return false
	}
	idx := bookIndex(s.state.Books, bookID)
	if idx < 0 {
		return false
	}
	book := s.state.Books[idx]
	if !progress.CanChangeStatus(book, status, len(s.state.Books) == 1) {
		return false
	}

	s.replaceBook(idx, progress.ApplyStatus(book, status, s.clock().UTC()))
	return true
}

// DeleteBook removes a book and cascades to every highlight referencing it.
// Deleting the sole remaining book is a silent no-op; callers pre-check via
// IsLastBook. Returns whether anything was removed.
func (s *Store) DeleteBook(bookID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.state.Books) == 1 {
		return false
	}
	idx := bookIndex(s.state.Books, bookID)
	if idx < 0 {
		return false
	}

	books := make([]entities.Book, 0, len(s.state.Books)-1)
	books = append(books, s.state.Books[:idx]...)
	books = append(books, s.state.Books[idx+1:]...)

	highlights := make([]entities.Highlight, 0, len(s.state.Highlights))
	for _, h := range s.state.Highlights {
		if h.BookID != bookID {
			highlights = append(highlights, h)
		}
	}

	s.state = State{Books: books, Highlights: highlights}
	return true
}

// DeleteHighlight removes a single highlight. Returns whether it existed.
func (s *Store) DeleteHighlight(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := highlightIndex(s.state.Highlights, id)
	if idx < 0 {
		return false
	}
	highlights := make([]entities.Highlight, 0, len(s.state.Highlights)-1)
	highlights = append(highlights, s.state.Highlights[:idx]...)
	highlights = append(highlights, s.state.Highlights[idx+1:]...)
	s.state = State{Books: s.state.Books, Highlights: highlights}
	return true
}

// ToggleFavoriteHighlight flips the favorite flag and returns the updated
// highlight. Favorite toggles do not stamp ModifiedAt; only text edits do.
func (s *Store) ToggleFavoriteHighlight(id string) (entities.Highlight, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := highlightIndex(s.state.Highlights, id)
	if idx < 0 {
		return entities.Highlight{}, false
	}
	h := s.state.Highlights[idx]
	h.IsFavorite = !h.IsFavorite
	s.replaceHighlight(idx, h)
	return h, true
}

// UpdateHighlight replaces a highlight's text and stamps ModifiedAt.
func (s *Store) UpdateHighlight(id, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if text == "" {
		return ErrEmptyHighlightText
	}
	idx := highlightIndex(s.state.Highlights, id)
	if idx < 0 {
		return ErrHighlightNotFound
	}
	h := s.state.Highlights[idx]
	h.Text = text
	now := s.clock().UTC()
	h.ModifiedAt = &now
	s.replaceHighlight(idx, h)
	return nil
}

// UpdateBookDescription sets the free-text description. Returns whether the
// book exists.
func (s *Store) UpdateBookDescription(bookID, description string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := bookIndex(s.state.Books, bookID)
	if idx < 0 {
		return false
	}
	book := s.state.Books[idx]
	book.Description = description
	s.replaceBook(idx, book)
	return true
}

// UpdateBookGenre sets the genre. Returns whether the book exists.
func (s *Store) UpdateBookGenre(bookID, genre string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := bookIndex(s.state.Books, bookID)
	if idx < 0 {
		return false
	}
	book := s.state.Books[idx]
	book.Genre = genre
	s.replaceBook(idx, book)
	return true
}

// UpdateTotalPages corrects a book's page count. The current page is
// clamped to the new total when it would otherwise exceed it, and the
// status is re-derived so the page/status invariant survives the
// correction.
func (s *Store) UpdateTotalPages(bookID string, newTotal int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if newTotal <= 0 {
		return ErrInvalidTotalPages
	}
	idx := bookIndex(s.state.Books, bookID)
	if idx < 0 {
		return ErrBookNotFound
	}
	book := s.state.Books[idx]

	page := book.CurrentPage
	if page > newTotal {
		page = newTotal
	}
	d := progress.DeriveStatus(page, newTotal, book.StartDate, book.CompletedDate, s.clock().UTC())
	book.TotalPages = newTotal
	book.CurrentPage = page
	book.Status = d.Status
	book.StartDate = d.StartDate
	book.CompletedDate = d.CompletedDate

	s.replaceBook(idx, book)
	return nil
}

func bookIndex(books []entities.Book, id string) int {
	for i, b := range books {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func highlightIndex(highlights []entities.Highlight, id string) int {
	for i, h := range highlights {
		if h.ID == id {
			return i
		}
	}
	return -1
}

// replaceBook swaps one book into a fresh collection. Callers hold the
// write lock.
func (s *Store) replaceBook(idx int, book entities.Book) {
	books := make([]entities.Book, len(s.state.Books))
	copy(books, s.state.Books)
	books[idx] = book
	s.state = State{Books: books, Highlights: s.state.Highlights}
}

// replaceHighlight swaps one highlight into a fresh collection. Callers
// hold the write lock.
func (s *Store) replaceHighlight(idx int, h entities.Highlight) {
	highlights := make([]entities.Highlight, len(s.state.Highlights))
	copy(highlights, s.state.Highlights)
	highlights[idx] = h
	s.state = State{Books: s.state.Books, Highlights: highlights}
}
