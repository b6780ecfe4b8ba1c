// Package views provides memoized projections over the entity store:
// enriched highlights, recency slices, alternative sort orders and reading
// stats. Every cache is a single-slot "last inputs vs last output" memo
// keyed on slice identity, which is correct only because the store replaces
// its collections instead of mutating them in place.
package views

import (
	"sort"
	"sync"
	"time"

	"github.com/shelfmark/shelfmark/internal/entities"
	"github.com/shelfmark/shelfmark/internal/progress"
	"github.com/shelfmark/shelfmark/internal/store"
)

// SortOrder selects how Sorted arranges the enriched highlight list.
type SortOrder string

const (
	SortByDate      SortOrder = "date"       // (modified ?? created) descending
	SortByBook      SortOrder = "book"       // book title ascending
	SortByBookPage  SortOrder = "book_page"  // book title, then page
	SortByLength    SortOrder = "length"     // text length descending
	SortByFavorites SortOrder = "favorites"  // favorites first, then date
)

// ValidSortOrder reports whether o names a known sort order.
func ValidSortOrder(o SortOrder) bool {
	switch o {
	case SortByDate, SortByBook, SortByBookPage, SortByLength, SortByFavorites:
		return true
	}
	return false
}

// RecentHighlights is the recency projection: the newest highlights up to a
// limit, plus overall counts.
type RecentHighlights struct {
	Highlights       []entities.EnrichedHighlight `json:"highlights"`
	Total            int                          `json:"total"`
	CreatedThisMonth int                          `json:"created_this_month"`
}

// ReadingStats counts completions inside the current UTC month and year.
type ReadingStats struct {
	CompletedThisMonth int `json:"completed_this_month"`
	CompletedThisYear  int `json:"completed_this_year"`
}

// Cache memoizes the derived views. A single mutex serializes the memo
// slots; the values handed out are immutable slices, safe to share.
type Cache struct {
	mu sync.Mutex

	enrichedBooks      []entities.Book
	enrichedHighlights []entities.Highlight
	enriched           []entities.EnrichedHighlight

	recentInput []entities.EnrichedHighlight
	recentLimit int
	recentNow   time.Time
	recent      RecentHighlights

	sortedInput []entities.EnrichedHighlight
	sortedBy    SortOrder
	sorted      []entities.EnrichedHighlight

	statsBooks []entities.Book
	statsNow   time.Time
	stats      ReadingStats
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// EnrichedHighlights joins every highlight with its book's title, author and
// progress, sorted by (modified ?? created) descending. Two consecutive
// calls over the same state return the identical slice.
func (c *Cache) EnrichedHighlights(st store.State) []entities.EnrichedHighlight {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enrichedLocked(st)
}

func (c *Cache) enrichedLocked(st store.State) []entities.EnrichedHighlight {
	if sameSlice(c.enrichedBooks, st.Books) && sameSlice(c.enrichedHighlights, st.Highlights) {
		return c.enriched
	}

	byID := make(map[string]entities.Book, len(st.Books))
	for _, b := range st.Books {
		byID[b.ID] = b
	}

	enriched := make([]entities.EnrichedHighlight, 0, len(st.Highlights))
	for _, h := range st.Highlights {
		book, ok := byID[h.BookID]
		if !ok {
			continue
		}
		enriched = append(enriched, entities.EnrichedHighlight{
			Highlight:       h,
			BookTitle:       book.Title,
			BookAuthor:      book.Author,
			BookCurrentPage: book.CurrentPage,
			BookTotalPages:  book.TotalPages,
		})
	}
	sort.SliceStable(enriched, func(i, j int) bool {
		return enriched[i].SortKey().After(enriched[j].SortKey())
	})

	c.enrichedBooks = st.Books
	c.enrichedHighlights = st.Highlights
	c.enriched = enriched
	return enriched
}

// Recent slices the enriched list down to limit entries and counts the
// highlights created in the current UTC calendar month.
func (c *Cache) Recent(st store.State, limit int, now time.Time) RecentHighlights {
	c.mu.Lock()
	defer c.mu.Unlock()

	enriched := c.enrichedLocked(st)
	if sameSlice(c.recentInput, enriched) && c.recentLimit == limit && sameUTCMonthStamp(c.recentNow, now) {
		return c.recent
	}

	createdThisMonth := 0
	for _, h := range enriched {
		if progress.SameUTCMonth(h.CreatedAt, now) {
			createdThisMonth++
		}
	}

	slice := enriched
	if limit >= 0 && limit < len(slice) {
		slice = slice[:limit]
	}

	c.recentInput = enriched
	c.recentLimit = limit
	c.recentNow = now
	c.recent = RecentHighlights{
		Highlights:       slice,
		Total:            len(enriched),
		CreatedThisMonth: createdThisMonth,
	}
	return c.recent
}

// Sorted re-orders the enriched list by the given criterion. An unknown
// criterion falls back to date order.
func (c *Cache) Sorted(st store.State, by SortOrder) []entities.EnrichedHighlight {
	c.mu.Lock()
	defer c.mu.Unlock()

	enriched := c.enrichedLocked(st)
	if sameSlice(c.sortedInput, enriched) && c.sortedBy == by {
		return c.sorted
	}

	sorted := make([]entities.EnrichedHighlight, len(enriched))
	copy(sorted, enriched)

	switch by {
	case SortByBook:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].BookTitle < sorted[j].BookTitle
		})
	case SortByBookPage:
		sort.SliceStable(sorted, func(i, j int) bool {
			if sorted[i].BookTitle != sorted[j].BookTitle {
				return sorted[i].BookTitle < sorted[j].BookTitle
			}
			return sorted[i].Page < sorted[j].Page
		})
	case SortByLength:
		sort.SliceStable(sorted, func(i, j int) bool {
			return len(sorted[i].Text) > len(sorted[j].Text)
		})
	case SortByFavorites:
		sort.SliceStable(sorted, func(i, j int) bool {
			if sorted[i].IsFavorite != sorted[j].IsFavorite {
				return sorted[i].IsFavorite
			}
			return sorted[i].SortKey().After(sorted[j].SortKey())
		})
	default:
		// enriched is already in date order
	}

	c.sortedInput = enriched
	c.sortedBy = by
	c.sorted = sorted
	return sorted
}

// Favorites returns the favorite highlights in date order.
func (c *Cache) Favorites(st store.State) []entities.EnrichedHighlight {
	c.mu.Lock()
	defer c.mu.Unlock()

	enriched := c.enrichedLocked(st)
	out := make([]entities.EnrichedHighlight, 0)
	for _, h := range enriched {
		if h.IsFavorite {
			out = append(out, h)
		}
	}
	return out
}

// Stats counts books completed in the current UTC month and year. Only
// books that are actually COMPLETED and carry a completion date count.
func (c *Cache) Stats(books []entities.Book, now time.Time) ReadingStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	if sameSlice(c.statsBooks, books) && sameUTCMonthStamp(c.statsNow, now) {
		return c.stats
	}

	var stats ReadingStats
	for _, b := range books {
		if b.Status != entities.StatusCompleted || b.CompletedDate == nil {
			continue
		}
		if progress.SameUTCYear(*b.CompletedDate, now) {
			stats.CompletedThisYear++
		}
		if progress.SameUTCMonth(*b.CompletedDate, now) {
			stats.CompletedThisMonth++
		}
	}

	c.statsBooks = books
	c.statsNow = now
	c.stats = stats
	return stats
}

// sameSlice reports whether two slices are the same slice, by data pointer
// and length. This is the reference-equality change detection the store's
// immutable-replacement discipline guarantees to be sound.
func sameSlice[T any](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return a == nil && b == nil
	}
	return &a[0] == &b[0]
}

// sameUTCMonthStamp treats two "now" values as equivalent cache keys when
// they fall in the same UTC month, which is the only granularity the
// month/year counters observe.
func sameUTCMonthStamp(a, b time.Time) bool {
	return !a.IsZero() && progress.SameUTCMonth(a, b)
}
