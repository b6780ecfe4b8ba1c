package views

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmark/shelfmark/internal/entities"
	"github.com/shelfmark/shelfmark/internal/store"
)

var viewsNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func seededStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.NewWithClock(func() time.Time { return viewsNow })
	s.AddBook(entities.Book{ID: "b1", Title: "Dune", Author: "Herbert", TotalPages: 400})
	s.AddBook(entities.Book{ID: "b2", Title: "Anathem", Author: "Stephenson", TotalPages: 900})

	for _, h := range []entities.Highlight{
		{ID: "h1", BookID: "b1", Text: "short", Page: 10},
		{ID: "h2", BookID: "b2", Text: "a much longer highlight text", Page: 20},
		{ID: "h3", BookID: "b1", Text: "medium text", Page: 5},
	} {
		_, err := s.AddHighlight(h)
		require.NoError(t, err)
	}
	return s
}

func TestEnrichedHighlights(t *testing.T) {
	t.Run("joins book fields", func(t *testing.T) {
		s := seededStore(t)
		c := NewCache()

		enriched := c.EnrichedHighlights(s.State())
		require.Len(t, enriched, 3)
		for _, e := range enriched {
			if e.BookID == "b1" {
				assert.Equal(t, "Dune", e.BookTitle)
				assert.Equal(t, "Herbert", e.BookAuthor)
				assert.Equal(t, 400, e.BookTotalPages)
			}
		}
	})

	t.Run("orphaned highlights are skipped", func(t *testing.T) {
		s := seededStore(t)
		c := NewCache()

		st := s.State()
		st.Highlights = append([]entities.Highlight{{ID: "orphan", BookID: "gone", Text: "x", CreatedAt: viewsNow}}, st.Highlights...)
		enriched := c.EnrichedHighlights(st)
		assert.Len(t, enriched, 3)
	})

	t.Run("repeated reads return the identical slice", func(t *testing.T) {
		s := seededStore(t)
		c := NewCache()

		first := c.EnrichedHighlights(s.State())
		second := c.EnrichedHighlights(s.State())
		require.NotEmpty(t, first)
		assert.Same(t, &first[0], &second[0])
	})

	t.Run("any mutation produces a new slice", func(t *testing.T) {
		s := seededStore(t)
		c := NewCache()

		first := c.EnrichedHighlights(s.State())
		require.NoError(t, s.UpdateReadingProgress("b1", 99))
		second := c.EnrichedHighlights(s.State())
		assert.NotSame(t, &first[0], &second[0])

		// The rebuilt view reflects the new page.
		for _, e := range second {
			if e.BookID == "b1" {
				assert.Equal(t, 99, e.BookCurrentPage)
			}
		}
	})
}

func TestRecent(t *testing.T) {
	t.Run("limits and counts", func(t *testing.T) {
		s := seededStore(t)
		c := NewCache()

		r := c.Recent(s.State(), 2, viewsNow)
		assert.Len(t, r.Highlights, 2)
		assert.Equal(t, 3, r.Total)
		assert.Equal(t, 3, r.CreatedThisMonth)
	})

	t.Run("month counter uses UTC calendar months", func(t *testing.T) {
		s := store.NewWithClock(func() time.Time { return time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC) })
		s.AddBook(entities.Book{ID: "b1", Title: "T", TotalPages: 100})
		_, err := s.AddHighlight(entities.Highlight{ID: "h1", BookID: "b1", Text: "january", Page: 1})
		require.NoError(t, err)

		c := NewCache()
		inJanuary := c.Recent(s.State(), 10, time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC))
		assert.Equal(t, 1, inJanuary.CreatedThisMonth)

		inFebruary := c.Recent(s.State(), 10, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
		assert.Equal(t, 0, inFebruary.CreatedThisMonth)
	})

	t.Run("memoized per state, limit and month", func(t *testing.T) {
		s := seededStore(t)
		c := NewCache()

		first := c.Recent(s.State(), 2, viewsNow)
		second := c.Recent(s.State(), 2, viewsNow.Add(time.Hour))
		assert.Same(t, &first.Highlights[0], &second.Highlights[0])

		third := c.Recent(s.State(), 3, viewsNow)
		assert.Len(t, third.Highlights, 3)
	})
}

func TestSorted(t *testing.T) {
	s := seededStore(t)
	c := NewCache()
	st := s.State()

	t.Run("by book title", func(t *testing.T) {
		got := c.Sorted(st, SortByBook)
		require.Len(t, got, 3)
		assert.Equal(t, "Anathem", got[0].BookTitle)
		assert.Equal(t, "Dune", got[1].BookTitle)
	})

	t.Run("by book and page", func(t *testing.T) {
		got := c.Sorted(st, SortByBookPage)
		require.Len(t, got, 3)
		assert.Equal(t, "h2", got[0].ID)
		assert.Equal(t, "h3", got[1].ID) // Dune page 5
		assert.Equal(t, "h1", got[2].ID) // Dune page 10
	})

	t.Run("by length", func(t *testing.T) {
		got := c.Sorted(st, SortByLength)
		require.Len(t, got, 3)
		assert.Equal(t, "h2", got[0].ID)
		assert.Equal(t, "h3", got[1].ID)
		assert.Equal(t, "h1", got[2].ID)
	})

	t.Run("favorites first", func(t *testing.T) {
		s := seededStore(t)
		_, ok := s.ToggleFavoriteHighlight("h1")
		require.True(t, ok)

		got := NewCache().Sorted(s.State(), SortByFavorites)
		require.Len(t, got, 3)
		assert.Equal(t, "h1", got[0].ID)
	})

	t.Run("memoized per criterion", func(t *testing.T) {
		first := c.Sorted(st, SortByBook)
		second := c.Sorted(st, SortByBook)
		assert.Same(t, &first[0], &second[0])
	})
}

func TestFavorites(t *testing.T) {
	s := seededStore(t)
	_, ok := s.ToggleFavoriteHighlight("h2")
	require.True(t, ok)

	got := NewCache().Favorites(s.State())
	require.Len(t, got, 1)
	assert.Equal(t, "h2", got[0].ID)
}

func TestStats(t *testing.T) {
	t.Run("counts completions in the current month and year", func(t *testing.T) {
		thisMonth := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
		earlierThisYear := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
		lastYear := time.Date(2023, 6, 10, 0, 0, 0, 0, time.UTC)

		books := []entities.Book{
			{ID: "b1", Status: entities.StatusCompleted, CompletedDate: &thisMonth},
			{ID: "b2", Status: entities.StatusCompleted, CompletedDate: &earlierThisYear},
			{ID: "b3", Status: entities.StatusCompleted, CompletedDate: &lastYear},
			{ID: "b4", Status: entities.StatusInProgress},
		}

		stats := NewCache().Stats(books, viewsNow)
		assert.Equal(t, 1, stats.CompletedThisMonth)
		assert.Equal(t, 2, stats.CompletedThisYear)
	})

	t.Run("completed without a date does not count", func(t *testing.T) {
		books := []entities.Book{{ID: "b1", Status: entities.StatusCompleted}}
		stats := NewCache().Stats(books, viewsNow)
		assert.Equal(t, 0, stats.CompletedThisMonth)
		assert.Equal(t, 0, stats.CompletedThisYear)
	})
}

func TestValidSortOrder(t *testing.T) {
	assert.True(t, ValidSortOrder(SortByDate))
	assert.True(t, ValidSortOrder(SortByFavorites))
	assert.False(t, ValidSortOrder(SortOrder("random")))
}
