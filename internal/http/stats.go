package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shelfmark/shelfmark/internal/entities"
	"github.com/shelfmark/shelfmark/internal/store"
	"github.com/shelfmark/shelfmark/internal/views"
)

type StatsController struct {
	store *store.Store
	views *views.Cache
}

func NewStatsController(st *store.Store, v *views.Cache) *StatsController {
	return &StatsController{store: st, views: v}
}

// GetStats returns collection totals and completion counts for the current
// UTC month and year.
// GET /api/stats
func (sc *StatsController) GetStats(c *gin.Context) {
	st := sc.store.State()
	stats := sc.views.Stats(st.Books, time.Now().UTC())

	inProgress := 0
	for _, b := range st.Books {
		if b.Status == entities.StatusInProgress {
			inProgress++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"total_books":          len(st.Books),
		"total_highlights":     len(st.Highlights),
		"books_in_progress":    inProgress,
		"completed_this_month": stats.CompletedThisMonth,
		"completed_this_year":  stats.CompletedThisYear,
	})
}
