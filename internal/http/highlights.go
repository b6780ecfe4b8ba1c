package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shelfmark/shelfmark/internal/entities"
	"github.com/shelfmark/shelfmark/internal/store"
	"github.com/shelfmark/shelfmark/internal/tracker"
	"github.com/shelfmark/shelfmark/internal/views"
)

// HighlightService defines the engine mutations the highlights controller
// drives.
type HighlightService interface {
	AddHighlight(ctx context.Context, input tracker.NewHighlight) (entities.Highlight, error)
	UpdateHighlight(ctx context.Context, id, text string) error
	DeleteHighlight(ctx context.Context, id string) error
	ToggleFavorite(ctx context.Context, id string) (entities.Highlight, error)
}

type HighlightsController struct {
	service HighlightService
	store   *store.Store
	views   *views.Cache
}

func NewHighlightsController(service HighlightService, st *store.Store, v *views.Cache) *HighlightsController {
	return &HighlightsController{service: service, store: st, views: v}
}

type createHighlightRequest struct {
	Text       string `json:"text" binding:"required"`
	Page       int    `json:"page" binding:"gte=0"`
	IsFavorite bool   `json:"is_favorite"`
}

// CreateHighlight captures an excerpt on an existing book.
// POST /api/books/:id/highlights
func (hc *HighlightsController) CreateHighlight(c *gin.Context) {
	var req createHighlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid highlight payload: "+err.Error())
		return
	}

	h, err := hc.service.AddHighlight(c.Request.Context(), tracker.NewHighlight{
		BookID:     c.Param("id"),
		Text:       req.Text,
		Page:       req.Page,
		IsFavorite: req.IsFavorite,
	})
	if err != nil {
		respondServiceError(c, err, "create highlight")
		return
	}
	respondCreated(c, h)
}

type updateHighlightRequest struct {
	Text string `json:"text" binding:"required"`
}

// UpdateHighlight replaces a highlight's text.
// PUT /api/highlights/:id
func (hc *HighlightsController) UpdateHighlight(c *gin.Context) {
	var req updateHighlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid highlight payload: "+err.Error())
		return
	}

	id := c.Param("id")
	if err := hc.service.UpdateHighlight(c.Request.Context(), id, req.Text); err != nil {
		respondServiceError(c, err, "update highlight")
		return
	}
	h, _ := hc.store.HighlightByID(id)
	c.JSON(http.StatusOK, h)
}

// DeleteHighlight removes a single highlight.
// DELETE /api/highlights/:id
func (hc *HighlightsController) DeleteHighlight(c *gin.Context) {
	if err := hc.service.DeleteHighlight(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, err, "delete highlight")
		return
	}
	respondSuccess(c, "highlight deleted")
}

// ToggleFavourite flips a highlight's favourite flag.
// POST /api/highlights/:id/favourite
func (hc *HighlightsController) ToggleFavourite(c *gin.Context) {
	h, err := hc.service.ToggleFavorite(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "toggle favourite")
		return
	}
	c.JSON(http.StatusOK, h)
}

// ListFavourites returns the favourite highlights, newest first.
// GET /api/highlights/favourites
func (hc *HighlightsController) ListFavourites(c *gin.Context) {
	favourites := hc.views.Favorites(hc.store.State())
	c.JSON(http.StatusOK, gin.H{"highlights": favourites, "total": len(favourites)})
}

// RecentHighlights returns the newest highlights plus counters.
// GET /api/highlights/recent?limit=N
func (hc *HighlightsController) RecentHighlights(c *gin.Context) {
	limit := parseLimitQuery(c, 10)
	recent := hc.views.Recent(hc.store.State(), limit, time.Now().UTC())
	c.JSON(http.StatusOK, recent)
}

// ListHighlights returns all enriched highlights in the requested order.
// GET /api/highlights?sort=date|book|book_page|length|favorites
func (hc *HighlightsController) ListHighlights(c *gin.Context) {
	order := views.SortByDate
	if raw := c.Query("sort"); raw != "" {
		order = views.SortOrder(raw)
		if !views.ValidSortOrder(order) {
			respondBadRequest(c, "unknown sort order")
			return
		}
	}

	sorted := hc.views.Sorted(hc.store.State(), order)
	c.JSON(http.StatusOK, gin.H{"highlights": sorted, "total": len(sorted), "sort": order})
}
