package http

import (
	"github.com/gin-gonic/gin"

	"github.com/shelfmark/shelfmark/internal/database"
	"github.com/shelfmark/shelfmark/internal/store"
	"github.com/shelfmark/shelfmark/internal/tracker"
	"github.com/shelfmark/shelfmark/internal/views"
)

// RouterConfig bundles the dependencies the router needs so tests can wire
// fakes without building the full entrypoint.
type RouterConfig struct {
	Service  *tracker.Service
	Store    *store.Store
	Views    *views.Cache
	Database *database.Database
	Version  string
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	books := NewBooksController(cfg.Service, cfg.Store)
	highlights := NewHighlightsController(cfg.Service, cfg.Store, cfg.Views)
	stats := NewStatsController(cfg.Store, cfg.Views)
	health := NewHealthController(cfg.Database, cfg.Version)

	router.GET("/health", health.Health)

	api := router.Group("/api")
	{
		api.GET("/books", books.ListBooks)
		api.POST("/books", books.CreateBook)
		api.GET("/books/:id", books.GetBook)
		api.DELETE("/books/:id", books.DeleteBook)
		api.PUT("/books/:id/progress", books.UpdateProgress)
		api.PUT("/books/:id/status", books.UpdateStatus)
		api.PUT("/books/:id/pages", books.UpdateTotalPages)
		api.PUT("/books/:id/description", books.UpdateDescription)
		api.PUT("/books/:id/genre", books.UpdateGenre)

		api.POST("/books/:id/highlights", highlights.CreateHighlight)
		api.GET("/highlights", highlights.ListHighlights)
		api.GET("/highlights/recent", highlights.RecentHighlights)
		api.GET("/highlights/favourites", highlights.ListFavourites)
		api.PUT("/highlights/:id", highlights.UpdateHighlight)
		api.DELETE("/highlights/:id", highlights.DeleteHighlight)
		api.POST("/highlights/:id/favourite", highlights.ToggleFavourite)

		api.GET("/stats", stats.GetStats)
	}

	return router
}
