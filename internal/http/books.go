package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shelfmark/shelfmark/internal/entities"
	"github.com/shelfmark/shelfmark/internal/progress"
	"github.com/shelfmark/shelfmark/internal/store"
	"github.com/shelfmark/shelfmark/internal/tracker"
)

// BookService defines the engine mutations the books controller drives.
type BookService interface {
	AddBook(ctx context.Context, input tracker.NewBook) (entities.Book, error)
	DeleteBook(ctx context.Context, bookID string) error
	UpdateReadingProgress(ctx context.Context, bookID string, currentPage int) error
	UpdateBookStatus(ctx context.Context, bookID string, status entities.ReadingStatus) error
	UpdateTotalPages(ctx context.Context, bookID string, newTotal int) error
	UpdateBookDescription(ctx context.Context, bookID, description string) error
	UpdateBookGenre(ctx context.Context, bookID, genre string) error
}

// BookView is a book plus its derived completion percentage.
type BookView struct {
	entities.Book
	PercentComplete int `json:"percent_complete"`
}

func bookView(b entities.Book) BookView {
	return BookView{Book: b, PercentComplete: progress.PercentComplete(b.CurrentPage, b.TotalPages)}
}

type BooksController struct {
	service BookService
	store   *store.Store
}

func NewBooksController(service BookService, st *store.Store) *BooksController {
	return &BooksController{service: service, store: st}
}

// ListBooks returns the whole collection.
// GET /api/books
func (bc *BooksController) ListBooks(c *gin.Context) {
	books := bc.store.Books()
	views := make([]BookView, 0, len(books))
	for _, b := range books {
		views = append(views, bookView(b))
	}
	c.JSON(http.StatusOK, gin.H{"books": views, "total": len(views)})
}

// GetBook returns one book with its highlights.
// GET /api/books/:id
func (bc *BooksController) GetBook(c *gin.Context) {
	id := c.Param("id")
	book, ok := bc.store.BookByID(id)
	if !ok {
		respondNotFound(c, "book")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"book":         bookView(book),
		"highlights":   bc.store.HighlightsForBook(id),
		"is_last_book": bc.store.IsLastBook(),
	})
}

type createBookRequest struct {
	Title       string   `json:"title" binding:"required"`
	Author      string   `json:"author"`
	TotalPages  int      `json:"total_pages" binding:"required,gt=0"`
	Genre       string   `json:"genre"`
	Categories  []string `json:"categories"`
	Description string   `json:"description"`
}

// CreateBook adds a book to the collection.
// POST /api/books
func (bc *BooksController) CreateBook(c *gin.Context) {
	var req createBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid book payload: "+err.Error())
		return
	}

	book, err := bc.service.AddBook(c.Request.Context(), tracker.NewBook{
		Title:       req.Title,
		Author:      req.Author,
		TotalPages:  req.TotalPages,
		Genre:       req.Genre,
		Categories:  req.Categories,
		Description: req.Description,
	})
	if err != nil {
		respondServiceError(c, err, "create book")
		return
	}
	respondCreated(c, bookView(book))
}

// DeleteBook removes a book and its highlights. The last remaining book is
// undeletable and answers 409.
// DELETE /api/books/:id
func (bc *BooksController) DeleteBook(c *gin.Context) {
	if err := bc.service.DeleteBook(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, err, "delete book")
		return
	}
	respondSuccess(c, "book deleted")
}

type updateProgressRequest struct {
	CurrentPage *int `json:"current_page" binding:"required,gte=0"`
}

// UpdateProgress moves a book to a new page; status and dates follow.
// PUT /api/books/:id/progress
func (bc *BooksController) UpdateProgress(c *gin.Context) {
	var req updateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid progress payload: "+err.Error())
		return
	}

	id := c.Param("id")
	if err := bc.service.UpdateReadingProgress(c.Request.Context(), id, *req.CurrentPage); err != nil {
		respondServiceError(c, err, "update progress")
		return
	}
	book, _ := bc.store.BookByID(id)
	c.JSON(http.StatusOK, bookView(book))
}

type updateStatusRequest struct {
	Status entities.ReadingStatus `json:"status" binding:"required"`
}

// UpdateStatus applies a direct status change. Transitions the policy
// disallows answer 409; the engine itself treats them as silent no-ops, so
// the pre-check here is what surfaces the message.
// PUT /api/books/:id/status
func (bc *BooksController) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid status payload: "+err.Error())
		return
	}
	if !req.Status.Valid() {
		respondBadRequest(c, "unknown reading status")
		return
	}

	id := c.Param("id")
	book, ok := bc.store.BookByID(id)
	if !ok {
		respondNotFound(c, "book")
		return
	}
	if !progress.CanChangeStatus(book, req.Status, bc.store.IsLastBook()) {
		respondConflict(c, "status change not allowed; reset progress to 0 instead")
		return
	}

	if err := bc.service.UpdateBookStatus(c.Request.Context(), id, req.Status); err != nil {
		respondServiceError(c, err, "update status")
		return
	}
	updated, _ := bc.store.BookByID(id)
	c.JSON(http.StatusOK, bookView(updated))
}

type updateTotalPagesRequest struct {
	TotalPages int `json:"total_pages" binding:"required,gt=0"`
}

// UpdateTotalPages corrects a book's page count.
// PUT /api/books/:id/pages
func (bc *BooksController) UpdateTotalPages(c *gin.Context) {
	var req updateTotalPagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid pages payload: "+err.Error())
		return
	}

	id := c.Param("id")
	if err := bc.service.UpdateTotalPages(c.Request.Context(), id, req.TotalPages); err != nil {
		respondServiceError(c, err, "update total pages")
		return
	}
	book, _ := bc.store.BookByID(id)
	c.JSON(http.StatusOK, bookView(book))
}

type updateDescriptionRequest struct {
	Description string `json:"description"`
}

// UpdateDescription sets the free-text description.
// PUT /api/books/:id/description
func (bc *BooksController) UpdateDescription(c *gin.Context) {
	var req updateDescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid description payload: "+err.Error())
		return
	}

	if err := bc.service.UpdateBookDescription(c.Request.Context(), c.Param("id"), req.Description); err != nil {
		respondServiceError(c, err, "update description")
		return
	}
	respondSuccess(c, "description updated")
}

type updateGenreRequest struct {
	Genre string `json:"genre" binding:"required"`
}

// UpdateGenre sets the genre.
// PUT /api/books/:id/genre
func (bc *BooksController) UpdateGenre(c *gin.Context) {
	var req updateGenreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid genre payload: "+err.Error())
		return
	}

	if err := bc.service.UpdateBookGenre(c.Request.Context(), c.Param("id"), req.Genre); err != nil {
		respondServiceError(c, err, "update genre")
		return
	}
	respondSuccess(c, "genre updated")
}
