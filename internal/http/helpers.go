package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shelfmark/shelfmark/internal/identity"
	"github.com/shelfmark/shelfmark/internal/store"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"` // machine-readable error code
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found"})
}

// respondConflict sends a 409 Conflict response.
func respondConflict(c *gin.Context, message string) {
	c.JSON(http.StatusConflict, ErrorResponse{Error: message})
}

// respondServiceError translates engine errors into HTTP responses.
// Validation and lookup failures map to 4xx; anything else is a remote
// persistence failure, which has already been rolled back locally and is
// reported as 502 so the client can offer a retry.
func respondServiceError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, identity.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error(), Code: "not_authenticated"})
	case errors.Is(err, store.ErrBookNotFound):
		respondNotFound(c, "book")
	case errors.Is(err, store.ErrHighlightNotFound):
		respondNotFound(c, "highlight")
	case errors.Is(err, store.ErrUnknownBook):
		respondNotFound(c, "book")
	case errors.Is(err, store.ErrLastBook):
		respondConflict(c, err.Error())
	case errors.Is(err, store.ErrInvalidPage),
		errors.Is(err, store.ErrInvalidTotalPages),
		errors.Is(err, store.ErrInvalidStatus),
		errors.Is(err, store.ErrEmptyHighlightText):
		respondBadRequest(c, err.Error())
	default:
		log.Printf("Remote persistence error (%s): %v", context, err)
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "failed to persist change", Code: "remote_failure"})
	}
}

// --- Success Response Helpers ---

// respondSuccess sends a 200 OK response with a message.
func respondSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}

// respondCreated sends a 201 Created response with data.
func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// --- Parameter Parsing ---

// parseLimitQuery reads a positive "limit" query parameter, falling back to
// def for missing or out-of-range values.
func parseLimitQuery(c *gin.Context, def int) int {
	limitStr := c.Query("limit")
	if limitStr == "" {
		return def
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 || limit > 100 {
		return def
	}
	return limit
}
