package progress

import (
	"time"

	"github.com/shelfmark/shelfmark/internal/entities"
)

// Derived is the status and date fields implied by a page position. The
// store writes all of them together with the page in a single replacement.
type Derived struct {
	Status        entities.ReadingStatus
	StartDate     *time.Time
	CompletedDate *time.Time
}

// DeriveStatus maps a page position onto a reading status and its date
// stamps:
//
//	page == 0          -> NOT_STARTED, both dates cleared
//	page == total > 0  -> COMPLETED, completed now, start kept (or now)
//	otherwise          -> IN_PROGRESS, start kept (or now), completed cleared
//
// existingCompletedDate is accepted for signature symmetry with the start
// date but never carried forward: completion is stamped fresh each time the
// completed state is reached.
func DeriveStatus(currentPage, totalPages int, existingStartDate, existingCompletedDate *time.Time, now time.Time) Derived {
	_ = existingCompletedDate

	if currentPage == 0 {
		return Derived{Status: entities.StatusNotStarted}
	}
	start := existingStartDate
	if start == nil {
		n := now
		start = &n
	}
	if totalPages > 0 && currentPage == totalPages {
		completed := now
		return Derived{Status: entities.StatusCompleted, StartDate: start, CompletedDate: &completed}
	}
	return Derived{Status: entities.StatusInProgress, StartDate: start}
}

// CanChangeStatus decides whether a direct status-set request is legal.
//
// COMPLETED may never regress to NOT_STARTED through a direct set; the
// caller must reset progress to 0 instead, which re-derives the status via
// the page path. NOT_STARTED is only reachable as a direct target from
// IN_PROGRESS.
//
// isOnlyBookInCollection is part of the signature for symmetry with the
// delete guard; only deletion is actually gated by collection size.
func CanChangeStatus(book entities.Book, newStatus entities.ReadingStatus, isOnlyBookInCollection bool) bool {
	_ = isOnlyBookInCollection

	if book.Status == entities.StatusCompleted && newStatus == entities.StatusNotStarted {
		return false
	}
	if newStatus == entities.StatusNotStarted && book.Status != entities.StatusInProgress {
		return false
	}
	return true
}

// ApplyStatus returns the book with an accepted direct status change and its
// side effects applied. COMPLETED forces the page to the total and stamps
// the completion; NOT_STARTED zeroes the page and clears both dates;
// IN_PROGRESS keeps the page (nudging 0 to 1 so the page and status stay
// consistent), stamps the start if missing and clears the completion.
func ApplyStatus(book entities.Book, newStatus entities.ReadingStatus, now time.Time) entities.Book {
	switch newStatus {
	case entities.StatusCompleted:
		book.CurrentPage = book.TotalPages
		if book.StartDate == nil {
			start := now
			book.StartDate = &start
		}
		completed := now
		book.CompletedDate = &completed
	case entities.StatusNotStarted:
		book.CurrentPage = 0
		book.StartDate = nil
		book.CompletedDate = nil
	case entities.StatusInProgress:
		if book.CurrentPage == 0 {
			book.CurrentPage = 1
		}
		if book.StartDate == nil {
			start := now
			book.StartDate = &start
		}
		book.CompletedDate = nil
	}
	book.Status = newStatus
	return book
}
