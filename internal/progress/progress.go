// Package progress holds the pure functions of the reading engine: percent
// computation, date helpers, and the status transition policy. Nothing here
// touches the store or the network.
package progress

// PercentComplete returns how far through a book the reader is, rounded to
// the nearest whole percent. Out-of-range inputs are clamped: a non-positive
// total or negative page is 0, a page past the total is 100.
func PercentComplete(currentPage, totalPages int) int {
	if totalPages <= 0 || currentPage < 0 {
		return 0
	}
	if currentPage > totalPages {
		return 100
	}
	return int(float64(currentPage)/float64(totalPages)*100 + 0.5)
}
