// Package identity supplies the current authenticated user id. Mutations
// that must persist remotely fail with ErrNotAuthenticated when no id is
// available.
package identity

import "errors"

// ErrNotAuthenticated is returned when a persistence-requiring operation is
// invoked without an authenticated user.
var ErrNotAuthenticated = errors.New("no authenticated user")

// Provider yields the id of the currently authenticated user.
type Provider interface {
	CurrentUserID() (string, error)
}

// Static is the single-user provider: a fixed id from configuration.
type Static struct {
	userID string
}

// NewStatic creates a provider that always answers with userID. An empty id
// means nobody is authenticated.
func NewStatic(userID string) *Static {
	return &Static{userID: userID}
}

func (s *Static) CurrentUserID() (string, error) {
	if s.userID == "" {
		return "", ErrNotAuthenticated
	}
	return s.userID, nil
}
