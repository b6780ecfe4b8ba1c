// Package snapshots provides the key-value slot the persisted local
// snapshot lives in.
//
// This package implements the Repository interface defined in
// internal/snapshot/snapshot.go.
package snapshots

import (
	"errors"

	"gorm.io/gorm"

	"github.com/shelfmark/shelfmark/internal/database"
)

// ErrNotFound is returned when no snapshot exists under the requested key.
var ErrNotFound = errors.New("snapshot not found")

// Repository handles snapshot slot reads and writes.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new snapshots repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get returns the payload and schema version stored under key.
func (r *Repository) Get(key string) ([]byte, int, error) {
	var row database.SnapshotRow
	err := r.db.First(&row, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, err
	}
	return row.Payload, row.Version, nil
}

// Put upserts the payload and version under key.
func (r *Repository) Put(key string, version int, payload []byte) error {
	row := database.SnapshotRow{Key: key, Version: version, Payload: payload}
	return r.db.Save(&row).Error
}
