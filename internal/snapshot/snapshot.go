// Package snapshot serializes the entity store's full state into a single
// keyed slot. There is no migration logic: a missing slot or a schema
// version other than the current one loads as an empty store.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/shelfmark/shelfmark/internal/database/snapshots"
	"github.com/shelfmark/shelfmark/internal/store"
)

// SlotKey is the fixed key the state lives under.
const SlotKey = "shelfmark.state"

// SchemaVersion is bumped whenever the serialized shape changes.
const SchemaVersion = 1

// Repository is the key-value slot the snapshot is stored in.
type Repository interface {
	Get(key string) (payload []byte, version int, err error)
	Put(key string, version int, payload []byte) error
}

// Manager loads and saves the store state.
type Manager struct {
	repo Repository
	log  *zap.Logger
}

// NewManager creates a snapshot manager.
func NewManager(repo Repository, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{repo: repo, log: log}
}

// Load reads the persisted state. Any problem short of a repository failure
// (missing slot, version mismatch, undecodable payload) yields an empty
// state.
func (m *Manager) Load() store.State {
	payload, version, err := m.repo.Get(SlotKey)
	if errors.Is(err, snapshots.ErrNotFound) {
		return store.State{}
	}
	if err != nil {
		m.log.Warn("snapshot load failed, starting empty", zap.Error(err))
		return store.State{}
	}
	if version != SchemaVersion {
		m.log.Info("snapshot schema version mismatch, starting empty",
			zap.Int("found", version),
			zap.Int("want", SchemaVersion))
		return store.State{}
	}

	var st store.State
	if err := json.Unmarshal(payload, &st); err != nil {
		m.log.Warn("snapshot payload undecodable, starting empty", zap.Error(err))
		return store.State{}
	}
	return st
}

// Save writes the state under the fixed key and current schema version.
func (m *Manager) Save(st store.State) error {
	payload, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := m.repo.Put(SlotKey, SchemaVersion, payload); err != nil {
		return fmt.Errorf("persist snapshot: %w", err)
	}
	return nil
}
