// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations
//	├── models.go        # Persisted row shapes and boundary converters
//	├── books/           # Book mirror operations
//	├── highlights/      # Highlight mirror operations
//	└── snapshots/       # Keyed slot for the serialized local state
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	// Initialize database connection
//	db, err := database.NewDatabase("./shelfmark.db")
//
//	// Create domain-specific repositories
//	bookRepo := books.NewRepository(db.DB)
//	highlightRepo := highlights.NewRepository(db.DB)
//	snapshotRepo := snapshots.NewRepository(db.DB)
//
// # Interface Implementations
//
// Each sub-package implements specific interfaces:
//
//   - books.Repository: implements tracker.BookRemote
//   - highlights.Repository: implements tracker.HighlightRemote
//   - snapshots.Repository: implements snapshot.Repository
//
// Domain timestamps cross the row boundary as ISO-8601 strings; see
// models.go for the converters.
//
// # Adding a New Domain
//
// To add a new domain (e.g., collections):
//
//  1. Create a new sub-package: internal/database/collections/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Implement the required interface
//  5. Add compile-time interface check: var _ SomeInterface = (*Repository)(nil)
package database
