// Package sqlite provides the public API for the SQLite Facet backend.
// It exposes the factory function for creating SQLite stores while keeping
// implementation details internal.
package sqlite

import (
	"github.com/mesh-intelligence/facet/internal/sqlite"
	"github.com/mesh-intelligence/facet/pkg/types"
)

// NewStore creates a new SQLite store instance.
// The store is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	store := sqlite.NewStore()
//	err := store.Attach(types.Config{
//	    Backend:    types.BackendSQLite,
//	    DataDir:    ".facet-db",
//	    SchemaPath: "schema.yaml",
//	})
//	defer store.Detach()
func NewStore() types.Store {
	return sqlite.NewBackend()
}
