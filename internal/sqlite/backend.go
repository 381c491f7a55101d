// Package sqlite implements the SQLite storage backend for Facet. The
// backend owns the database handle, generates DDL from the attached
// schema, and executes planned queries with either relation load strategy.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/facet/internal/plan"
	"github.com/mesh-intelligence/facet/pkg/types"
)

// dbFileName is the database file created under DataDir.
const dbFileName = "facet.db"

// Backend implements types.Store using SQLite as the query engine.
type Backend struct {
	mu          sync.RWMutex
	attached    bool
	config      types.Config
	schema      *types.Schema
	db          *sql.DB
	collections map[string]*collection
	plans       *plan.Cache
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{
		collections: make(map[string]*collection),
	}
}

// Attach initializes the backend with the given configuration: loads and
// validates the schema, creates DataDir if needed, opens the database, and
// applies the generated DDL. Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	schema := config.Schema
	if schema == nil {
		loaded, err := types.LoadSchema(config.SchemaPath)
		if err != nil {
			return err
		}
		schema = loaded
	}
	if err := schema.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, dbFileName))
	if err != nil {
		return err
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schemaDDL(schema)); err != nil {
		db.Close()
		return fmt.Errorf("apply schema: %w", err)
	}

	b.db = db
	b.config = config
	b.schema = schema
	b.plans = plan.NewCache(plan.DefaultCacheSize)
	b.attached = true

	for i := range schema.Models {
		m := &schema.Models[i]
		b.collections[m.Name] = &collection{backend: b, model: m}
	}

	return nil
}

// Detach releases all resources held by the backend. After Detach, all
// collection operations return ErrStoreDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil // idempotent
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}

	b.attached = false
	b.schema = nil
	b.plans = nil
	b.collections = make(map[string]*collection)

	return nil
}

// Schema returns the attached schema, or nil when detached.
func (b *Backend) Schema() *types.Schema {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.schema
}

// Collection returns the Collection for the named model.
// Returns ErrModelNotFound if the schema has no such model, and
// ErrStoreDetached if the backend is not attached.
func (b *Backend) Collection(model string) (types.Collection, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	c, ok := b.collections[model]
	if !ok {
		return nil, fmt.Errorf("%q: %w", model, types.ErrModelNotFound)
	}
	return c, nil
}

// strategy returns the store-level relation load strategy.
func (b *Backend) strategy() types.Strategy {
	if b.config.Strategy == types.StrategyDefault {
		return types.StrategyQuery
	}
	return b.config.Strategy
}
