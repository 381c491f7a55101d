package types

import "errors"

// Store provides backend-agnostic access to collections. Callers attach to
// a backend, access collections by model name, and detach when done.
type Store interface {
	// Attach connects the store to the backend described by config.
	// Creates the DataDir if it does not exist. Returns ErrAlreadyAttached
	// if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls
	// succeed. After Detach, collection operations return ErrStoreDetached.
	Detach() error

	// Schema returns the schema the store was attached with, or nil when
	// detached.
	Schema() *Schema

	// Collection returns the Collection for the named model.
	// Returns ErrModelNotFound if the schema has no such model.
	Collection(model string) (Collection, error)
}

// Collection provides query and write operations for a single model.
// Read results are shaped by the query's select/include directives; with
// neither directive, results carry the model's default selection set.
type Collection interface {
	// FindUnique returns the single record matching q.Where, shaped by q.
	// The filter must constrain the primary key or a unique field.
	// Returns a nil Record and nil error when no record matches.
	FindUnique(q Query) (Record, error)

	// FindMany returns all records matching q.Where, shaped by q.
	// An empty filter returns every record.
	FindMany(q Query) ([]Record, error)

	// Create inserts a record. A missing string primary key is generated
	// as a UUID v7; a missing integer primary key is assigned by the
	// backend. The created record is returned shaped by q.
	Create(data Record, q Query) (Record, error)

	// Update modifies the single record matching where and returns it
	// shaped by q. Returns ErrNotFound if no record matches.
	Update(where Where, data Record, q Query) (Record, error)

	// Delete removes the single record matching where.
	// Returns ErrNotFound if no record matches.
	Delete(where Where) error

	// Count returns the number of records matching where.
	Count(where Where) (int64, error)
}

// Store lifecycle and operation errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
	ErrModelNotFound   = errors.New("model not found")
	ErrNotFound        = errors.New("record not found")
	ErrInvalidData     = errors.New("invalid record data")
)
