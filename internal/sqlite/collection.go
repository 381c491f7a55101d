package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/facet/pkg/types"
)

// collection implements types.Collection for a single model.
type collection struct {
	backend *Backend
	model   *types.Model
}

// newUUID generates a UUID v7 string for text primary keys.
func newUUID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FindUnique returns the single record matching q.Where, shaped by q.
// Returns a nil Record and nil error when no record matches.
func (c *collection) FindUnique(q types.Query) (types.Record, error) {
	c.backend.mu.RLock()
	defer c.backend.mu.RUnlock()

	if !c.backend.attached {
		return nil, types.ErrStoreDetached
	}
	if err := uniqueWhere(c.model, q.Where); err != nil {
		return nil, err
	}

	records, err := c.find(q, 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		// Absence is a value, not an error.
		return nil, nil
	}
	return records[0], nil
}

// FindMany returns all records matching q.Where, shaped by q.
func (c *collection) FindMany(q types.Query) ([]types.Record, error) {
	c.backend.mu.RLock()
	defer c.backend.mu.RUnlock()

	if !c.backend.attached {
		return nil, types.ErrStoreDetached
	}
	return c.find(q, 0)
}

// find compiles q and executes it. The caller holds the backend lock.
func (c *collection) find(q types.Query, limit int) ([]types.Record, error) {
	node, err := c.backend.plans.Compile(c.backend.schema, c.model, q, c.backend.strategy())
	if err != nil {
		return nil, err
	}

	var conds []string
	var args []any
	if len(q.Where) > 0 {
		clause, whereArgs, err := buildWhere(c.backend.schema, c.model, q.Where, "")
		if err != nil {
			return nil, err
		}
		conds = append(conds, clause)
		args = whereArgs
	}

	f := &fetcher{db: c.backend.db, schema: c.backend.schema}
	return f.fetch(node, conds, args, limit)
}

// Create inserts a record and returns it shaped by q. A missing text
// primary key is generated as a UUID v7; a missing integer primary key is
// assigned by SQLite.
func (c *collection) Create(data types.Record, q types.Query) (types.Record, error) {
	c.backend.mu.Lock()
	defer c.backend.mu.Unlock()

	if !c.backend.attached {
		return nil, types.ErrStoreDetached
	}

	pk := c.model.PK()
	pkField := c.model.Field(pk)

	if _, ok := data[pk]; !ok && pkField.Kind == types.KindString {
		data = data.Clone()
		data[pk] = newUUID()
	}

	cols, args, err := c.encodeData(data, true)
	if err != nil {
		return nil, err
	}

	quoted := make([]string, len(cols))
	for i, col := range cols {
		quoted[i] = quoteIdent(col)
	}
	res, err := c.backend.db.Exec(
		fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			quoteIdent(c.model.TableName()), strings.Join(quoted, ", "), placeholders(len(cols))),
		args...)
	if err != nil {
		return nil, fmt.Errorf("inserting %s: %w", c.model.Name, err)
	}

	pkValue, ok := data[pk]
	if !ok {
		// Integer rowid alias assigned by the insert.
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("resolving %s id: %w", c.model.Name, err)
		}
		pkValue = id
	}

	return c.findByPK(pkValue, q)
}

// Update modifies the single record matching where and returns it shaped
// by q. The filter must constrain a unique field. Returns ErrNotFound if
// no record matches.
func (c *collection) Update(where types.Where, data types.Record, q types.Query) (types.Record, error) {
	c.backend.mu.Lock()
	defer c.backend.mu.Unlock()

	if !c.backend.attached {
		return nil, types.ErrStoreDetached
	}
	if err := uniqueWhere(c.model, where); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("model %q: no fields to update: %w", c.model.Name, types.ErrInvalidData)
	}

	pkValue, err := c.resolvePK(where)
	if err != nil {
		return nil, err
	}

	cols, args, err := c.encodeData(data, false)
	if err != nil {
		return nil, err
	}

	sets := make([]string, len(cols))
	for i, col := range cols {
		sets[i] = quoteIdent(col) + " = ?"
	}
	pkArg, err := encodeValue(c.backend.schema, c.model.Field(c.model.PK()), pkValue)
	if err != nil {
		return nil, err
	}
	args = append(args, pkArg)

	_, err = c.backend.db.Exec(
		fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?",
			quoteIdent(c.model.TableName()), strings.Join(sets, ", "), quoteIdent(c.model.PK())),
		args...)
	if err != nil {
		return nil, fmt.Errorf("updating %s: %w", c.model.Name, err)
	}

	if updated, ok := data[c.model.PK()]; ok {
		pkValue = updated
	}
	return c.findByPK(pkValue, q)
}

// Delete removes the single record matching where. The filter must
// constrain a unique field. Returns ErrNotFound if no record matches.
func (c *collection) Delete(where types.Where) error {
	c.backend.mu.Lock()
	defer c.backend.mu.Unlock()

	if !c.backend.attached {
		return types.ErrStoreDetached
	}
	if err := uniqueWhere(c.model, where); err != nil {
		return err
	}

	clause, args, err := buildWhere(c.backend.schema, c.model, where, "")
	if err != nil {
		return err
	}

	res, err := c.backend.db.Exec(
		fmt.Sprintf("DELETE FROM %s WHERE %s", quoteIdent(c.model.TableName()), clause), args...)
	if err != nil {
		return fmt.Errorf("deleting %s: %w", c.model.Name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("model %q: %w", c.model.Name, types.ErrNotFound)
	}
	return nil
}

// Count returns the number of records matching where.
func (c *collection) Count(where types.Where) (int64, error) {
	c.backend.mu.RLock()
	defer c.backend.mu.RUnlock()

	if !c.backend.attached {
		return 0, types.ErrStoreDetached
	}

	sqlText := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdent(c.model.TableName()))
	var args []any
	if len(where) > 0 {
		clause, whereArgs, err := buildWhere(c.backend.schema, c.model, where, "")
		if err != nil {
			return 0, err
		}
		sqlText += " WHERE " + clause
		args = whereArgs
	}

	var n int64
	if err := c.backend.db.QueryRow(sqlText, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s: %w", c.model.Name, err)
	}
	return n, nil
}

// encodeData validates and encodes caller data for an insert or update.
// Every key must name a scalar field; on insert every required non-key
// field must be present.
func (c *collection) encodeData(data types.Record, insert bool) ([]string, []any, error) {
	for name := range data {
		if c.model.Field(name) != nil {
			continue
		}
		if c.model.Relation(name) != nil {
			return nil, nil, fmt.Errorf("model %q field %q: nested writes are not supported: %w",
				c.model.Name, name, types.ErrInvalidData)
		}
		return nil, nil, fmt.Errorf("model %q field %q: %w", c.model.Name, name, types.ErrUnknownField)
	}

	pk := c.model.PK()
	var cols []string
	var args []any
	for i := range c.model.Fields {
		f := &c.model.Fields[i]
		v, ok := data[f.Name]
		if !ok {
			if insert && !f.Optional && f.Name != pk {
				return nil, nil, fmt.Errorf("model %q field %q is required: %w",
					c.model.Name, f.Name, types.ErrInvalidData)
			}
			continue
		}
		enc, err := encodeValue(c.backend.schema, f, v)
		if err != nil {
			return nil, nil, err
		}
		cols = append(cols, f.Name)
		args = append(args, enc)
	}
	return cols, args, nil
}

// resolvePK finds the primary key of the single record matching where.
func (c *collection) resolvePK(where types.Where) (any, error) {
	clause, args, err := buildWhere(c.backend.schema, c.model, where, "")
	if err != nil {
		return nil, err
	}

	pkField := c.model.Field(c.model.PK())
	var raw any
	err = c.backend.db.QueryRow(
		fmt.Sprintf("SELECT %s FROM %s WHERE %s LIMIT 1",
			quoteIdent(c.model.PK()), quoteIdent(c.model.TableName()), clause),
		args...).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("model %q: %w", c.model.Name, types.ErrNotFound)
		}
		return nil, fmt.Errorf("resolving %s: %w", c.model.Name, err)
	}
	return decodeValue(pkField, raw)
}

// findByPK reads a record back by primary key, shaped by q. Write
// operations use it so their return shape follows the same planner as
// reads.
func (c *collection) findByPK(pkValue any, q types.Query) (types.Record, error) {
	q.Where = types.Where{c.model.PK(): pkValue}
	records, err := c.find(q, 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("model %q: %w", c.model.Name, types.ErrNotFound)
	}
	return records[0], nil
}
