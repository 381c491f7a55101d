package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/facet/internal/plan"
	"github.com/mesh-intelligence/facet/pkg/types"
)

// fetcher executes one compiled plan against the database. It is created
// per query; the caller holds the backend read lock for its lifetime.
type fetcher struct {
	db     *sql.DB
	schema *types.Schema
}

// fetchColumns returns the columns a level actually reads: the plan's
// emitted columns plus the hidden keys relation loading needs (the primary
// key and any belongs_to foreign keys). extra columns are appended the
// same way. The second return lists the hidden names to strip from shaped
// records.
func fetchColumns(node *plan.Node, extra []string) (cols []string, hidden []string) {
	cols = append(cols, node.Columns...)
	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		seen[c] = true
	}

	add := func(name string) {
		if seen[name] {
			return
		}
		seen[name] = true
		cols = append(cols, name)
		hidden = append(hidden, name)
	}

	add(node.Model.PK())
	for _, load := range node.Relations {
		if load.Relation.Kind == types.BelongsTo {
			add(load.Relation.ForeignKey)
		}
	}
	for _, name := range extra {
		add(name)
	}
	return cols, hidden
}

// fetchRaw runs one plan level: selects the level's columns under the
// given conditions, scans rows into records, and attaches every relation
// beneath it. Returned records still carry their hidden key columns; the
// caller strips them once grouping is done.
func (f *fetcher) fetchRaw(node *plan.Node, extra []string, conds []string, args []any, limit int) ([]types.Record, []string, error) {
	cols, hidden := fetchColumns(node, extra)

	fields := make([]*types.Field, len(cols))
	quoted := make([]string, len(cols))
	for i, name := range cols {
		fields[i] = node.Model.Field(name)
		quoted[i] = quoteIdent(name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", strings.Join(quoted, ", "), quoteIdent(node.Model.TableName()))
	if len(conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}
	// Primary key order keeps result and child ordering deterministic.
	fmt.Fprintf(&b, " ORDER BY %s", quoteIdent(node.Model.PK()))
	if limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", limit)
	}

	rows, err := f.db.Query(b.String(), args...)
	if err != nil {
		return nil, nil, fmt.Errorf("querying %s: %w", node.Model.Name, err)
	}
	defer rows.Close()

	records, err := scanRows(rows, fields, cols)
	if err != nil {
		return nil, nil, err
	}

	if err := f.attach(records, node.Model, node.Relations); err != nil {
		return nil, nil, err
	}
	return records, hidden, nil
}

// fetch runs a plan level and returns fully shaped records.
func (f *fetcher) fetch(node *plan.Node, conds []string, args []any, limit int) ([]types.Record, error) {
	records, hidden, err := f.fetchRaw(node, nil, conds, args, limit)
	if err != nil {
		return nil, err
	}
	stripHidden(records, hidden)
	return records, nil
}

// scanRows decodes every row into a Record. fields and names are aligned
// with the SELECT column order.
func scanRows(rows *sql.Rows, fields []*types.Field, names []string) ([]types.Record, error) {
	records := []types.Record{}
	raw := make([]any, len(fields))
	ptrs := make([]any, len(fields))
	for i := range raw {
		ptrs[i] = &raw[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		rec := make(types.Record, len(fields))
		for i, f := range fields {
			v, err := decodeValue(f, raw[i])
			if err != nil {
				return nil, err
			}
			rec[names[i]] = v
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// stripHidden removes hidden key columns from shaped records.
func stripHidden(records []types.Record, hidden []string) {
	if len(hidden) == 0 {
		return
	}
	for _, rec := range records {
		for _, name := range hidden {
			delete(rec, name)
		}
	}
}

// placeholders renders n comma-separated SQL parameter markers.
func placeholders(n int) string {
	if n == 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}
