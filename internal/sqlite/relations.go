package sqlite

import (
	"fmt"

	"github.com/mesh-intelligence/facet/internal/plan"
	"github.com/mesh-intelligence/facet/pkg/types"
)

// linkCol is the synthetic column carrying the parent key in join-strategy
// result sets. Schema identifiers cannot collide with it.
const linkCol = "__link"

// attach evaluates every relation load against the given parent records,
// dispatching on the load's resolved strategy.
func (f *fetcher) attach(parents []types.Record, parentModel *types.Model, loads []*plan.RelationLoad) error {
	for _, load := range loads {
		var err error
		if load.Strategy == types.StrategyJoin {
			err = f.joinLoad(parents, parentModel, load)
		} else {
			err = f.queryLoad(parents, parentModel, load)
		}
		if err != nil {
			return fmt.Errorf("loading relation %q: %w", load.Name, err)
		}
	}
	return nil
}

// linkKeys returns the columns that pair parent and child rows: parentKey
// on the parent model and childKey on the related model.
func linkKeys(parentModel *types.Model, load *plan.RelationLoad) (parentKey, childKey string) {
	if load.Relation.Kind == types.BelongsTo {
		return load.Relation.ForeignKey, load.Node.Model.PK()
	}
	return parentModel.PK(), load.Relation.ForeignKey
}

// queryLoad evaluates a relation with the query strategy: one additional
// SELECT over the related table keyed by the collected parent keys, merged
// into the parents in memory.
func (f *fetcher) queryLoad(parents []types.Record, parentModel *types.Model, load *plan.RelationLoad) error {
	parentKey, childKey := linkKeys(parentModel, load)

	keys, err := f.collectKeys(parents, parentModel, parentKey)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		assignChildren(parents, load, nil, parentKey)
		return nil
	}

	conds := []string{quoteIdent(childKey) + " IN (" + placeholders(len(keys)) + ")"}
	args := keys

	if len(load.Where) > 0 {
		clause, whereArgs, err := buildWhere(f.schema, load.Node.Model, load.Where, "")
		if err != nil {
			return err
		}
		conds = append(conds, clause)
		args = append(args, whereArgs...)
	}

	children, hidden, err := f.fetchRaw(load.Node, []string{childKey}, conds, args, 0)
	if err != nil {
		return err
	}

	groups := make(map[any][]types.Record, len(keys))
	for _, child := range children {
		k := child[childKey]
		groups[k] = append(groups[k], child)
	}

	// The child key may be a hidden column; strip only after grouping.
	stripHidden(children, hidden)
	assignChildren(parents, load, groups, parentKey)
	return nil
}

// joinLoad evaluates a relation with the join strategy: the related table
// is joined to the parent table in SQL and each result row carries its
// parent key, so pairing needs no application-side key probe into the
// child shape.
func (f *fetcher) joinLoad(parents []types.Record, parentModel *types.Model, load *plan.RelationLoad) error {
	parentKey, childKey := linkKeys(parentModel, load)

	keys, err := f.collectKeys(parents, parentModel, parentKey)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		assignChildren(parents, load, nil, parentKey)
		return nil
	}

	cols, hidden := fetchColumns(load.Node, nil)
	fields := make([]*types.Field, 0, len(cols)+1)
	names := make([]string, 0, len(cols)+1)
	fields = append(fields, parentModel.Field(parentKey))
	names = append(names, linkCol)

	sel := "p." + quoteIdent(parentKey) + " AS " + quoteIdent(linkCol)
	for _, name := range cols {
		fields = append(fields, load.Node.Model.Field(name))
		names = append(names, name)
		sel += ", c." + quoteIdent(name)
	}

	sqlText := fmt.Sprintf("SELECT %s FROM %s AS c JOIN %s AS p ON c.%s = p.%s WHERE p.%s IN (%s)",
		sel,
		quoteIdent(load.Node.Model.TableName()),
		quoteIdent(parentModel.TableName()),
		quoteIdent(childKey), quoteIdent(parentKey),
		quoteIdent(parentKey), placeholders(len(keys)))
	args := keys

	if len(load.Where) > 0 {
		clause, whereArgs, err := buildWhere(f.schema, load.Node.Model, load.Where, "c")
		if err != nil {
			return err
		}
		sqlText += " AND " + clause
		args = append(args, whereArgs...)
	}
	sqlText += " ORDER BY c." + quoteIdent(load.Node.Model.PK())

	rows, err := f.db.Query(sqlText, args...)
	if err != nil {
		return fmt.Errorf("joining %s: %w", load.Node.Model.Name, err)
	}
	defer rows.Close()

	children, err := scanRows(rows, fields, names)
	if err != nil {
		return err
	}

	if err := f.attach(children, load.Node.Model, load.Node.Relations); err != nil {
		return err
	}

	groups := make(map[any][]types.Record, len(keys))
	for _, child := range children {
		k := child[linkCol]
		delete(child, linkCol)
		groups[k] = append(groups[k], child)
	}

	stripHidden(children, hidden)
	assignChildren(parents, load, groups, parentKey)
	return nil
}

// collectKeys gathers the distinct non-null parent key values, encoded for
// use as SQL arguments.
func (f *fetcher) collectKeys(parents []types.Record, parentModel *types.Model, parentKey string) ([]any, error) {
	field := parentModel.Field(parentKey)
	seen := make(map[any]bool, len(parents))
	keys := make([]any, 0, len(parents))

	for _, rec := range parents {
		v := rec[parentKey]
		if v == nil || seen[v] {
			continue
		}
		seen[v] = true

		enc, err := encodeValue(f.schema, field, v)
		if err != nil {
			return nil, err
		}
		keys = append(keys, enc)
	}
	return keys, nil
}

// assignChildren writes the grouped child records onto each parent:
// a slice for has_many, a single record or nil for has_one and belongs_to.
func assignChildren(parents []types.Record, load *plan.RelationLoad, groups map[any][]types.Record, parentKey string) {
	toMany := load.Relation.Kind == types.HasMany

	for _, rec := range parents {
		var kids []types.Record
		if k := rec[parentKey]; k != nil {
			kids = groups[k]
		}

		if toMany {
			if kids == nil {
				kids = []types.Record{}
			}
			rec[load.Name] = kids
			continue
		}
		if len(kids) > 0 {
			rec[load.Name] = kids[0]
		} else {
			rec[load.Name] = nil
		}
	}
}
