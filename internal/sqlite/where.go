package sqlite

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/facet/pkg/types"
)

// buildWhere renders an equality filter as an AND-joined SQL fragment with
// bound arguments. Conditions follow the model's field declaration order
// so generated SQL is stable. An empty filter yields an empty fragment.
// A non-empty alias qualifies every column reference.
func buildWhere(s *types.Schema, m *types.Model, w types.Where, alias string) (string, []any, error) {
	if len(w) == 0 {
		return "", nil, nil
	}

	var conds []string
	var args []any
	consumed := 0

	for i := range m.Fields {
		f := &m.Fields[i]
		v, ok := w[f.Name]
		if !ok {
			continue
		}
		consumed++

		col := quoteIdent(f.Name)
		if alias != "" {
			col = alias + "." + col
		}

		if v == nil {
			conds = append(conds, col+" IS NULL")
			continue
		}
		enc, err := encodeValue(s, f, v)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %w", types.ErrInvalidWhere, err)
		}
		conds = append(conds, col+" = ?")
		args = append(args, enc)
	}

	if consumed != len(w) {
		for name := range w {
			if m.Field(name) == nil {
				return "", nil, fmt.Errorf("model %q where %q: %w", m.Name, name, types.ErrUnknownField)
			}
		}
	}

	return strings.Join(conds, " AND "), args, nil
}

// uniqueWhere checks that the filter constrains the primary key or a
// unique field, as FindUnique, Update, and Delete require.
func uniqueWhere(m *types.Model, w types.Where) error {
	if len(w) == 0 {
		return fmt.Errorf("model %q: filter must not be empty: %w", m.Name, types.ErrInvalidWhere)
	}
	pk := m.PK()
	for name := range w {
		f := m.Field(name)
		if f == nil {
			return fmt.Errorf("model %q where %q: %w", m.Name, name, types.ErrUnknownField)
		}
		if name == pk || f.Unique {
			return nil
		}
	}
	return fmt.Errorf("model %q: filter must constrain a unique field: %w", m.Name, types.ErrInvalidWhere)
}
