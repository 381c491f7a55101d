// Package plan validates select/include directives against a schema and
// compiles them into executable query plans.
package plan

import (
	"fmt"

	"github.com/mesh-intelligence/facet/pkg/types"
)

// Node is the compiled plan for one model at one nesting level: the scalar
// columns the result carries and the relations to load beneath it.
type Node struct {
	Model     *types.Model
	Columns   []string
	Relations []*RelationLoad
}

// RelationLoad is one relation to evaluate under a Node. Strategy is fully
// resolved; it is never StrategyDefault.
type RelationLoad struct {
	Name     string
	Relation *types.Relation
	Node     *Node
	Where    types.Where
	Strategy types.Strategy
}

// Compile validates q against the model and produces a plan. fallback is
// the store-level relation load strategy; the query and each nested
// directive may override it for their own loads. All directive errors
// surface here, before any SQL is issued.
func Compile(s *types.Schema, m *types.Model, q types.Query, fallback types.Strategy) (*Node, error) {
	if fallback == types.StrategyDefault {
		fallback = types.StrategyQuery
	}
	strategy, err := resolveStrategy(q.Strategy, fallback)
	if err != nil {
		return nil, fmt.Errorf("model %q: %w", m.Name, err)
	}
	if err := validateWhere(m, q.Where); err != nil {
		return nil, err
	}
	return compileLevel(s, m, q.Select, q.Include, strategy)
}

func compileLevel(s *types.Schema, m *types.Model, sel types.SelectMap, inc types.IncludeMap, strategy types.Strategy) (*Node, error) {
	if sel != nil && inc != nil {
		return nil, fmt.Errorf("model %q: %w", m.Name, types.ErrSelectIncludeConflict)
	}

	switch {
	case sel != nil:
		return compileSelect(s, m, sel, strategy)
	case inc != nil:
		return compileInclude(s, m, inc, strategy)
	default:
		// Default selection set: all scalar and enum fields, no relations.
		return &Node{Model: m, Columns: m.DefaultSelection()}, nil
	}
}

// compileSelect builds a node carrying exactly the named fields. Columns
// and relations keep the model's declaration order so plans are stable.
func compileSelect(s *types.Schema, m *types.Model, sel types.SelectMap, strategy types.Strategy) (*Node, error) {
	if len(sel) == 0 {
		return nil, fmt.Errorf("model %q: %w", m.Name, types.ErrEmptySelect)
	}

	node := &Node{Model: m}
	consumed := make(map[string]bool, len(sel))

	for i := range m.Fields {
		name := m.Fields[i].Name
		rel, ok := sel[name]
		if !ok {
			continue
		}
		if rel != nil {
			return nil, fmt.Errorf("model %q field %q: %w", m.Name, name, types.ErrNotRelation)
		}
		node.Columns = append(node.Columns, name)
		consumed[name] = true
	}

	for i := range m.Relations {
		r := &m.Relations[i]
		rel, ok := sel[r.Name]
		if !ok {
			continue
		}
		load, err := compileRelation(s, m, r, rel, strategy)
		if err != nil {
			return nil, err
		}
		node.Relations = append(node.Relations, load)
		consumed[r.Name] = true
	}

	for name := range sel {
		if !consumed[name] {
			return nil, fmt.Errorf("model %q select %q: %w", m.Name, name, types.ErrUnknownField)
		}
	}
	return node, nil
}

// compileInclude builds a node carrying the default selection set plus the
// named relations.
func compileInclude(s *types.Schema, m *types.Model, inc types.IncludeMap, strategy types.Strategy) (*Node, error) {
	node := &Node{Model: m, Columns: m.DefaultSelection()}
	consumed := make(map[string]bool, len(inc))

	for i := range m.Relations {
		r := &m.Relations[i]
		rel, ok := inc[r.Name]
		if !ok {
			continue
		}
		load, err := compileRelation(s, m, r, rel, strategy)
		if err != nil {
			return nil, err
		}
		node.Relations = append(node.Relations, load)
		consumed[r.Name] = true
	}

	for name := range inc {
		if consumed[name] {
			continue
		}
		if m.Field(name) != nil {
			return nil, fmt.Errorf("model %q include %q: %w", m.Name, name, types.ErrNotRelation)
		}
		return nil, fmt.Errorf("model %q include %q: %w", m.Name, name, types.ErrUnknownField)
	}
	return node, nil
}

func compileRelation(s *types.Schema, m *types.Model, r *types.Relation, rel *types.Rel, strategy types.Strategy) (*RelationLoad, error) {
	target := s.Model(r.Model)
	if target == nil {
		// Validate catches this at attach time; guard for ad-hoc schemas.
		return nil, fmt.Errorf("model %q relation %q target %q: %w",
			m.Name, r.Name, r.Model, types.ErrModelNotFound)
	}

	load := &RelationLoad{Name: r.Name, Relation: r, Strategy: strategy}

	var sel types.SelectMap
	var inc types.IncludeMap
	if rel != nil {
		sel, inc = rel.Select, rel.Include
		load.Where = rel.Where

		resolved, err := resolveStrategy(rel.Strategy, strategy)
		if err != nil {
			return nil, fmt.Errorf("model %q relation %q: %w", m.Name, r.Name, err)
		}
		load.Strategy = resolved

		if err := validateWhere(target, rel.Where); err != nil {
			return nil, err
		}
	}

	node, err := compileLevel(s, target, sel, inc, load.Strategy)
	if err != nil {
		return nil, err
	}
	load.Node = node
	return load, nil
}

func resolveStrategy(s, fallback types.Strategy) (types.Strategy, error) {
	if !s.Valid() {
		return "", fmt.Errorf("%q: %w", s, types.ErrUnknownStrategy)
	}
	if s == types.StrategyDefault {
		return fallback, nil
	}
	return s, nil
}

// validateWhere checks that every filter key names a scalar field.
func validateWhere(m *types.Model, w types.Where) error {
	for name := range w {
		if m.Field(name) != nil {
			continue
		}
		if m.Relation(name) != nil {
			return fmt.Errorf("model %q where %q: %w", m.Name, name, types.ErrInvalidWhere)
		}
		return fmt.Errorf("model %q where %q: %w", m.Name, name, types.ErrUnknownField)
	}
	return nil
}

// Column reports whether the node emits the named scalar column.
func (n *Node) Column(name string) bool {
	for _, c := range n.Columns {
		if c == name {
			return true
		}
	}
	return false
}
