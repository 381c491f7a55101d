package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// Query-construction errors. All of these surface at plan time, before any
// SQL is issued.
var (
	ErrUnknownField          = errors.New("unknown field")
	ErrNotRelation           = errors.New("field is not a relation")
	ErrSelectIncludeConflict = errors.New("select and include cannot be combined at the same level")
	ErrEmptySelect           = errors.New("select must name at least one field")
	ErrInvalidWhere          = errors.New("invalid where condition")
	ErrUnknownStrategy       = errors.New("unknown relation load strategy")
)

// Strategy selects how a relation is evaluated: as a database-level join or
// as a separate query merged in the application.
type Strategy string

// Relation load strategies. The zero value defers to the enclosing query,
// then to the store configuration.
const (
	StrategyDefault Strategy = ""
	StrategyJoin    Strategy = "join"
	StrategyQuery   Strategy = "query"
)

// Valid reports whether the strategy is a recognized value.
func (s Strategy) Valid() bool {
	return s == StrategyDefault || s == StrategyJoin || s == StrategyQuery
}

// Where is an equality filter over scalar fields, AND-joined. A nil value
// matches records where the field is NULL.
type Where map[string]any

// SelectMap is a select directive: the result contains exactly the named
// fields. A nil entry picks a scalar field or a relation with its default
// shape; a non-nil entry narrows a relation recursively.
type SelectMap map[string]*Rel

// IncludeMap is an include directive: the result contains the model's
// default selection set plus the named relations. A nil entry loads the
// relation's default shape; a non-nil entry narrows or filters it.
type IncludeMap map[string]*Rel

// Rel narrows a relation named in a Select or Include directive. At most
// one of Select and Include may be set.
type Rel struct {
	Select   SelectMap  `json:"select,omitempty"`
	Include  IncludeMap `json:"include,omitempty"`
	Where    Where      `json:"where,omitempty"`
	Strategy Strategy   `json:"relationLoadStrategy,omitempty"`
}

// Query describes one read against a collection. With neither Select nor
// Include the result carries the model's default selection set.
type Query struct {
	Where    Where      `json:"where,omitempty"`
	Select   SelectMap  `json:"select,omitempty"`
	Include  IncludeMap `json:"include,omitempty"`
	Strategy Strategy   `json:"relationLoadStrategy,omitempty"`
}

// UnmarshalJSON decodes entries of the form `"field": true` as plain picks
// and `"field": {...}` as nested relation directives. A false entry is
// dropped.
func (m *SelectMap) UnmarshalJSON(data []byte) error {
	out, err := unmarshalDirective(data)
	if err != nil {
		return err
	}
	*m = out
	return nil
}

// MarshalJSON renders plain picks as true.
func (m SelectMap) MarshalJSON() ([]byte, error) {
	return marshalDirective(map[string]*Rel(m))
}

// UnmarshalJSON decodes entries exactly as SelectMap does.
func (m *IncludeMap) UnmarshalJSON(data []byte) error {
	out, err := unmarshalDirective(data)
	if err != nil {
		return err
	}
	*m = out
	return nil
}

// MarshalJSON renders full-default loads as true.
func (m IncludeMap) MarshalJSON() ([]byte, error) {
	return marshalDirective(map[string]*Rel(m))
}

func unmarshalDirective(data []byte) (map[string]*Rel, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	out := make(map[string]*Rel, len(raw))
	for name, val := range raw {
		val = bytes.TrimSpace(val)
		switch {
		case bytes.Equal(val, []byte("true")):
			out[name] = nil
		case bytes.Equal(val, []byte("false")):
			// Explicitly excluded; same as not naming the field.
		default:
			var rel Rel
			if err := json.Unmarshal(val, &rel); err != nil {
				return nil, fmt.Errorf("directive entry %q: %w", name, err)
			}
			out[name] = &rel
		}
	}
	return out, nil
}

func marshalDirective(m map[string]*Rel) ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}

	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if m[name] == nil {
			buf.WriteString("true")
			continue
		}
		val, err := json.Marshal(m[name])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
