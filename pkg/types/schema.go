package types

import (
	"errors"
	"fmt"
)

// FieldKind identifies the storage type of a scalar field.
type FieldKind string

// Scalar field kinds.
const (
	KindString FieldKind = "string"
	KindInt    FieldKind = "int"
	KindFloat  FieldKind = "float"
	KindBool   FieldKind = "bool"
	KindBytes  FieldKind = "bytes"
	KindTime   FieldKind = "time"
	KindEnum   FieldKind = "enum"
	KindJSON   FieldKind = "json"
)

// validFieldKinds is the set of recognized field kinds.
var validFieldKinds = map[FieldKind]bool{
	KindString: true,
	KindInt:    true,
	KindFloat:  true,
	KindBool:   true,
	KindBytes:  true,
	KindTime:   true,
	KindEnum:   true,
	KindJSON:   true,
}

// RelationKind identifies how two models relate.
type RelationKind string

// Relation kinds. For HasOne and HasMany the foreign key lives on the
// target model; for BelongsTo it lives on the declaring model.
const (
	HasOne    RelationKind = "has_one"
	HasMany   RelationKind = "has_many"
	BelongsTo RelationKind = "belongs_to"
)

// validRelationKinds is the set of recognized relation kinds.
var validRelationKinds = map[RelationKind]bool{
	HasOne:    true,
	HasMany:   true,
	BelongsTo: true,
}

// Schema validation errors.
var (
	ErrEmptySchema          = errors.New("schema has no models")
	ErrDuplicateModel       = errors.New("duplicate model name")
	ErrDuplicateField       = errors.New("duplicate field name")
	ErrInvalidFieldKind     = errors.New("invalid field kind")
	ErrUnknownEnum          = errors.New("unknown enum")
	ErrEmptyEnum            = errors.New("enum has no values")
	ErrMissingPrimaryKey    = errors.New("primary key field not declared")
	ErrUnknownRelationModel = errors.New("relation targets unknown model")
	ErrInvalidRelationKind  = errors.New("invalid relation kind")
	ErrMissingForeignKey    = errors.New("relation foreign key field not declared")
)

// Field is a scalar or enum field of a model.
type Field struct {
	Name     string    `yaml:"name" json:"name"`
	Kind     FieldKind `yaml:"kind" json:"kind"`
	Enum     string    `yaml:"enum,omitempty" json:"enum,omitempty"`
	Optional bool      `yaml:"optional,omitempty" json:"optional,omitempty"`
	Unique   bool      `yaml:"unique,omitempty" json:"unique,omitempty"`
}

// Relation is a named link from one model to another. ForeignKey names the
// scalar field that carries the link; which model declares that field
// depends on the relation kind.
type Relation struct {
	Name       string       `yaml:"name" json:"name"`
	Kind       RelationKind `yaml:"kind" json:"kind"`
	Model      string       `yaml:"model" json:"model"`
	ForeignKey string       `yaml:"foreign_key" json:"foreign_key"`
}

// Model is a named record type with scalar fields and relation fields.
type Model struct {
	Name       string     `yaml:"name" json:"name"`
	Table      string     `yaml:"table,omitempty" json:"table,omitempty"`
	PrimaryKey string     `yaml:"primary_key,omitempty" json:"primary_key,omitempty"`
	Fields     []Field    `yaml:"fields" json:"fields"`
	Relations  []Relation `yaml:"relations,omitempty" json:"relations,omitempty"`
}

// Enum is a named set of string values.
type Enum struct {
	Name   string   `yaml:"name" json:"name"`
	Values []string `yaml:"values" json:"values"`
}

// Schema is the full set of models and enums known to a store.
type Schema struct {
	Models []Model `yaml:"models" json:"models"`
	Enums  []Enum  `yaml:"enums,omitempty" json:"enums,omitempty"`
}

// TableName returns the SQL table name for the model: the explicit Table
// override when present, otherwise the model name.
func (m *Model) TableName() string {
	if m.Table != "" {
		return m.Table
	}
	return m.Name
}

// PK returns the primary key field name, defaulting to "id".
func (m *Model) PK() string {
	if m.PrimaryKey != "" {
		return m.PrimaryKey
	}
	return "id"
}

// Field returns the scalar field with the given name, or nil.
func (m *Model) Field(name string) *Field {
	for i := range m.Fields {
		if m.Fields[i].Name == name {
			return &m.Fields[i]
		}
	}
	return nil
}

// Relation returns the relation with the given name, or nil.
func (m *Model) Relation(name string) *Relation {
	for i := range m.Relations {
		if m.Relations[i].Name == name {
			return &m.Relations[i]
		}
	}
	return nil
}

// DefaultSelection returns the model's default selection set: every scalar
// and enum field in declaration order, and no relations.
func (m *Model) DefaultSelection() []string {
	names := make([]string, 0, len(m.Fields))
	for i := range m.Fields {
		names = append(names, m.Fields[i].Name)
	}
	return names
}

// Model returns the model with the given name, or nil.
func (s *Schema) Model(name string) *Model {
	for i := range s.Models {
		if s.Models[i].Name == name {
			return &s.Models[i]
		}
	}
	return nil
}

// Enum returns the enum with the given name, or nil.
func (s *Schema) Enum(name string) *Enum {
	for i := range s.Enums {
		if s.Enums[i].Name == name {
			return &s.Enums[i]
		}
	}
	return nil
}

// Validate checks that the schema is well-formed: unique model and field
// names, resolvable enum references, declared primary keys, and relation
// foreign keys that exist on the owning side.
func (s *Schema) Validate() error {
	if len(s.Models) == 0 {
		return ErrEmptySchema
	}

	enums := make(map[string]bool, len(s.Enums))
	for _, e := range s.Enums {
		if len(e.Values) == 0 {
			return fmt.Errorf("enum %q: %w", e.Name, ErrEmptyEnum)
		}
		enums[e.Name] = true
	}

	seen := make(map[string]bool, len(s.Models))
	for i := range s.Models {
		m := &s.Models[i]
		if seen[m.Name] {
			return fmt.Errorf("model %q: %w", m.Name, ErrDuplicateModel)
		}
		seen[m.Name] = true

		if err := s.validateModel(m, enums); err != nil {
			return err
		}
	}

	// Relation targets and foreign keys need every model registered first.
	for i := range s.Models {
		m := &s.Models[i]
		for j := range m.Relations {
			if err := s.validateRelation(m, &m.Relations[j]); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *Schema) validateModel(m *Model, enums map[string]bool) error {
	names := make(map[string]bool, len(m.Fields)+len(m.Relations))
	for _, f := range m.Fields {
		if names[f.Name] {
			return fmt.Errorf("model %q field %q: %w", m.Name, f.Name, ErrDuplicateField)
		}
		names[f.Name] = true

		if !validFieldKinds[f.Kind] {
			return fmt.Errorf("model %q field %q kind %q: %w", m.Name, f.Name, f.Kind, ErrInvalidFieldKind)
		}
		if f.Kind == KindEnum && !enums[f.Enum] {
			return fmt.Errorf("model %q field %q enum %q: %w", m.Name, f.Name, f.Enum, ErrUnknownEnum)
		}
	}
	for _, r := range m.Relations {
		if names[r.Name] {
			return fmt.Errorf("model %q relation %q: %w", m.Name, r.Name, ErrDuplicateField)
		}
		names[r.Name] = true
	}

	if m.Field(m.PK()) == nil {
		return fmt.Errorf("model %q primary key %q: %w", m.Name, m.PK(), ErrMissingPrimaryKey)
	}
	return nil
}

func (s *Schema) validateRelation(m *Model, r *Relation) error {
	if !validRelationKinds[r.Kind] {
		return fmt.Errorf("model %q relation %q kind %q: %w", m.Name, r.Name, r.Kind, ErrInvalidRelationKind)
	}

	target := s.Model(r.Model)
	if target == nil {
		return fmt.Errorf("model %q relation %q target %q: %w", m.Name, r.Name, r.Model, ErrUnknownRelationModel)
	}

	// The foreign key must be a declared scalar field on the owning side.
	owner := target
	if r.Kind == BelongsTo {
		owner = m
	}
	if owner.Field(r.ForeignKey) == nil {
		return fmt.Errorf("model %q relation %q foreign key %q on %q: %w",
			m.Name, r.Name, r.ForeignKey, owner.Name, ErrMissingForeignKey)
	}
	return nil
}
