package sqlite

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/facet/pkg/types"
)

// fkRef describes a foreign key landing on a model's table, derived from a
// relation declared anywhere in the schema.
type fkRef struct {
	field    string // FK column on this table
	refTable string // referenced table
	refPK    string // referenced column
	unique   bool   // has_one FKs get a unique index
}

// schemaDDL generates idempotent DDL for every model in the schema:
// CREATE TABLE IF NOT EXISTS statements with column types derived from
// field kinds, foreign keys derived from relations, and unique indexes.
func schemaDDL(s *types.Schema) string {
	refs := collectRefs(s)

	var b strings.Builder
	for i := range s.Models {
		m := &s.Models[i]
		writeTable(&b, m, refs[m.Name])
		writeIndexes(&b, m, refs[m.Name])
	}
	return b.String()
}

// collectRefs maps each model name to the foreign keys that live on its
// table. For has_one and has_many the FK lands on the relation target; for
// belongs_to it lands on the declaring model.
func collectRefs(s *types.Schema) map[string][]fkRef {
	refs := make(map[string][]fkRef)
	for i := range s.Models {
		m := &s.Models[i]
		for _, r := range m.Relations {
			target := s.Model(r.Model)
			switch r.Kind {
			case types.BelongsTo:
				refs[m.Name] = append(refs[m.Name], fkRef{
					field:    r.ForeignKey,
					refTable: target.TableName(),
					refPK:    target.PK(),
				})
			case types.HasOne, types.HasMany:
				refs[r.Model] = append(refs[r.Model], fkRef{
					field:    r.ForeignKey,
					refTable: m.TableName(),
					refPK:    m.PK(),
					unique:   r.Kind == types.HasOne,
				})
			}
		}
	}
	return refs
}

func writeTable(b *strings.Builder, m *types.Model, refs []fkRef) {
	fmt.Fprintf(b, "CREATE TABLE IF NOT EXISTS %s (\n", quoteIdent(m.TableName()))

	pk := m.PK()
	var lines []string
	for _, f := range m.Fields {
		lines = append(lines, columnDef(&f, f.Name == pk))
	}
	if pkField := m.Field(pk); pkField.Kind != types.KindInt {
		// Integer primary keys are declared inline as rowid aliases so the
		// backend can assign them on insert.
		lines = append(lines, fmt.Sprintf("    PRIMARY KEY (%s)", quoteIdent(pk)))
	}
	for _, ref := range dedupeRefs(refs) {
		lines = append(lines, fmt.Sprintf("    FOREIGN KEY (%s) REFERENCES %s(%s)",
			quoteIdent(ref.field), quoteIdent(ref.refTable), quoteIdent(ref.refPK)))
	}

	b.WriteString(strings.Join(lines, ",\n"))
	b.WriteString("\n);\n")
}

func writeIndexes(b *strings.Builder, m *types.Model, refs []fkRef) {
	for _, ref := range dedupeRefs(refs) {
		if !ref.unique || m.Field(ref.field).Unique {
			continue
		}
		fmt.Fprintf(b, "CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s (%s);\n",
			quoteIdent("idx_"+m.TableName()+"_"+ref.field),
			quoteIdent(m.TableName()), quoteIdent(ref.field))
	}
}

// dedupeRefs drops duplicate FK columns; a pair of inverse relations may
// both describe the same link.
func dedupeRefs(refs []fkRef) []fkRef {
	seen := make(map[string]bool, len(refs))
	out := refs[:0:0]
	for _, ref := range refs {
		if seen[ref.field] {
			continue
		}
		seen[ref.field] = true
		out = append(out, ref)
	}
	return out
}

func columnDef(f *types.Field, isPK bool) string {
	var b strings.Builder
	b.WriteString("    ")
	b.WriteString(quoteIdent(f.Name))
	b.WriteByte(' ')
	b.WriteString(columnType(f.Kind))

	if isPK && f.Kind == types.KindInt {
		// Rowid alias: SQLite assigns the key when the insert omits it.
		b.WriteString(" PRIMARY KEY")
		return b.String()
	}
	if !f.Optional {
		b.WriteString(" NOT NULL")
	}
	if f.Unique {
		b.WriteString(" UNIQUE")
	}
	return b.String()
}

func columnType(k types.FieldKind) string {
	switch k {
	case types.KindInt, types.KindBool:
		return "INTEGER"
	case types.KindFloat:
		return "REAL"
	case types.KindBytes:
		return "BLOB"
	default:
		// string, enum, time (RFC3339), json all store as text.
		return "TEXT"
	}
}

// quoteIdent quotes a schema identifier for use in SQL.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
