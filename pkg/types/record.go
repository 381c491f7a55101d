package types

// Record is one shaped result object. Keys are exactly the resolved
// selection: scalar values for fields, a Record or nil for to-one
// relations, and a []Record for to-many relations.
type Record map[string]any

// Clone returns a shallow copy of the record. Relation values are shared.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
