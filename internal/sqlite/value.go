package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mesh-intelligence/facet/pkg/types"
)

// encodeValue converts a caller-supplied field value into its SQLite
// storage form. Returns ErrInvalidData (wrapped) for values that do not
// fit the field kind.
func encodeValue(s *types.Schema, f *types.Field, v any) (any, error) {
	if v == nil {
		if !f.Optional {
			return nil, fmt.Errorf("field %q must not be null: %w", f.Name, types.ErrInvalidData)
		}
		return nil, nil
	}

	switch f.Kind {
	case types.KindString:
		if sv, ok := v.(string); ok {
			return sv, nil
		}
	case types.KindInt:
		switch n := v.(type) {
		case int:
			return int64(n), nil
		case int64:
			return n, nil
		case float64:
			// JSON numbers decode as float64.
			if n == float64(int64(n)) {
				return int64(n), nil
			}
		}
	case types.KindFloat:
		switch n := v.(type) {
		case float64:
			return n, nil
		case int:
			return float64(n), nil
		case int64:
			return float64(n), nil
		}
	case types.KindBool:
		if bv, ok := v.(bool); ok {
			if bv {
				return int64(1), nil
			}
			return int64(0), nil
		}
	case types.KindBytes:
		if bv, ok := v.([]byte); ok {
			return bv, nil
		}
	case types.KindTime:
		if tv, ok := v.(time.Time); ok {
			return tv.UTC().Format(time.RFC3339Nano), nil
		}
		if sv, ok := v.(string); ok {
			if _, err := time.Parse(time.RFC3339Nano, sv); err == nil {
				return sv, nil
			}
		}
	case types.KindEnum:
		sv, ok := v.(string)
		if !ok {
			break
		}
		enum := s.Enum(f.Enum)
		for _, val := range enum.Values {
			if val == sv {
				return sv, nil
			}
		}
		return nil, fmt.Errorf("field %q: %q is not a value of enum %q: %w",
			f.Name, sv, f.Enum, types.ErrInvalidData)
	case types.KindJSON:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, types.ErrInvalidData)
		}
		return string(data), nil
	}

	return nil, fmt.Errorf("field %q: %T does not fit kind %q: %w", f.Name, v, f.Kind, types.ErrInvalidData)
}

// decodeValue converts a raw driver value back to the field's Go form.
func decodeValue(f *types.Field, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}

	switch f.Kind {
	case types.KindString, types.KindEnum:
		return asString(raw), nil
	case types.KindInt:
		if n, ok := raw.(int64); ok {
			return n, nil
		}
	case types.KindFloat:
		switch n := raw.(type) {
		case float64:
			return n, nil
		case int64:
			return float64(n), nil
		}
	case types.KindBool:
		if n, ok := raw.(int64); ok {
			return n != 0, nil
		}
	case types.KindBytes:
		switch b := raw.(type) {
		case []byte:
			return b, nil
		case string:
			return []byte(b), nil
		}
	case types.KindTime:
		t, err := time.Parse(time.RFC3339Nano, asString(raw))
		if err != nil {
			return nil, fmt.Errorf("parsing field %q time: %w", f.Name, err)
		}
		return t, nil
	case types.KindJSON:
		var v any
		if err := json.Unmarshal([]byte(asString(raw)), &v); err != nil {
			return nil, fmt.Errorf("parsing field %q json: %w", f.Name, err)
		}
		return v, nil
	}

	return nil, fmt.Errorf("field %q: unexpected stored value %T", f.Name, raw)
}

func asString(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
