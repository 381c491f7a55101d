package types

import (
	"errors"
	"testing"
)

func TestConfig_Validate(t *testing.T) {
	valid := Config{Backend: BackendSQLite, SchemaPath: "schema.yaml"}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	cases := []struct {
		name string
		cfg  Config
		want error
	}{
		{"empty backend", Config{SchemaPath: "s.yaml"}, ErrBackendEmpty},
		{"unknown backend", Config{Backend: "postgres", SchemaPath: "s.yaml"}, ErrBackendUnknown},
		{"missing schema", Config{Backend: BackendSQLite}, ErrSchemaMissing},
		{"bad strategy", Config{Backend: BackendSQLite, SchemaPath: "s.yaml", Strategy: "eager"}, ErrUnknownStrategy},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.cfg.Validate(); !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestConfig_ValidateInlineSchema(t *testing.T) {
	cfg := Config{Backend: BackendSQLite, Schema: blogSchema()}
	if err := cfg.Validate(); err != nil {
		t.Errorf("inline schema config rejected: %v", err)
	}
}
