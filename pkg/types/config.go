package types

import "errors"

// Config holds backend selection and parameters for Store.Attach.
// Exactly one of Schema and SchemaPath must be set.
type Config struct {
	Backend    string   `json:"backend" yaml:"backend"`
	DataDir    string   `json:"data_dir" yaml:"data_dir"`
	SchemaPath string   `json:"schema_path" yaml:"schema_path"`
	Schema     *Schema  `json:"-" yaml:"-"`
	Strategy   Strategy `json:"relation_load_strategy" yaml:"relation_load_strategy"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
	ErrSchemaMissing  = errors.New("schema or schema path must be set")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel
// error from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.Schema == nil && c.SchemaPath == "" {
		return ErrSchemaMissing
	}
	if !c.Strategy.Valid() {
		return ErrUnknownStrategy
	}
	return nil
}
