// Config loading for the facet CLI.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/facet/internal/paths"
	"github.com/mesh-intelligence/facet/pkg/sqlite"
	"github.com/mesh-intelligence/facet/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"
	schemaFileName = "schema.yaml"

	// Config keys.
	cfgKeyBackend    = "backend"
	cfgKeyDataDir    = "data_dir"
	cfgKeySchemaPath = "schema_path"
	cfgKeyStrategy   = "relation_load_strategy"
	cfgKeyLogLevel   = "log_level"
	cfgKeyLogFormat  = "log_format"

	defaultBackend = "sqlite"
)

// defaultConfigYAML is the content written to config.yaml on first run.
const defaultConfigYAML = `# Facet CLI configuration

# Backend selection
backend: sqlite

# Schema file, relative to this directory unless absolute
schema_path: schema.yaml

# Default relation load strategy: query or join
relation_load_strategy: query

# Data directory (optional; overridable by --data-dir flag)
# data_dir:
`

// loadConfig reads config.yaml from the resolved config directory using
// Viper. It creates the config directory and a default config.yaml on
// first run. A missing config.yaml is not an error.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, defaultBackend)
	v.SetDefault(cfgKeySchemaPath, schemaFileName)
	v.SetDefault(cfgKeyStrategy, string(types.StrategyQuery))
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	return v, nil
}

// ensureDefaultConfigFile creates a default config.yaml if the file does
// not exist in the config directory.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// storeConfig resolves directories, loads config.yaml, and builds the
// store configuration.
func storeConfig() (types.Config, *viper.Viper, error) {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return types.Config{}, nil, err
	}

	v, err := loadConfig(configDir)
	if err != nil {
		return types.Config{}, nil, err
	}

	dataDir, err := paths.ResolveDataDir(flags.dataDir, v.GetString(cfgKeyDataDir))
	if err != nil {
		return types.Config{}, nil, err
	}

	schemaPath := v.GetString(cfgKeySchemaPath)
	if !filepath.IsAbs(schemaPath) {
		schemaPath = filepath.Join(configDir, schemaPath)
	}

	cfg := types.Config{
		Backend:    v.GetString(cfgKeyBackend),
		DataDir:    dataDir,
		SchemaPath: schemaPath,
		Strategy:   types.Strategy(v.GetString(cfgKeyStrategy)),
	}
	return cfg, v, nil
}

// openStore attaches a store using the resolved configuration. The caller
// must Detach it.
func openStore() (types.Store, error) {
	cfg, _, err := storeConfig()
	if err != nil {
		return nil, err
	}
	return openStoreWith(cfg)
}

// openStoreWith attaches a store with an already-resolved configuration.
func openStoreWith(cfg types.Config) (types.Store, error) {
	store := sqlite.NewStore()
	if err := store.Attach(cfg); err != nil {
		return nil, fmt.Errorf("attach store: %w", err)
	}
	return store, nil
}
