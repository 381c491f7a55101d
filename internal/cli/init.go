package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/facet/internal/paths"
	"github.com/mesh-intelligence/facet/pkg/sqlite"
)

// starterSchemaYAML is the schema written on first init: a small blog
// domain exercising enums and every relation kind.
const starterSchemaYAML = `# Facet schema
models:
  - name: User
    fields:
      - {name: id, kind: int}
      - {name: name, kind: string}
      - {name: email, kind: string, unique: true}
      - {name: profileViews, kind: int}
      - {name: role, kind: enum, enum: Role}
      - {name: coinflips, kind: json}
    relations:
      - {name: posts, kind: has_many, model: Post, foreign_key: authorId}
      - {name: profile, kind: has_one, model: Profile, foreign_key: userId}
  - name: Post
    fields:
      - {name: id, kind: int}
      - {name: title, kind: string}
      - {name: published, kind: bool}
      - {name: authorId, kind: int}
    relations:
      - {name: author, kind: belongs_to, model: User, foreign_key: authorId}
  - name: Profile
    fields:
      - {name: id, kind: int}
      - {name: biography, kind: string}
      - {name: userId, kind: int}
enums:
  - name: Role
    values: [USER, ADMIN]
`

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize facet storage",
		Long:  "Create configuration and data directories, write a starter schema,\nand initialize the storage backend.",
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return exitError(exitSysError, fmt.Sprintf("resolve config directory: %s", err))
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return exitError(exitSysError, fmt.Sprintf("create config directory: %s", err))
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return exitError(exitSysError, fmt.Sprintf("write config: %s", err))
	}
	if err := writeStarterSchemaIfMissing(configDir); err != nil {
		return exitError(exitSysError, fmt.Sprintf("write schema: %s", err))
	}

	// Initialize the data directory via Attach then Detach.
	cfg, _, err := storeConfig()
	if err != nil {
		return exitError(exitSysError, fmt.Sprintf("load config: %s", err))
	}

	store := sqlite.NewStore()
	if err := store.Attach(cfg); err != nil {
		return exitError(exitSysError, fmt.Sprintf("initialize storage: %s", err))
	}
	if err := store.Detach(); err != nil {
		return exitError(exitSysError, fmt.Sprintf("finalize storage: %s", err))
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Facet initialized successfully")
	return nil
}

// writeStarterSchemaIfMissing creates schema.yaml with the starter schema
// if the file does not exist. Idempotent.
func writeStarterSchemaIfMissing(configDir string) error {
	path := filepath.Join(configDir, schemaFileName)
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	return os.WriteFile(path, []byte(starterSchemaYAML), 0o644)
}
