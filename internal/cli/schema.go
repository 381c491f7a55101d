package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/facet/pkg/types"
)

func newSchemaCmd() *cobra.Command {
	schema := &cobra.Command{
		Use:   "schema",
		Short: "Inspect the configured schema",
	}
	schema.AddCommand(newSchemaValidateCmd())
	schema.AddCommand(newSchemaShowCmd())
	return schema
}

func newSchemaValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load the schema file and check it is well-formed",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadConfiguredSchema()
			if err != nil {
				return exitError(exitUserError, err.Error())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema ok: %d models, %d enums\n", len(s.Models), len(s.Enums))
			return nil
		},
	}
}

func newSchemaShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the configured schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadConfiguredSchema()
			if err != nil {
				return exitError(exitUserError, err.Error())
			}

			if flags.jsonMode {
				out, err := json.MarshalIndent(s, "", "  ")
				if err != nil {
					return exitError(exitSysError, err.Error())
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			}

			for i := range s.Models {
				m := &s.Models[i]
				fmt.Fprintf(cmd.OutOrStdout(), "model %s (pk %s)\n", m.Name, m.PK())
				for _, f := range m.Fields {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s %s\n", f.Name, f.Kind)
				}
				for _, r := range m.Relations {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s %s -> %s via %s\n", r.Name, r.Kind, r.Model, r.ForeignKey)
				}
			}
			return nil
		},
	}
}

func loadConfiguredSchema() (*types.Schema, error) {
	cfg, _, err := storeConfig()
	if err != nil {
		return nil, err
	}
	return types.LoadSchema(cfg.SchemaPath)
}
