package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/facet/pkg/facet"
)

const modulePath = "github.com/mesh-intelligence/facet"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the facet version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "facet v%s\nmodule: %s\n", facet.Version, modulePath)
			return nil
		},
	}
}
