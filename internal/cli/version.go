package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/parkinglot/pkg/parking"
)

const modulePath = "github.com/mesh-intelligence/parkinglot"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the parkinglot version",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "parkinglot v%s\nmodule: %s\n", parking.Version, modulePath)
			return nil
		},
	}
}
