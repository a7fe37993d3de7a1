package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/angelsen/ry-tool/pkg/constants"
)

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the " + constants.BinaryName + " version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s %s\n", constants.BinaryName, constants.Version)
		},
	}
}
