package cli

import (
	"github.com/spf13/cobra"

	"github.com/angelsen/ry-tool/pkg/constants"
	"github.com/angelsen/ry-tool/pkg/library"
)

// NewCheckCommand creates the check command
func NewCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Compile every library in the project to verify it is valid",
		Long: `Compile each library under libraries/ with a placeholder argument and
report the ones that fail. Nothing is executed.

Example:
  ` + constants.BinaryName + ` check`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return library.NewDeveloper(".").Check()
		},
	}
}
