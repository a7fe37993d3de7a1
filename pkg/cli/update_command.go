package cli

import (
	"github.com/spf13/cobra"

	"github.com/angelsen/ry-tool/pkg/constants"
	"github.com/angelsen/ry-tool/pkg/library"
	"github.com/angelsen/ry-tool/pkg/logger"
)

var updateLog = logger.New("cli:update")

// NewUpdateCommand creates the update command
func NewUpdateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "update [library]",
		Short: "Update installed libraries to their latest versions",
		Long: `Update one installed library, or all of them when no name is given.

Examples:
  ` + constants.BinaryName + ` update git-flow
  ` + constants.BinaryName + ` update`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager := library.NewManager()
			if len(args) == 0 {
				updateLog.Print("Updating all installed libraries")
				return manager.UpdateAll()
			}
			updateLog.Printf("Updating %s", args[0])
			return manager.Update(args[0])
		},
	}
}
