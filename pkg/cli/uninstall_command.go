package cli

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/angelsen/ry-tool/pkg/console"
	"github.com/angelsen/ry-tool/pkg/constants"
	"github.com/angelsen/ry-tool/pkg/library"
	"github.com/angelsen/ry-tool/pkg/logger"
)

var uninstallLog = logger.New("cli:uninstall")

// NewUninstallCommand creates the uninstall command
func NewUninstallCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uninstall <library>",
		Short: "Remove an installed library",
		Long: `Remove an installed library's files and its tracking entry.

Prompts for confirmation on a terminal unless --yes is given.

Examples:
  ` + constants.BinaryName + ` uninstall git-flow
  ` + constants.BinaryName + ` uninstall git-flow --yes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			yes, _ := cmd.Flags().GetBool("yes")
			return RunUninstall(args[0], yes)
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// RunUninstall removes a library after confirmation.
func RunUninstall(name string, skipConfirm bool) error {
	if !skipConfirm && console.IsInteractive() {
		confirmed := false
		prompt := huh.NewConfirm().
			Title(fmt.Sprintf("Uninstall %s?", name)).
			Value(&confirmed)
		if err := prompt.Run(); err != nil {
			return fmt.Errorf("confirmation prompt failed: %w", err)
		}
		if !confirmed {
			uninstallLog.Printf("Uninstall of %s cancelled", name)
			return nil
		}
	}
	uninstallLog.Printf("Uninstalling %s", name)
	return library.NewManager().Uninstall(name)
}
