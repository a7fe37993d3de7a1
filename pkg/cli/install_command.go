package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/angelsen/ry-tool/pkg/console"
	"github.com/angelsen/ry-tool/pkg/constants"
	"github.com/angelsen/ry-tool/pkg/library"
	"github.com/angelsen/ry-tool/pkg/logger"
)

var installLog = logger.New("cli:install")

// NewInstallCommand creates the install command
func NewInstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "install [library]",
		Short: "Install a library from the registry",
		Long: `Install a library and its dependencies from the registry.

Without a library name on a terminal, an interactive picker lists the
registry contents.

Examples:
  ` + constants.BinaryName + ` install git-flow
  ` + constants.BinaryName + ` install`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) > 0 {
				name = args[0]
			}
			return RunInstall(name)
		},
	}
}

// RunInstall installs the named library, or prompts for one when the
// name is omitted on a terminal.
func RunInstall(name string) error {
	manager := library.NewManager()

	if name == "" {
		if !console.IsInteractive() {
			return fmt.Errorf("library name required (usage: %s install <library>)", constants.BinaryName)
		}
		results := manager.Search("")
		if len(results) == 0 {
			return fmt.Errorf("no registry available")
		}
		picked, err := pickLibrary(results)
		if err != nil {
			return err
		}
		if picked == "" {
			installLog.Print("Picker dismissed without a selection")
			return nil
		}
		name = picked
	}

	installLog.Printf("Installing %s", name)
	return manager.Install(name)
}
