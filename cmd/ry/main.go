package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/angelsen/ry-tool/pkg/cli"
	"github.com/angelsen/ry-tool/pkg/console"
	"github.com/angelsen/ry-tool/pkg/constants"
)

var rootCmd = &cobra.Command{
	Use:   constants.BinaryName + " [flags] <library-or-file> [args...]",
	Short: "Compile YAML workflows into shell scripts",
	Long: `ry compiles declarative YAML workflow documents into shell scripts.

The document's steps, control flow and variable substitutions are all
resolved at compile time; the result is printed (or written with
--output) and never executed by ry itself.

Examples:
  ` + constants.BinaryName + ` deploy.yaml production      # compile with one argument
  ` + constants.BinaryName + ` git-flow feature start x    # run an installed library
  ` + constants.BinaryName + ` deploy.yaml | sh            # the caller decides to execute
  ` + constants.BinaryName + ` deploy.yaml -o deploy.sh --watch`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		output, _ := cmd.Flags().GetString("output")
		watch, _ := cmd.Flags().GetBool("watch")
		libraryDir, _ := cmd.Flags().GetString("library-dir")
		return cli.RunDocument(args[0], args[1:], cli.RunOptions{
			Output:     output,
			Watch:      watch,
			LibraryDir: libraryDir,
		})
	},
}

func init() {
	// Flags after the document name belong to the document, not to ry.
	rootCmd.Flags().SetInterspersed(false)
	rootCmd.Flags().StringP("output", "o", "", "Write the generated script to a file instead of stdout")
	rootCmd.Flags().Bool("watch", false, "Recompile when the document changes (requires --output)")
	rootCmd.Flags().String("library-dir", "", "Force library context for the given directory")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if noColor, _ := cmd.Flags().GetBool("no-color"); noColor || os.Getenv("NO_COLOR") != "" {
			console.SetColorEnabled(false)
		}
	}

	rootCmd.AddCommand(
		cli.NewInstallCommand(),
		cli.NewUpdateCommand(),
		cli.NewUninstallCommand(),
		cli.NewListCommand(),
		cli.NewSearchCommand(),
		cli.NewNewCommand(),
		cli.NewCheckCommand(),
		cli.NewUpdateRegistryCommand(),
		cli.NewVersionCommand(),
	)
}

func main() {
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-interrupts
		os.Exit(130)
	}()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
		os.Exit(1)
	}
}
