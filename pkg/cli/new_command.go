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

var newLog = logger.New("cli:new")

// NewNewCommand creates the new command
func NewNewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Scaffold a new library in the current project",
		Long: `Create libraries/<name>/ with an entry document, metadata, a lib
directory for helper scripts and a README. On a terminal the metadata
is prompted for; otherwise it comes from flags or placeholders.

Examples:
  ` + constants.BinaryName + ` new git-flow
  ` + constants.BinaryName + ` new git-flow --description "Git workflow helpers" --author me`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			description, _ := cmd.Flags().GetString("description")
			author, _ := cmd.Flags().GetString("author")
			return RunNew(args[0], description, author)
		},
	}
	cmd.Flags().String("description", "", "Library description")
	cmd.Flags().String("author", "", "Library author")
	return cmd
}

// RunNew scaffolds a library, prompting for missing metadata on a
// terminal.
func RunNew(name, description, author string) error {
	meta := &library.Metadata{
		Description: description,
		Author:      author,
	}

	if description == "" && author == "" && console.IsInteractive() {
		form := huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title("Description").
				Placeholder(name+" library for "+constants.BinaryName).
				Value(&meta.Description),
			huh.NewInput().
				Title("Author").
				Value(&meta.Author),
		))
		if err := form.Run(); err != nil {
			return fmt.Errorf("metadata prompt failed: %w", err)
		}
	}

	newLog.Printf("Scaffolding library %s", name)
	return library.NewDeveloper(".").New(name, meta)
}
