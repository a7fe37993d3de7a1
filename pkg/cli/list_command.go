package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/angelsen/ry-tool/pkg/console"
	"github.com/angelsen/ry-tool/pkg/constants"
	"github.com/angelsen/ry-tool/pkg/library"
	"github.com/angelsen/ry-tool/pkg/logger"
)

var listLog = logger.New("cli:list")

// NewListCommand creates the list command
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List installed libraries",
		Long: `List the installed libraries with their versions and locations.

Example:
  ` + constants.BinaryName + ` list`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunList()
		},
	}
}

// RunList prints the installed-library table.
func RunList() error {
	statuses := library.NewManager().List()
	listLog.Printf("Found %d installed libraries", len(statuses))

	if len(statuses) == 0 {
		fmt.Fprintln(os.Stderr, console.FormatInfoMessage("No libraries installed"))
		fmt.Fprintln(os.Stderr, console.FormatListItem(
			fmt.Sprintf("try '%s search' to browse the registry", constants.BinaryName)))
		return nil
	}

	rows := make([][]string, 0, len(statuses))
	for _, status := range statuses {
		state := "ok"
		if !status.Exists {
			state = "missing files"
		}
		rows = append(rows, []string{status.Name, status.Version, state, console.ToRelativePath(status.Path)})
	}

	fmt.Print(console.RenderTable(console.TableConfig{
		Headers: []string{"Library", "Version", "State", "Path"},
		Rows:    rows,
	}))
	return nil
}
