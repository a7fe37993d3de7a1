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

var searchLog = logger.New("cli:search")

// NewSearchCommand creates the search command
func NewSearchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "search [query]",
		Short: "Search the registry for libraries",
		Long: `Search the registry by name or description, case-insensitive.
Without a query, the full registry is listed.

Examples:
  ` + constants.BinaryName + ` search git
  ` + constants.BinaryName + ` search`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var query string
			if len(args) > 0 {
				query = args[0]
			}
			return RunSearch(query)
		},
	}
}

// RunSearch prints the registry entries matching the query.
func RunSearch(query string) error {
	results := library.NewManager().Search(query)
	searchLog.Printf("Search %q returned %d results", query, len(results))

	if len(results) == 0 {
		if query == "" {
			fmt.Fprintln(os.Stderr, console.FormatInfoMessage("No libraries in the registry"))
		} else {
			fmt.Fprintln(os.Stderr, console.FormatInfoMessage("No libraries matching '"+query+"'"))
		}
		return nil
	}

	rows := make([][]string, 0, len(results))
	for _, result := range results {
		version := result.Info.Version
		if version == "" {
			version = "-"
		}
		rows = append(rows, []string{result.Name, version, result.Info.Description})
	}

	fmt.Print(console.RenderTable(console.TableConfig{
		Headers: []string{"Library", "Version", "Description"},
		Rows:    rows,
	}))
	fmt.Println(console.FormatListItem(
		fmt.Sprintf("install with '%s install <library>'", constants.BinaryName)))
	return nil
}
