package cli

import (
	"github.com/spf13/cobra"

	"github.com/angelsen/ry-tool/pkg/constants"
	"github.com/angelsen/ry-tool/pkg/library"
)

// NewUpdateRegistryCommand creates the update-registry command
func NewUpdateRegistryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update-registry",
		Short: "Rebuild docs/registry.json from the libraries tree",
		Long: `Scan libraries/ in the enclosing project and rewrite the published
registry index at docs/registry.json.

Example:
  ` + constants.BinaryName + ` update-registry --base-url https://example.com/libs`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			baseURL, _ := cmd.Flags().GetString("base-url")
			return library.NewDeveloper(".").UpdateRegistry(baseURL)
		},
	}
	cmd.Flags().String("base-url", constants.DefaultRegistryBaseURL,
		"Base URL the registry will be served from")
	return cmd
}
