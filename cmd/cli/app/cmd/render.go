package cmd

import (
	"ccpatch/cmd/cli/app"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(renderCmd)
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Writes the ClusterClass with the configured features",
	Long: `Writes a ClusterClass carrying the variables and inline patches of every
feature enabled in the configuration. Features contribute in registration
order; a path replaced by more than one feature is reported on stderr.`,
	Example: `  # Write the ClusterClass to a file
  ccpatch render > clusterclass.yaml

  # Use another configuration file
  ccpatch render --config staging.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		handler, err := app.InjectRenderCommandHandler(currentConfigPath())
		if err != nil {
			return err
		}

		return handler.Handle(cmd.OutOrStdout())
	},
}
