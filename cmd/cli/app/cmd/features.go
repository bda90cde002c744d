package cmd

import (
	"ccpatch/cmd/cli/app"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(featuresCmd)
}

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Lists registered features with their variables and patches",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		handler, err := app.InjectFeaturesCommandHandler(currentConfigPath())
		if err != nil {
			return err
		}

		return handler.Handle(cmd.OutOrStdout())
	},
}
