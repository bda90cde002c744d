package cmd

import (
	"ccpatch/cmd/cli/app"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(initializeCmd)
}

var initializeCmd = &cobra.Command{
	Use:   "initialize",
	Short: "Generates a new configuration file with sample values",
	Long:  `A new configuration file is written to the path given by --config. It enables every built-in feature and carries sample variable values. The file is not created if it already exists.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		handler, err := app.InjectInitializeCommandHandler(currentConfigPath())
		if err != nil {
			return err
		}

		return handler.Handle(cmd.OutOrStdout())
	},
}
