package cmd

import (
	"ccpatch/cmd/cli/app"

	"github.com/spf13/cobra"
)

var showValuesPath string

func init() {
	showValuesCmd.Flags().StringVar(&showValuesPath, "values", "", "YAML file with variable values, merged over the configured values")
	rootCmd.AddCommand(showValuesCmd)
}

var showValuesCmd = &cobra.Command{
	Use:   "show-values",
	Short: "Prints the variable values preview uses",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		handler, err := app.InjectShowValuesCommandHandler(currentConfigPath())
		if err != nil {
			return err
		}

		return handler.Handle(cmd.OutOrStdout(), showValuesPath)
	},
}
