package cmd

import (
	"context"
	"io"
	"os"

	"ccpatch/internal/cli/output"
	"ccpatch/internal/core"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbosity  int
)

var rootCmd = &cobra.Command{
	Use:   "ccpatch",
	Short: "Composes ClusterClass feature patches",
	Long: `ccpatch assembles the variables and inline patches of independent features
into a Cluster API ClusterClass, and previews what those patches do to the base
templates for a given set of variable values.

Configuration is read from ccpatch.yaml. Run 'ccpatch initialize' to create
a sample configuration file.

Common workflows:
  ccpatch features                          List features, their variables and patches
  ccpatch render > clusterclass.yaml        Write the ClusterClass
  ccpatch preview --values values.yaml      Show the patched templates`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cmd.SetContext(logr.NewContext(cmd.Context(), newLogger(os.Stderr, verbosity)))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", string(core.DefaultConfigPath), "Path to the configuration file")
	rootCmd.PersistentFlags().IntVarP(&verbosity, "verbosity", "v", 0, "Log verbosity")
}

func Execute() {
	if err := execute(context.Background(), os.Stderr); err != nil {
		os.Exit(1)
	}
}

// execute runs the root command and reports a failure on errOut.
func execute(ctx context.Context, errOut io.Writer) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		output.PrintError(errOut, err.Error())
	}
	return err
}
