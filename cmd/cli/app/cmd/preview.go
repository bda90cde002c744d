package cmd

import (
	"ccpatch/cmd/cli/app"
	"ccpatch/internal/core/handler"

	"github.com/spf13/cobra"
)

var (
	previewValuesPath string
	previewManifests  map[string]string
)

func init() {
	previewCmd.Flags().StringVar(&previewValuesPath, "values", "", "YAML file with variable values, merged over the configured values")
	previewCmd.Flags().StringToStringVar(&previewManifests, "manifest", nil, "Manifest for a kustomization resource as name=path, e.g. kube-apiserver.yaml=./kube-apiserver.yaml")
	rootCmd.AddCommand(previewCmd)
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Shows the base templates after the configured patches are applied",
	Long: `Applies the patches of every configured feature to the base templates with
the given variable values, the way the topology controller would, and prints
the result. Kustomizations the patches place on nodes are built as well when
the manifests they reference are supplied with --manifest.`,
	Example: `  # Preview with the configured values
  ccpatch preview

  # Preview extra kube-apiserver flags and build the resulting static pod
  ccpatch preview --values values.yaml --manifest kube-apiserver.yaml=/etc/kubernetes/manifests/kube-apiserver.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := app.InjectPreviewCommandHandler(currentConfigPath())
		if err != nil {
			return err
		}

		return h.Handle(cmd.Context(), cmd.OutOrStdout(), handler.PreviewOptions{
			ValuesPath: previewValuesPath,
			Manifests:  previewManifests,
		})
	},
}
