// Package cli holds the cobra commands of the insurance-api binary.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	modelPath  string
}

// NewRootCommand builds the command tree. Running it without a subcommand
// starts the server.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "insurance-api",
		Short:         "Serve insurance cost predictions from a pre-trained regression model",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "config.yaml", "config file")
	root.PersistentFlags().StringVarP(&opts.modelPath, "model", "m", "", "model artifact path (overrides model.path)")

	serve := newServeCommand(opts)
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())

	root.AddCommand(serve, newInspectCommand(opts), newPredictCommand(opts))
	return root
}

func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
