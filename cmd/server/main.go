package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/harrylevesque/stillwater/internal/utils"
)

var (
	configPath string
	verbose    bool
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "stillwater",
		Short:        "Home page service: greeting, affirmations and guided breathing",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", utils.DefaultConfigPath(), "path to stillwater.yaml")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(serveCmd(), tokenCmd(), initCmd())
	return root
}
