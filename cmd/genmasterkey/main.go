package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harrylevesque/stillwater/internal/files"
)

func main() {
	var out string
	cmd := &cobra.Command{
		Use:          "genmasterkey",
		Short:        "Write a new random master key for session tokens",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := files.WriteMasterKey(out); err != nil {
				return fmt.Errorf("refusing to write master key: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Master key written to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "master.key", "output file")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
