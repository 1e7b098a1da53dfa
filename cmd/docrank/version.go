package main

import (
	"fmt"

	"github.com/dgallion1/docrank/internal/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "docrank %s\n", version.String())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
