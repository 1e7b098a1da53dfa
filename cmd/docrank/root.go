package main

import (
	"fmt"
	"os"

	"github.com/dgallion1/docrank/internal/version"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "docrank",
	Short: "Rank document sections by relevance to a persona and task",
	Long: `docrank splits a folder of documents into titled sections, scores every
section and paragraph against a reader persona and the job they need done,
and prints the top results as JSON.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(fmt.Sprintf("docrank %s\n", version.String()))
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
