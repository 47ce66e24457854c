// Package cmd defines the atolye CLI: serve runs the studio backend,
// extract runs the artifact extractor standalone.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "atolye",
	Short: "Atolye - assistant studio backend",
	Long: `Atolye is the backend for the assistant studio: bot profiles,
streaming AI chat, code-artifact extraction, and the live preview
pipeline.

Run 'atolye serve' to start the HTTP API.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
