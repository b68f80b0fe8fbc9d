package commands

import (
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "auricle",
	Short: "AI-generated voice detection",
	Long: `auricle classifies spoken audio as AI-generated or human-generated
using deterministic acoustic analysis: spectral shape, prosody, zero-crossing
behavior and harmonic structure. No trained model is involved; every decision
is explainable down to the rule that made it.

Usage:
  auricle serve --addr :8000
  auricle analyze sample.wav --language tamil --features`,

	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(languagesCmd)
	rootCmd.AddCommand(versionCmd)
}
