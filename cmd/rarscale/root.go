package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "rarscale",
	Short: "Radial acceleration relation analysis over rotation-curve catalogs",
	Long: "rarscale fits the acceleration scale a0 per radial zone of each\n" +
		"galaxy rotation curve, tests whether the inner and outer zones\n" +
		"prefer different scales, and aggregates an ensemble verdict.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(qualityCmd)
	rootCmd.AddCommand(synthCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
