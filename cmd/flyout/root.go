package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "flyout",
	Short: "Declarative slide-out admin panels with conditional fields",
	Long: `Flyout registers declarative slide-out panels: field definitions,
value resolution, conditional visibility and per-type sanitization,
served over HTTP.

Quick start:
  flyout serve      # Start the panel server
  flyout validate   # Validate panel definitions`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "flyout.yaml", "config file path")
}
