package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/panelkit/flyout/core/convention"
	"github.com/panelkit/flyout/core/schema"
)

var validateCmd = &cobra.Command{
	Use:   "validate [dir]",
	Short: "Validate panel definitions",
	Long: `Parses and normalizes every panel definition in the given
directory (default: panels), reporting the first error found.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "panels"
		if len(args) > 0 {
			dir = args[0]
		}

		panels, err := schema.ParseDir(dir)
		if err != nil {
			return err
		}

		for _, p := range panels {
			if _, err := convention.Normalize(p.Fields); err != nil {
				return fmt.Errorf("panel %q: %w", p.Name, err)
			}
			fmt.Fprintf(os.Stdout, "ok: %s (%d fields)\n", p.Name, len(p.Fields))
		}

		fmt.Fprintf(os.Stdout, "%d panel(s) valid\n", len(panels))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
