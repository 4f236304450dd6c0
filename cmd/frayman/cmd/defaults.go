package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDefaultsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "defaults",
		Short: "Restore the built-in starter source catalog",
		Long: `Defaults overwrites sources.json with the built-in starter catalog
of official Fraymakers plugins and templates. Cached release metadata
and installed assets are untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := newManager()
			if err != nil {
				return err
			}
			if err := m.RestoreDefaults(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Restored default sources")
			return nil
		},
	}
}
