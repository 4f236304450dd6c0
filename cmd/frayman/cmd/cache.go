package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the metadata and download caches",
	}
	cmd.AddCommand(newCacheClearCmd(), newCacheClearDownloadsCmd())
	return cmd
}

func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the release metadata cache",
		Long: `Clear empties the cached release metadata for every asset. Assets
stay listed but show no versions until the next refresh. Downloaded
archives are kept; use clear-downloads for those.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := newManager()
			if err != nil {
				return err
			}
			if err := m.ClearCache(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cleared release metadata cache")
			return nil
		},
	}
}

func newCacheClearDownloadsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-downloads",
		Short: "Delete all downloaded release archives",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := newManager()
			if err != nil {
				return err
			}
			if err := m.ClearDownloads(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted downloaded archives")
			return nil
		},
	}
}
