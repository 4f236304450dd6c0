package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDownloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download <id>",
		Short: "Download a release archive to the local cache",
		Long: `Download streams the release archive for an asset to the download
cache. Without --tag the newest known version is selected. Refresh
first if no release metadata is cached for the asset yet.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newManager()
			if err != nil {
				return err
			}
			kind, err := kindFlag(cmd)
			if err != nil {
				return err
			}
			tag, _ := cmd.Flags().GetString("tag")

			if err := m.Download(cmd.Context(), kind, args[0], tag); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Downloaded %s\n", args[0])
			return nil
		},
	}
	addKindFlag(cmd)
	cmd.Flags().StringP("tag", "t", "", "version tag (default: newest)")
	return cmd
}

func newInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install <id>",
		Short: "Install a downloaded release archive",
		Long: `Install extracts a previously downloaded archive into the asset's
install directory. Installing over an existing install upgrades it in
place. Without --tag the newest known version is selected.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newManager()
			if err != nil {
				return err
			}
			kind, err := kindFlag(cmd)
			if err != nil {
				return err
			}
			tag, _ := cmd.Flags().GetString("tag")

			if err := m.Install(kind, args[0], tag); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Installed %s\n", args[0])
			return nil
		},
	}
	addKindFlag(cmd)
	cmd.Flags().StringP("tag", "t", "", "version tag (default: newest)")
	return cmd
}

func newUninstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uninstall <id>",
		Short: "Remove an installed asset from disk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newManager()
			if err != nil {
				return err
			}
			kind, err := kindFlag(cmd)
			if err != nil {
				return err
			}

			if err := m.Uninstall(kind, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uninstalled %s\n", args[0])
			return nil
		},
	}
	addKindFlag(cmd)
	return cmd
}

func newChangelogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "changelog <id>",
		Short: "Show the release notes of a version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newManager()
			if err != nil {
				return err
			}
			kind, err := kindFlag(cmd)
			if err != nil {
				return err
			}
			tag, _ := cmd.Flags().GetString("tag")

			changelog, err := m.Changelog(kind, args[0], tag)
			if err != nil {
				return err
			}
			if changelog == "" {
				changelog = "(no release notes)"
			}
			fmt.Fprintln(cmd.OutOrStdout(), changelog)
			return nil
		},
	}
	addKindFlag(cmd)
	cmd.Flags().StringP("tag", "t", "", "version tag (default: newest)")
	return cmd
}
