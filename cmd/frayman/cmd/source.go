package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fraytools/manager/internal/cmd/output"
)

func newSourceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "source",
		Short: "Manage configured asset sources",
		Long: `Source manages the sources.json document mapping asset ids to the
GitHub repositories that publish them. Removing a source does not
touch an installed copy of the asset.`,
	}
	cmd.AddCommand(
		newSourceListCmd(),
		newSourceAddCmd(),
		newSourceEditCmd(),
		newSourceRemoveCmd(),
	)
	return cmd
}

func newSourceListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List configured sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := newManager()
			if err != nil {
				return err
			}
			kinds, err := kindsOf(cmd)
			if err != nil {
				return err
			}

			var rows []output.SourceRow
			for _, kind := range kinds {
				rows = append(rows, output.SourceRows(kind, m.Sources(kind))...)
			}
			return render(rows)
		},
	}
	addKindFlag(cmd)
	return cmd
}

func newSourceAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <owner> <repo> <id>",
		Short: "Register a new asset source",
		Long: `Add registers a GitHub repository as the source of an asset. The
(owner, repo) pair and the id must both be unique within the kind.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newManager()
			if err != nil {
				return err
			}
			kind, err := kindFlag(cmd)
			if err != nil {
				return err
			}

			if err := m.AddSource(kind, args[0], args[1], args[2]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s source %s (%s/%s)\n", kind, args[2], args[0], args[1])
			return nil
		},
	}
	addKindFlag(cmd)
	return cmd
}

func newSourceEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <existing-id> <owner> <repo> <id>",
		Short: "Replace an existing asset source",
		Long: `Edit replaces the source entry matching existing-id with new owner,
repo, and id values, and drops the cached release metadata of the old
entry so the next refresh fetches from the new repository.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newManager()
			if err != nil {
				return err
			}
			kind, err := kindFlag(cmd)
			if err != nil {
				return err
			}

			if err := m.EditSource(kind, args[0], args[1], args[2], args[3]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s source %s\n", kind, args[0])
			return nil
		},
	}
	addKindFlag(cmd)
	return cmd
}

func newSourceRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a configured asset source",
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

			if err := m.RemoveSource(kind, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s source %s\n", kind, args[0])
			return nil
		},
	}
	addKindFlag(cmd)
	return cmd
}
