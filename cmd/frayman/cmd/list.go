package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fraytools/manager/internal/cmd/output"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List assets with their install state",
		Long: `List shows one row per known asset: installed assets first in the
order they appear on disk, then configured-but-not-installed sources in
config order. Without --kind both plugins and templates are listed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := newManager()
			if err != nil {
				return err
			}

			kinds, err := kindsOf(cmd)
			if err != nil {
				return err
			}

			var rows []output.EntryRow
			for _, kind := range kinds {
				rows = append(rows, output.EntryRows(m.Entries(kind), m.Status)...)
			}
			return render(rows)
		},
	}
	addKindFlag(cmd)
	return cmd
}
