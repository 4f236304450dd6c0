package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fraytools/manager/internal/cmd/output"
)

func newRefreshCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refresh [id]",
		Short: "Fetch release metadata for configured sources",
		Long: `Refresh queries GitHub for the published releases of configured
sources and persists what it finds to the metadata cache. With no
argument every configured source of both kinds is refreshed; fetch
failures are reported but do not discard results from other sources.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newManager()
			if err != nil {
				return err
			}

			if len(args) == 1 {
				kind, err := kindFlag(cmd)
				if err != nil {
					return err
				}
				if err := m.RefreshAsset(cmd.Context(), kind, args[0]); err != nil {
					return err
				}
				return render(output.EntryRows(m.Entries(kind), m.Status))
			}

			kinds, err := kindsOf(cmd)
			if err != nil {
				return err
			}

			// Keep whatever succeeded visible even when some sources failed.
			refreshErr := m.Refresh(cmd.Context())
			var rows []output.EntryRow
			for _, kind := range kinds {
				rows = append(rows, output.EntryRows(m.Entries(kind), m.Status)...)
			}
			if err := render(rows); err != nil {
				return err
			}
			return refreshErr
		},
	}
	addKindFlag(cmd)
	return cmd
}
