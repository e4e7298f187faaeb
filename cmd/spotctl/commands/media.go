package commands

import (
	"spotboard/internal/server"
	"spotboard/internal/service"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// mediaFs is swapped out by tests.
var mediaFs = afero.NewOsFs

func newSweepMediaCmd(opts *rootOptions) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "sweep-media",
		Short: "Delete stored files no image row references",
		Long: `Remove files left in the media directory by uploads whose database
write never committed.

Examples:
  spotctl sweep-media --dry-run   # List orphans without deleting them
  spotctl sweep-media             # Delete orphans`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, db, closeDB, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDB()

			store, err := server.NewMediaStore(mediaFs(), cfg)
			if err != nil {
				return err
			}
			res, err := service.SweepOrphanMedia(cmd.Context(), db, store, dryRun)
			if err != nil {
				return err
			}
			if dryRun {
				return opts.report(cmd.OutOrStdout(), res,
					"Scanned %d files, %d orphans would be removed", res.Scanned, len(res.Orphans))
			}
			return opts.report(cmd.OutOrStdout(), res,
				"Scanned %d files, removed %d orphans (%d failures)", res.Scanned, res.Removed, res.Failures)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List orphans without deleting them")
	return cmd
}
