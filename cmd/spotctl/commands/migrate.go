package commands

import (
	"spotboard/internal/database"

	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update every table",
		Long: `Run the schema migration explicitly.

The server migrates on boot outside production. In production run this
before rolling out a release that changes the models.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, db, closeDB, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDB()

			if err := database.Migrate(db); err != nil {
				return err
			}
			return opts.report(cmd.OutOrStdout(), map[string]string{"status": "migrated"}, "Schema is up to date")
		},
	}
}
