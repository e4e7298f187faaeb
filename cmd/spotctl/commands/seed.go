package commands

import (
	"spotboard/internal/middleware"
	"spotboard/internal/seed"

	"github.com/spf13/cobra"
)

func newSeedCmd(opts *rootOptions) *cobra.Command {
	seedOpts := seed.DefaultOptions()
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the database with demo data",
		Long: `Insert demo members, locations, posters, comments and likes.

The first seeded member is an ADMIN. Every seeded member signs in with
the password "` + seed.DemoPassword + `".

Examples:
  spotctl seed                          # Small default data set
  spotctl seed --members 50 --seed 7    # Larger, reproducible data set`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, db, closeDB, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDB()

			res, err := seed.NewFactory(db, seedOpts, middleware.Logger).Run(cmd.Context())
			if err != nil {
				return err
			}
			return opts.report(cmd.OutOrStdout(), res,
				"Seeded %d members, %d locations, %d posters, %d comments and %d likes",
				res.Members, res.Locations, res.Posters, res.Comments, res.Likes)
		},
	}

	cmd.Flags().IntVar(&seedOpts.Members, "members", seedOpts.Members, "Number of members to create")
	cmd.Flags().IntVar(&seedOpts.Locations, "locations", seedOpts.Locations, "Number of locations to create")
	cmd.Flags().IntVar(&seedOpts.PostersPerLocation, "posters", seedOpts.PostersPerLocation, "Posters per location")
	cmd.Flags().IntVar(&seedOpts.CommentsPerPoster, "comments", seedOpts.CommentsPerPoster, "Comments per poster")
	cmd.Flags().Int64Var(&seedOpts.Seed, "seed", 0, "Random seed; 0 picks one from the clock")
	cmd.Flags().BoolVar(&seedOpts.FastHash, "fast-hash", false, "Hash the demo password with the minimum bcrypt cost")
	return cmd
}
