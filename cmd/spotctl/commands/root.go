// Package commands holds the spotctl subcommands.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"spotboard/internal/config"
	"spotboard/internal/database"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// loadConfig is swapped out by tests.
var loadConfig = config.LoadConfig

type rootOptions struct {
	jsonOutput bool
}

// NewRootCmd builds the command tree. A fresh tree per call keeps flag
// state out of package globals.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "spotctl",
		Short: "Spotboard maintenance commands",
		Long: `spotctl manages a Spotboard deployment from the command line.

Configuration is read the same way the API server reads it: config.yml,
config.<APP_ENV>.yml and environment variables.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Output in JSON format")

	root.AddCommand(
		newMigrateCmd(opts),
		newSeedCmd(opts),
		newRoleCmd(opts, "promote"),
		newRoleCmd(opts, "demote"),
		newSweepMediaCmd(opts),
	)
	return root
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openDatabase() (*config.Config, *gorm.DB, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load configuration: %w", err)
	}
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return cfg, db, closeDB, nil
}

// report prints v as JSON with --json and falls back to text otherwise.
func (o *rootOptions) report(w io.Writer, v interface{}, text string, args ...interface{}) error {
	if o.jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintf(w, text+"\n", args...)
	return err
}
