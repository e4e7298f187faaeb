package commands

import (
	"fmt"
	"strconv"

	"spotboard/internal/models"
	"spotboard/internal/repository"

	"github.com/spf13/cobra"
)

// newRoleCmd builds "promote" (to ADMIN) or "demote" (to USER).
func newRoleCmd(opts *rootOptions, verb string) *cobra.Command {
	role := models.RoleAdmin
	if verb == "demote" {
		role = models.RoleUser
	}

	return &cobra.Command{
		Use:   verb + " <member-id>",
		Short: fmt.Sprintf("Set a member's role to %s", role),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil || id == 0 {
				return fmt.Errorf("invalid member id %q", args[0])
			}

			_, db, closeDB, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDB()

			if err := repository.NewMemberRepository(db).SetRole(cmd.Context(), uint(id), role); err != nil {
				return err
			}
			return opts.report(cmd.OutOrStdout(),
				map[string]interface{}{"memberId": id, "role": role},
				"Member %d is now %s", id, role)
		},
	}
}
