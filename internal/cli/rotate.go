package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/aanand-mishra/users-api/internal/jobs"
)

// NewRotateCommand creates the rotate command.
func NewRotateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rotate",
		Short: "Archive audit entries beyond audit.max_size",
		Long: `Move the oldest audit entries beyond audit.max_size to the archive
table and print {"rotated": true|false}. Meant for cron.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := rootOpts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			res, err := jobs.NewRotate(e.store, e.cfg, e.log).Run(cmd.Context())
			if err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(res)
		},
	}
}
