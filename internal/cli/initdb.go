package cli

import (
	"github.com/spf13/cobra"
)

// NewInitDBCommand creates the init-db command.
func NewInitDBCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init-db",
		Short: "Create the users, audit and audit_archive tables",
		Long: `Create the users, audit and audit_archive tables if they are missing.
Safe to run repeatedly. Backends without a schema (dynamodb, memory) do
nothing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := rootOpts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()
			return initSchema(cmd.Context(), e)
		},
	}
}
