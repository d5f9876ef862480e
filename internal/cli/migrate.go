package cli

import (
	"github.com/spf13/cobra"
)

func newMigrateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Long: `Apply every pending schema migration and print the resulting version.

Examples:
  yatubectl migrate
  yatubectl migrate --db-driver pgx --db-dsn postgres://localhost/yatube`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			version, err := store.SchemaVersion()
			if err != nil {
				return err
			}

			p := out(cmd)
			p.Success("Database is at schema version %d", version)
			p.Muted("driver: %s", a.dbDriver)
			return nil
		},
	}
}
