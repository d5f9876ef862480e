// Package cli implements yatubectl, the administration tool for groups,
// users and the database schema.
package cli

import (
	"fmt"
	"os"

	"github.com/bcnelson/yatube/internal/config"
	"github.com/bcnelson/yatube/internal/storage/sql"
	"github.com/spf13/cobra"
)

// app holds state shared by every command.
type app struct {
	dbDriver string
	dbDSN    string
}

// openStore connects to the configured database, applying pending migrations.
func (a *app) openStore() (*sql.Store, error) {
	store, err := sql.New(a.dbDriver, a.dbDSN)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", a.dbDriver, err)
	}
	return store, nil
}

// NewRootCommand builds the yatubectl command tree. Database flags
// default to the DB_DRIVER and DB_DSN environment configuration.
func NewRootCommand() *cobra.Command {
	a := &app{}

	defaults := config.DatabaseConfig{Driver: "sqlite3", DSN: "data/yatube.db"}
	if cfg, err := config.Load(); err == nil {
		defaults = cfg.Database
	}

	root := &cobra.Command{
		Use:   "yatubectl",
		Short: "Yatube administration tool",
		Long: `yatubectl manages a Yatube installation from the command line.

Groups are created and removed here; the web site only lets users file
posts under existing groups.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&a.dbDriver, "db-driver", defaults.Driver, "Database driver (sqlite3, postgres, pgx)")
	root.PersistentFlags().StringVar(&a.dbDSN, "db-dsn", defaults.DSN, "Database connection string")

	root.AddCommand(
		newMigrateCommand(a),
		newGroupCommand(a),
		newUserCommand(a),
	)
	return root
}

// Execute runs yatubectl with the process arguments.
func Execute() {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		printer{w: os.Stderr}.Error("%v", err)
		os.Exit(1)
	}
}

// out returns a printer for the command's standard output.
func out(cmd *cobra.Command) printer {
	return printer{w: cmd.OutOrStdout()}
}

