package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/WINTERANDREA/vet-sheet-parser/internal/adapters/storage/sqlstore"
)

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones SQL pendientes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := opts.cfg.Storage
			if st.Driver != sqlstore.DriverPostgres && st.Driver != sqlstore.DriverSQLite {
				return fmt.Errorf("storage.driver %q has no schema to migrate", st.Driver)
			}
			if err := sqlstore.Migrate(st.Driver, st.DSN); err != nil {
				return err
			}
			v, dirty, err := sqlstore.Version(st.Driver, st.DSN)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty=%t)\n", v, dirty)
			return nil
		},
	}
}
