package main

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/shajara-uz/shajara/modules/genealogy/infrastructure/persistence/schema"
	"github.com/shajara-uz/shajara/pkg/configuration"
)

func newMigrateCmd() *cobra.Command {
	var down bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the genealogy schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := configuration.Use()
			db, err := sql.Open("pgx", conf.Database.Opts)
			if err != nil {
				return fmt.Errorf("db open failed: %w", err)
			}
			defer func() { _ = db.Close() }()

			goose.SetBaseFS(schema.FS)
			if err := goose.SetDialect("postgres"); err != nil {
				return err
			}
			if down {
				return goose.DownContext(cmd.Context(), db, ".")
			}
			return goose.UpContext(cmd.Context(), db, ".")
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "roll back the most recent migration")
	return cmd
}
