package main

import (
	"mortgage-underwriting/internal/infrastructure/db"

	"github.com/spf13/cobra"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the loan, document and transition tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			gdb, err := db.OpenGorm(a.cfg.MySQLDSN(), db.WithLogger(a.log))
			if err != nil {
				return err
			}
			if sqlDB, err := gdb.DB(); err == nil {
				defer sqlDB.Close()
			}
			if err := db.Migrate(gdb); err != nil {
				return err
			}
			a.log.Info("migrations applied")
			return nil
		},
	}
}
