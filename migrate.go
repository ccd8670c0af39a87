package main

import (
	"log/slog"

	"campusbot/app/service/catalog"

	"github.com/samber/do"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the catalog database schema and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		di, err := newInjector(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer func() { _ = di.Shutdown() }()

		// the constructor applies the schema
		catalogSvc, err := do.Invoke[*catalog.Service](di)
		if err != nil {
			return err
		}

		if err := catalogSvc.Ping(cmd.Context()); err != nil {
			return err
		}

		slog.Info("Catalog schema is up to date")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
