package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/iota-uz/iota-crud/pkg/application"
	"github.com/iota-uz/iota-crud/pkg/configuration"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withApp(cmd, func(app application.Application) error {
					return app.Migrations().Up(cmd.Context())
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration of every schema",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withApp(cmd, func(app application.Application) error {
					return app.Migrations().Down(cmd.Context())
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print the migration status",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withApp(cmd, func(app application.Application) error {
					statuses, err := app.Migrations().Status(cmd.Context())
					if err != nil {
						return err
					}
					tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "SCHEMA\tVERSION\tFILE\tAPPLIED AT")
					for _, s := range statuses {
						applied := "pending"
						if s.Applied {
							applied = s.AppliedAt.Format("2006-01-02 15:04:05")
						}
						fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", s.Schema, s.Version, s.Path, applied)
					}
					return tw.Flush()
				})
			},
		},
	)
	return cmd
}

// withApp opens the database and builds the application for one command.
func withApp(cmd *cobra.Command, fn func(app application.Application) error) error {
	conf := configuration.Use()
	db, err := openDB(cmd.Context(), conf)
	if err != nil {
		return err
	}
	defer db.Close()

	app, err := newApp(conf, db)
	if err != nil {
		return err
	}
	return fn(app)
}
