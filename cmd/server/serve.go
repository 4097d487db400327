package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	internalassets "github.com/iota-uz/iota-crud/internal/assets"
	"github.com/iota-uz/iota-crud/internal/server"
	"github.com/iota-uz/iota-crud/pkg/configuration"
	"github.com/iota-uz/iota-crud/pkg/contentpage"
	"github.com/iota-uz/iota-crud/pkg/logging"
	"github.com/iota-uz/iota-crud/pkg/metrics"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, configuration.Use())
		},
	}
}

func serve(ctx context.Context, conf *configuration.Configuration) error {
	logger := conf.Logger()

	if conf.OpenTelemetry.Enabled {
		cleanup := logging.SetupTracing(ctx, conf.OpenTelemetry.ServiceName, conf.OpenTelemetry.TempoURL)
		defer cleanup()
		logger.Info("OpenTelemetry tracing enabled, exporting to Tempo at " + conf.OpenTelemetry.TempoURL)
	}

	db, err := openDB(ctx, conf)
	if err != nil {
		return err
	}
	defer db.Close()

	app, err := newApp(conf, db)
	if err != nil {
		return err
	}
	if conf.Database.MigrationsEnabled {
		if err := app.Migrations().Up(ctx); err != nil {
			return err
		}
	}

	app.RegisterHashFsAssets(internalassets.HashFS)
	app.RegisterControllers(
		server.NewStaticFilesController(app.HashFsAssets(), !conf.IsProduction()),
		contentpage.NewController(app.Pages(), contentpage.WithLayout(internalassets.Layout)),
	)
	if conf.Prometheus.Enabled {
		app.RegisterControllers(metrics.NewPrometheusController(conf.Prometheus.Path, metrics.WithLogger(logger)))
	}

	serverInstance, err := server.Default(&server.DefaultOptions{
		Logger:        logger,
		Configuration: conf,
		Application:   app,
		DB:            db,
	})
	if err != nil {
		return err
	}
	logger.Infof("Listening on: %s", conf.Origin)
	return serverInstance.Start(ctx, conf.SocketAddress)
}
