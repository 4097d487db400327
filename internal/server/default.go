package server

import (
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"

	"github.com/iota-uz/iota-crud/pkg/application"
	"github.com/iota-uz/iota-crud/pkg/configuration"
	"github.com/iota-uz/iota-crud/pkg/constants"
	"github.com/iota-uz/iota-crud/pkg/middleware"
	"github.com/iota-uz/iota-crud/pkg/server"
)

type DefaultOptions struct {
	Logger        *logrus.Logger
	Configuration *configuration.Configuration
	Application   application.Application
	DB            *sqlx.DB
}

// Default registers the request pipeline on the application and returns the
// server around its router.
func Default(options *DefaultOptions) (*server.HTTPServer, error) {
	app := options.Application
	app.RegisterMiddleware(Pipeline(options)...)
	return server.NewHTTPServer(app, NotFound(app), MethodNotAllowed()), nil
}

// Pipeline lists the middlewares in execution order. The logger comes first
// since it opens the root span the others attach to.
func Pipeline(options *DefaultOptions) []mux.MiddlewareFunc {
	conf := options.Configuration

	logOpts := middleware.DefaultLoggerOptions()
	logOpts.RequestIDHeader = conf.RequestIDHeader
	logOpts.RealIPHeader = conf.RealIPHeader

	pipeline := []mux.MiddlewareFunc{
		middleware.WithLogger(options.Logger, logOpts),
		middleware.Provide(constants.AppKey, options.Application),
		middleware.Traced("database", middleware.WithDB(options.DB)),
	}
	if origins := conf.CorsOriginList(); len(origins) > 0 {
		pipeline = append(pipeline, middleware.Traced("cors", middleware.Cors(origins...)))
	}
	if conf.RateLimit.Enabled {
		pipeline = append(pipeline, middleware.Traced("rateLimit", middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerPeriod: conf.RateLimit.GlobalRPS,
			Store:             rateLimitStore(conf.RateLimit, options.Logger),
		})))
	}
	return append(pipeline,
		middleware.Traced("user", middleware.ProvideUser(conf.UserHeader)),
		middleware.Traced("localizer", middleware.ProvideLocalizer(options.Application)),
		middleware.RequestParams(conf.RealIPHeader),
	)
}

// rateLimitStore falls back to process memory when redis is unreachable.
func rateLimitStore(opts configuration.RateLimitOptions, logger *logrus.Logger) limiter.Store {
	if opts.Storage != "redis" {
		return middleware.NewMemoryStore()
	}
	store, err := middleware.NewRedisStore(opts.RedisURL)
	if err != nil {
		logger.WithError(err).Warn("rate limit redis store unavailable, using memory")
		return middleware.NewMemoryStore()
	}
	return store
}
