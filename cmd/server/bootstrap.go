package main

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"

	"github.com/iota-uz/iota-crud/modules/members"
	"github.com/iota-uz/iota-crud/pkg/application"
	"github.com/iota-uz/iota-crud/pkg/authz"
	"github.com/iota-uz/iota-crud/pkg/configuration"
	"github.com/iota-uz/iota-crud/pkg/crud"
	"github.com/iota-uz/iota-crud/pkg/eventbus"
)

func sqlDriver(conf *configuration.Configuration) string {
	if conf.Database.Driver == "postgres" {
		return "pgx"
	}
	return "sqlite"
}

func openDB(ctx context.Context, conf *configuration.Configuration) (*sqlx.DB, error) {
	db, err := sqlx.Open(sqlDriver(conf), conf.Database.ConnectionString())
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	if conf.Database.Driver == "sqlite" {
		db.SetMaxOpenConns(1)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping database")
	}
	return db, nil
}

func redisClient(addr string) (*redis.Client, error) {
	if strings.Contains(addr, "://") {
		opts, err := redis.ParseURL(addr)
		if err != nil {
			return nil, errors.Wrap(err, "parse REDIS_URL")
		}
		return redis.NewClient(opts), nil
	}
	return redis.NewClient(&redis.Options{Addr: addr}), nil
}

func flashTransport(conf *configuration.Configuration) (crud.FlashTransport, error) {
	secure := conf.IsProduction()
	if conf.Crud.FlashStore != "redis" {
		return crud.NewCookieFlash(conf.Crud.FlashTTL, secure), nil
	}
	client, err := redisClient(conf.RedisURL)
	if err != nil {
		return nil, err
	}
	return crud.NewRedisFlash(client, conf.Crud.FlashTTL, secure), nil
}

func authzService(conf *configuration.Configuration) (*authz.Service, error) {
	if authz.ParseMode(conf.Authz.Mode) == authz.ModeDisabled {
		return nil, nil
	}
	return authz.NewService(authz.ConfigFrom(conf))
}

// newApp wires the application and its modules on top of db.
func newApp(conf *configuration.Configuration, db *sqlx.DB) (application.Application, error) {
	app := application.New(&application.ApplicationOptions{
		DB:       db,
		EventBus: eventbus.NewEventPublisher(conf.Logger()),
		Bundle:   application.LoadBundle(),
	})
	if err := app.RegisterLocaleFiles(crud.LocaleFiles); err != nil {
		return nil, err
	}

	flash, err := flashTransport(conf)
	if err != nil {
		return nil, err
	}
	access, err := authzService(conf)
	if err != nil {
		return nil, err
	}

	module := members.NewModule(members.ModuleOptions{
		BasePath:   conf.Members.BasePath,
		ProfileURL: conf.Members.ProfileURL,
		Authz:      access,
		Flash:      flash,
		Tokens:     crud.NewTokens([]byte(conf.Crud.TokenSecret), conf.Crud.TokenTTL),
		PerPage:    conf.Crud.PageSize,
		MaxPerPage: conf.Crud.MaxPageSize,
	})
	if err := module.Register(app); err != nil {
		return nil, errors.Wrapf(err, "register module %s", module.Name())
	}
	return app, nil
}
