package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/iota-crud/pkg/configuration"
	"github.com/iota-uz/iota-crud/pkg/crud"
)

func testConfiguration(t *testing.T) *configuration.Configuration {
	t.Helper()
	return &configuration.Configuration{
		Database: configuration.DatabaseOptions{
			Driver: "sqlite",
			Path:   filepath.Join(t.TempDir(), "crud.db"),
		},
		Authz: configuration.AuthzOptions{Mode: "disabled"},
		Crud: configuration.CrudOptions{
			PageSize:    20,
			MaxPageSize: 100,
			TokenSecret: "secret",
			TokenTTL:    time.Hour,
			FlashStore:  "cookie",
			FlashTTL:    time.Minute,
		},
		Members: configuration.MembersOptions{BasePath: "/admin/members"},
	}
}

func TestSQLDriver(t *testing.T) {
	conf := &configuration.Configuration{}
	conf.Database.Driver = "postgres"
	assert.Equal(t, "pgx", sqlDriver(conf))
	conf.Database.Driver = "sqlite"
	assert.Equal(t, "sqlite", sqlDriver(conf))
}

func TestRedisClient(t *testing.T) {
	client, err := redisClient("redis://:pw@cache:6380/2")
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", client.Options().Addr)
	assert.Equal(t, 2, client.Options().DB)

	client, err = redisClient("localhost:6379")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", client.Options().Addr)

	_, err = redisClient("mysql://nope")
	require.Error(t, err)
}

func TestFlashTransport(t *testing.T) {
	conf := testConfiguration(t)
	flash, err := flashTransport(conf)
	require.NoError(t, err)
	assert.IsType(t, &crud.CookieFlash{}, flash)

	conf.Crud.FlashStore = "redis"
	conf.RedisURL = "localhost:6379"
	flash, err = flashTransport(conf)
	require.NoError(t, err)
	assert.IsType(t, &crud.RedisFlash{}, flash)
}

func TestAuthzServiceDisabled(t *testing.T) {
	svc, err := authzService(testConfiguration(t))
	require.NoError(t, err)
	assert.Nil(t, svc)
}

func TestNewApp(t *testing.T) {
	ctx := context.Background()
	conf := testConfiguration(t)
	db, err := openDB(ctx, conf)
	require.NoError(t, err)
	defer db.Close()

	app, err := newApp(conf, db)
	require.NoError(t, err)
	require.NoError(t, app.Migrations().Up(ctx))

	statuses, err := app.Migrations().Status(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, statuses)
	for _, s := range statuses {
		assert.True(t, s.Applied, s.Path)
	}

	pages := app.Pages().Registered()
	require.Len(t, pages, 1)
	assert.Equal(t, "/admin/members", app.Pages().URL(pages[0]))
}
