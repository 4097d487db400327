package server

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/iota-uz/iota-crud/pkg/application"
	"github.com/iota-uz/iota-crud/pkg/configuration"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestPipeline(t *testing.T) {
	conf := &configuration.Configuration{UserHeader: "X-Forwarded-User"}
	opts := &DefaultOptions{
		Logger:        quietLogger(),
		Configuration: conf,
		Application:   application.New(&application.ApplicationOptions{}),
	}
	// logger, app, db, user, localizer, params
	assert.Len(t, Pipeline(opts), 6)

	conf.CorsOrigins = "http://a.test, http://b.test"
	conf.RateLimit = configuration.RateLimitOptions{Enabled: true, GlobalRPS: 10, Storage: "memory"}
	assert.Len(t, Pipeline(opts), 8)
}

func TestRateLimitStore_FallsBackToMemory(t *testing.T) {
	store := rateLimitStore(configuration.RateLimitOptions{Storage: "redis", RedisURL: "://nope"}, quietLogger())
	assert.NotNil(t, store)
}
