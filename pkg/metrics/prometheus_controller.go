package metrics

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/iota-crud/pkg/application"
)

const DefaultPath = "/debug/prometheus"

type Option func(c *PrometheusController)

// WithGatherer scrapes g instead of the default registry.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(c *PrometheusController) { c.gatherer = g }
}

func WithLogger(l *logrus.Logger) Option {
	return func(c *PrometheusController) { c.logger = l }
}

// PrometheusController serves the crud_actions_total and authz_* collectors
// registered through promauto.
type PrometheusController struct {
	path     string
	gatherer prometheus.Gatherer
	logger   *logrus.Logger
}

func NewPrometheusController(path string, opts ...Option) application.Controller {
	if path == "" {
		path = DefaultPath
	}
	c := &PrometheusController{
		path:     path,
		gatherer: prometheus.DefaultGatherer,
		logger:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *PrometheusController) Key() string {
	return "metrics"
}

func (c *PrometheusController) Register(r *mux.Router) {
	handler := promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{
		ErrorLog:      c.logger,
		ErrorHandling: promhttp.ContinueOnError,
	})
	r.Handle(c.path, handler).Methods(http.MethodGet)
}
