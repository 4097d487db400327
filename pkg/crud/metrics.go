package crud

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var actionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "crud",
		Name:      "actions_total",
		Help:      "Screened CRUD page actions by outcome.",
	},
	[]string{"page", "action", "outcome"},
)
