package apiclient

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var refreshCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "salonpro",
	Subsystem: "apiclient",
	Name:      "token_refresh_total",
	Help:      "Access token refreshes by outcome.",
}, []string{"result"})
