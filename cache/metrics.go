package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "salonpro",
		Subsystem: "cache",
		Name:      "requests_total",
		Help:      "Cache reads by resource and result (hit, miss, shared, error).",
	}, []string{"resource", "result"})

	pollerWatchers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "salonpro",
		Subsystem: "cache",
		Name:      "poller_watchers",
		Help:      "Keys currently refetched on a timer.",
	})
)
