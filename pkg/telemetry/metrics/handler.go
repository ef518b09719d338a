package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns the scrape handler the watch command mounts at
// MetricsConfig.Path. Scrape counts and encoding errors are recorded in the
// collector's own registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.InstrumentMetricHandler(c.registry, promhttp.HandlerFor(
		c.registry,
		promhttp.HandlerOpts{
			Registry:          c.registry,
			EnableOpenMetrics: true,
			ErrorHandling:     promhttp.ContinueOnError,
		},
	))
}
