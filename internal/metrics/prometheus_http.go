package metrics

import (
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

// Path is where the dev session exposes its registry.
const Path = "/metrics"

// HTTPHandler serves reg in the Prometheus exposition format, or the default gatherer when
// reg is nil. Handler errors are reported in the response, not by panicking.
func HTTPHandler(reg *prom.Registry) http.Handler {
	var g prom.Gatherer = prom.DefaultGatherer
	if reg != nil {
		g = reg
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}

// NewServeMux returns a mux with HTTPHandler mounted on Path.
func NewServeMux(reg *prom.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle(Path, HTTPHandler(reg))
	return mux
}
