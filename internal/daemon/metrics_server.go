package daemon

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promcollect "github.com/prometheus/client_golang/prometheus/collectors"

	foundationerrors "git.home.luguber.info/inful/ssite/internal/foundation/errors"
	"git.home.luguber.info/inful/ssite/internal/logfields"
	"git.home.luguber.info/inful/ssite/internal/metrics"
)

// metricsServer serves the dev session's registry on /metrics.
type metricsServer struct {
	srv *http.Server
	ln  net.Listener
}

func newRegistry() *prom.Registry {
	reg := prom.NewRegistry()
	reg.MustRegister(promcollect.NewGoCollector(), promcollect.NewProcessCollector(promcollect.ProcessCollectorOpts{}))
	return reg
}

// startMetricsServer binds addr immediately so a bad address fails the session at startup.
func startMetricsServer(addr string, reg *prom.Registry) (*metricsServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, foundationerrors.ConfigError("failed to listen for metrics").
			WithContext("addr", addr).WithCause(err).Build()
	}
	ms := &metricsServer{
		srv: &http.Server{Handler: metrics.NewServeMux(reg), ReadHeaderTimeout: 10 * time.Second, ReadTimeout: 30 * time.Second, WriteTimeout: 30 * time.Second, IdleTimeout: 120 * time.Second},
		ln:  ln,
	}
	go func() {
		if err := ms.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server error", logfields.Error(err))
		}
	}()
	slog.Info("Serving metrics", slog.String("addr", ms.Addr()))
	return ms, nil
}

// Addr returns the bound address.
func (m *metricsServer) Addr() string { return m.ln.Addr().String() }

func (m *metricsServer) Stop(ctx context.Context) error {
	return m.srv.Shutdown(ctx)
}
