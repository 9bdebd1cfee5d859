// Package metrics records transfer outcomes as Prometheus series.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/bnema/pioneer-tx-cli/internal/logger"
	"github.com/bnema/pioneer-tx-cli/internal/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Recorder struct {
	registry  *prometheus.Registry
	attempts  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	committed *prometheus.GaugeVec
	sessions  *prometheus.CounterVec
}

var _ ports.MetricsRecorder = (*Recorder)(nil)

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "ptx_transfer_attempts_total", Help: "Transfer workflow attempts by outcome."},
			[]string{"account", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ptx_transfer_attempt_duration_seconds",
				Help:    "Wall time of one transfer workflow attempt.",
				Buckets: []float64{5, 10, 20, 30, 45, 60, 90, 120, 180, 300},
			},
			[]string{"account"},
		),
		committed: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Name: "ptx_transfers_committed", Help: "Transfers committed today."},
			[]string{"account"},
		),
		sessions: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "ptx_sessions_total", Help: "Finished account sessions by outcome."},
			[]string{"account", "outcome"},
		),
	}
	r.registry.MustRegister(r.attempts, r.duration, r.committed, r.sessions)
	return r
}

func (r *Recorder) ObserveAttempt(account string, outcome string, elapsed time.Duration) {
	r.attempts.WithLabelValues(account, outcome).Inc()
	r.duration.WithLabelValues(account).Observe(elapsed.Seconds())
}

func (r *Recorder) ObserveCommitted(account string, count int) {
	r.committed.WithLabelValues(account).Set(float64(count))
}

func (r *Recorder) ObserveSession(account string, outcome string) {
	r.sessions.WithLabelValues(account, outcome).Inc()
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx ends.
func (r *Recorder) Serve(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", r.Handler())
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	log := logger.Named("metrics")
	log.Info("metrics listening", slog.String("addr", listener.Addr().String()))

	errCh := make(chan error, 1)
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
