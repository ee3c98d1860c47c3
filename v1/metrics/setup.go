package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the private Prometheus registry of a run, the collectors the
// harness reports into, and the HTTP server exposing them.
type Metrics struct {
	// Server serves the registry on /metrics.
	Server *http.Server

	// Registry is isolated per process so tests can build several instances.
	Registry *prometheus.Registry

	produceDuration *prometheus.HistogramVec
	checksTotal     *prometheus.CounterVec
	messagesTotal   *prometheus.CounterVec
	workerErrors    *prometheus.CounterVec
}

// NewMetrics creates the registry, registers the harness collectors under a
// constant service label and prepares (but does not start) the HTTP server.
//
// Example:
//
//	m := metrics.NewMetrics(metrics.Config{Address: ":9090", ServiceName: "kafka-roundtrip"})
//	m.ObserveProduceDuration("orders", 42*time.Millisecond)
func NewMetrics(cfg Config) *Metrics {
	registry := prometheus.NewRegistry()

	wrappedRegistry := prometheus.WrapRegistererWith(
		prometheus.Labels{"service": cfg.ServiceName},
		registry,
	)

	buckets := cfg.ProduceBuckets
	if len(buckets) == 0 {
		buckets = DefaultProduceBuckets
	}

	m := &Metrics{
		Registry: registry,
	}

	m.produceDuration = createHistogramVec("roundtrip_produce_duration_seconds", "Wall-clock duration of one worker's produce phase", []string{"topic"}, buckets)
	m.checksTotal = createCounterVec("roundtrip_checks_total", "Verification checks by name and outcome", []string{"check", "result"})
	m.messagesTotal = createCounterVec("roundtrip_messages_total", "Messages produced or consumed", []string{"topic", "direction"})
	m.workerErrors = createCounterVec("roundtrip_worker_errors_total", "Worker cycles aborted by an error, by phase", []string{"phase"})

	wrappedRegistry.MustRegister(
		m.produceDuration,
		m.checksTotal,
		m.messagesTotal,
		m.workerErrors,
	)

	if cfg.EnableDefaultCollectors {
		wrappedRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	m.Server = &http.Server{
		Addr:    cfg.Address,
		Handler: mux,
	}
	return m
}
