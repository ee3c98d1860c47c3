package harness

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Aleph-Alpha/kafka-roundtrip/v1/codec"
	"github.com/Aleph-Alpha/kafka-roundtrip/v1/logger"
	"github.com/Aleph-Alpha/kafka-roundtrip/v1/metrics"
	sr "github.com/Aleph-Alpha/kafka-roundtrip/v1/schema_registry"
	"github.com/Aleph-Alpha/kafka-roundtrip/v1/tracer"
)

// Harness runs the round trip: one setup, a pool of workers each producing
// and consuming, one teardown.
type Harness struct {
	cfg      Config
	keys     KeyStrategy
	catalog  *sr.Catalog
	registry sr.Registry
	codec    *codec.Codec
	clients  ClientFactory
	metrics  metrics.Recorder
	tracer   *tracer.Tracer
	logger   Logger
}

// NewHarness validates cfg and returns a harness over the given clients.
// Nothing touches the network before Run.
func NewHarness(cfg Config, catalog *sr.Catalog, registry sr.Registry, c *codec.Codec, clients ClientFactory) (*Harness, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	keys, err := newKeyStrategy(cfg)
	if err != nil {
		return nil, err
	}
	return &Harness{
		cfg:      cfg,
		keys:     keys,
		catalog:  catalog,
		registry: registry,
		codec:    c,
		clients:  clients,
		metrics:  metrics.Nop{},
		logger:   logger.NewNopLogger(),
	}, nil
}

// WithMetrics reports produce durations, messages, checks and worker
// errors to recorder.
func (h *Harness) WithMetrics(recorder metrics.Recorder) *Harness {
	h.metrics = recorder
	return h
}

// WithTracer records a span per phase and carries trace context in the
// message headers. Without a tracer no spans are created.
func (h *Harness) WithTracer(t *tracer.Tracer) *Harness {
	h.tracer = t
	return h
}

// WithLogger replaces the default no-op logger.
func (h *Harness) WithLogger(l Logger) *Harness {
	h.logger = l
	return h
}

// Config returns the effective configuration, defaults applied.
func (h *Harness) Config() Config {
	return h.cfg
}

// Report is the outcome of a run.
type Report struct {
	Topic           string
	Schemas         Schemas
	Workers         []WorkerResult
	Checks          []CheckTotal
	ProduceDuration TrendSummary
}

// Passed reports whether every worker completed and every check passed.
func (r *Report) Passed() bool {
	if len(r.Workers) == 0 {
		return false
	}
	for _, w := range r.Workers {
		if w.Err != nil {
			return false
		}
	}
	for _, c := range r.Checks {
		if c.Fails > 0 {
			return false
		}
	}
	return true
}

// FailedWorkers counts the workers whose cycle was aborted.
func (r *Report) FailedWorkers() int {
	n := 0
	for _, w := range r.Workers {
		if w.Err != nil {
			n++
		}
	}
	return n
}

func (r *Report) tally() {
	index := map[string]int{}
	r.Checks = r.Checks[:0]
	for _, w := range r.Workers {
		for _, c := range w.Checks {
			i, ok := index[c.Name]
			if !ok {
				i = len(r.Checks)
				index[c.Name] = i
				r.Checks = append(r.Checks, CheckTotal{Name: c.Name})
			}
			if c.Passed {
				r.Checks[i].Passes++
			} else {
				r.Checks[i].Fails++
			}
		}
	}
}

// Run performs one full pass. A setup failure is returned after a
// best-effort teardown. A failed worker is reported in its WorkerResult and
// does not stop the others. A teardown failure is returned only when
// setup and every worker succeeded; otherwise it is only logged.
func (h *Harness) Run(ctx context.Context) (report *Report, err error) {
	s := &Session{
		cfg:      h.cfg,
		keys:     h.keys,
		catalog:  h.catalog,
		registry: h.registry,
		codec:    h.codec,
		clients:  h.clients,
		admin:    h.clients.NewAdmin(),
		metrics:  h.metrics,
		tracer:   h.tracer,
		logger:   h.logger,
		trend:    &Trend{},
	}
	coordinator := newCoordinator(s)
	report = &Report{Topic: h.cfg.Topic, Workers: make([]WorkerResult, h.cfg.Workers)}

	defer func() {
		// a failed worker is a primary failure too; Teardown has logged the error
		if teardownErr := coordinator.Teardown(ctx); teardownErr != nil && err == nil && report.FailedWorkers() == 0 {
			err = teardownErr
		}
		_ = s.Close()
	}()

	setupDone := make(chan error, 1)
	go func() {
		_, setupErr := coordinator.Setup(ctx)
		setupDone <- setupErr
	}()

	var g errgroup.Group
	g.SetLimit(h.cfg.Concurrency)
	for i := 0; i < h.cfg.Workers; i++ {
		g.Go(func() error {
			schemas, awaitErr := coordinator.Await(ctx)
			if awaitErr != nil {
				report.Workers[i] = WorkerResult{Worker: i, Reached: Idle, Phase: PhaseSetup, Err: awaitErr}
				return nil
			}
			report.Workers[i] = newWorker(i, s).Run(ctx, schemas)
			return nil
		})
	}
	_ = g.Wait()

	if setupErr := <-setupDone; setupErr != nil {
		h.logger.Error("Round trip setup failed", setupErr, map[string]interface{}{"topic": h.cfg.Topic})
		return report, setupErr
	}

	report.Schemas, _ = coordinator.Setup(ctx)
	report.ProduceDuration = s.trend.Summary()
	report.tally()
	h.logSummary(report)
	return report, nil
}

func (h *Harness) logSummary(r *Report) {
	fields := map[string]interface{}{
		"topic":          r.Topic,
		"workers":        len(r.Workers),
		"failed_workers": r.FailedWorkers(),
		"passed":         r.Passed(),
	}
	for _, c := range r.Checks {
		fields["check: "+c.Name] = map[string]int{"passes": c.Passes, "fails": c.Fails}
	}
	h.logger.Info("Round trip finished", nil, fields, map[string]interface{}{
		"produce_duration": r.ProduceDuration.Fields(),
	})
}
