// Command roundtrip runs the Kafka and schema registry round trip once and
// exits non-zero when setup fails, a worker aborts or a check fails.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/kafka-roundtrip/v1/codec"
	"github.com/Aleph-Alpha/kafka-roundtrip/v1/harness"
	"github.com/Aleph-Alpha/kafka-roundtrip/v1/kafka"
	"github.com/Aleph-Alpha/kafka-roundtrip/v1/logger"
	"github.com/Aleph-Alpha/kafka-roundtrip/v1/metrics"
	sr "github.com/Aleph-Alpha/kafka-roundtrip/v1/schema_registry"
	"github.com/Aleph-Alpha/kafka-roundtrip/v1/tracer"
)

const (
	exitFailed = 1
	exitSetup  = 2
)

func main() {
	configPath := flag.String("config", os.Getenv("ROUNDTRIP_CONFIG"), "path of a YAML config file")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitSetup)
	}

	fx.New(
		fx.NopLogger,
		fx.Supply(cfg.Logger, cfg.Metrics, cfg.Tracer, cfg.Kafka, cfg.SchemaRegistry, cfg.Harness),
		fx.Provide(
			func(l *logger.Logger) kafka.Logger { return l },
			func(l *logger.Logger) sr.Logger { return l },
			func(l *logger.Logger) tracer.Logger { return l },
		),
		logger.FXModule,
		metrics.FXModule,
		tracer.FXModule,
		sr.FXModule,
		codec.FXModule,
		kafka.FXModule,
		harness.FXModule,
		fx.Invoke(RegisterRunLifecycle),
	).Run()
}

// RunParams groups the dependencies of RegisterRunLifecycle.
type RunParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Harness    *harness.Harness
	Logger     *logger.Logger
}

// RegisterRunLifecycle runs the harness in the background once the app has
// started and shuts the app down with the outcome as exit code. Stopping
// the app early cancels the run; teardown still happens.
func RegisterRunLifecycle(params RunParams) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	params.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				code := run(ctx, params.Harness, params.Logger)
				if err := params.Shutdowner.Shutdown(fx.ExitCode(code)); err != nil {
					params.Logger.Error("Failed to shut down", err, nil)
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}

func run(ctx context.Context, h *harness.Harness, log *logger.Logger) int {
	report, err := h.Run(ctx)
	if err != nil {
		log.Error("Round trip failed", err, map[string]interface{}{"topic": h.Config().Topic})
		if harness.IsSetupError(err) || harness.IsConfigError(err) {
			return exitSetup
		}
		return exitFailed
	}

	for _, w := range report.Workers {
		if w.Err != nil {
			log.Warn("Worker aborted", w.Err, map[string]interface{}{
				"worker":  w.Worker,
				"phase":   w.Phase,
				"reached": w.Reached.String(),
			})
		}
	}
	for _, c := range report.Checks {
		fields := map[string]interface{}{"check": c.Name, "passes": c.Passes, "fails": c.Fails}
		if c.Fails > 0 {
			log.Warn("Check failed", nil, fields)
		} else {
			log.Info("Check passed", nil, fields)
		}
	}

	if !report.Passed() {
		return exitFailed
	}
	return 0
}
