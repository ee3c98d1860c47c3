package harness

import (
	"go.uber.org/fx"

	"github.com/Aleph-Alpha/kafka-roundtrip/v1/codec"
	"github.com/Aleph-Alpha/kafka-roundtrip/v1/logger"
	"github.com/Aleph-Alpha/kafka-roundtrip/v1/metrics"
	sr "github.com/Aleph-Alpha/kafka-roundtrip/v1/schema_registry"
	"github.com/Aleph-Alpha/kafka-roundtrip/v1/tracer"
)

// FXModule provides the schema catalog, the kafka-backed ClientFactory and
// the *Harness.
//
// Dependencies required by this module:
// - a harness.Config
// - a *kafka.Factory (kafka.FXModule)
// - a schema_registry.Registry (schema_registry.FXModule)
// - a *codec.Codec (codec.FXModule)
//
// Metrics, tracer and logger are picked up when present.
var FXModule = fx.Module("harness",
	fx.Provide(
		LoadCatalog,
		NewKafkaClients,
		NewHarnessWithDI,
	),
)

// HarnessParams groups the dependencies of NewHarnessWithDI.
type HarnessParams struct {
	fx.In

	Config   Config
	Catalog  *sr.Catalog
	Registry sr.Registry
	Codec    *codec.Codec
	Clients  ClientFactory
	Metrics  metrics.Recorder `optional:"true"`
	Tracer   *tracer.Tracer   `optional:"true"`
	Logger   *logger.Logger   `optional:"true"`
}

// NewHarnessWithDI builds the harness from injected dependencies.
func NewHarnessWithDI(params HarnessParams) (*Harness, error) {
	h, err := NewHarness(params.Config, params.Catalog, params.Registry, params.Codec, params.Clients)
	if err != nil {
		return nil, err
	}
	if params.Metrics != nil {
		h.WithMetrics(params.Metrics)
	}
	if params.Tracer != nil {
		h.WithTracer(params.Tracer)
	}
	if params.Logger != nil {
		h.WithLogger(params.Logger)
	}
	return h, nil
}
