package harness

import (
	"context"

	"go.opentelemetry.io/otel/trace"

	"github.com/Aleph-Alpha/kafka-roundtrip/v1/codec"
	"github.com/Aleph-Alpha/kafka-roundtrip/v1/metrics"
	sr "github.com/Aleph-Alpha/kafka-roundtrip/v1/schema_registry"
	"github.com/Aleph-Alpha/kafka-roundtrip/v1/tracer"
)

// Session holds every handle shared by the coordinator and the workers of
// one run. Workers only read it; their producers and consumers are their own.
type Session struct {
	cfg      Config
	keys     KeyStrategy
	catalog  *sr.Catalog
	registry sr.Registry
	codec    *codec.Codec
	clients  ClientFactory
	admin    TopicAdmin
	metrics  metrics.Recorder
	tracer   *tracer.Tracer
	logger   Logger
	trend    *Trend
}

// Close releases the shared handles.
func (s *Session) Close() error {
	err := s.admin.Close()
	if err != nil {
		s.logger.Warn("Failed to close topic admin", err, nil)
	}
	s.logger.Info("All connections closed", nil, map[string]interface{}{"topic": s.cfg.Topic})
	return err
}

func (s *Session) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if s.tracer == nil {
		// a no-op span; the caller's span in ctx is not ours to end
		return ctx, trace.SpanFromContext(context.Background())
	}
	return s.tracer.StartSpan(ctx, name)
}

func (s *Session) recordError(span trace.Span, err error) {
	if s.tracer != nil && err != nil {
		s.tracer.RecordErrorOnSpan(span, err)
	}
}

func (s *Session) injectTrace(ctx context.Context, headers map[string]string) {
	if s.tracer != nil {
		s.tracer.InjectHeaders(ctx, headers)
	}
}

func (s *Session) extractTrace(ctx context.Context, headers map[string]string) context.Context {
	if s.tracer == nil || len(headers) == 0 {
		return ctx
	}
	return s.tracer.SetCarrierOnContext(ctx, headers)
}
