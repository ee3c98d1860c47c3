package tracer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	traceSpan "go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/mock/gomock"
)

func TestHeadersCarryTraceContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	tr := NewClient(Config{ServiceName: "kafka-roundtrip", AppEnv: "test"}, NewMockLogger(ctrl))

	ctx, span := tr.StartSpan(context.Background(), "produce")
	defer span.End()

	headers := map[string]string{"correlationId": "abc"}
	tr.InjectHeaders(ctx, headers)

	assert.Equal(t, "abc", headers["correlationId"])
	require.Contains(t, headers, "traceparent")

	consumerCtx := tr.SetCarrierOnContext(context.Background(), headers)
	got := traceSpan.SpanContextFromContext(consumerCtx)
	assert.Equal(t, span.SpanContext().TraceID(), got.TraceID())
	assert.Equal(t, tr.GetCarrier(ctx)["traceparent"], headers["traceparent"])
}

func TestRecordErrorOnSpan(t *testing.T) {
	ctrl := gomock.NewController(t)
	recorder := tracetest.NewSpanRecorder()
	tr := NewClient(Config{ServiceName: "kafka-roundtrip"}, NewMockLogger(ctrl), trace.WithSpanProcessor(recorder))

	_, span := tr.StartSpan(context.Background(), "consume")
	tr.SetAttributes(span, map[string]interface{}{"worker": 1, "topic": "orders"})
	tr.RecordErrorOnSpan(span, errors.New("broker unreachable"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "consume", ended[0].Name())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Len(t, ended[0].Attributes(), 2)
}

func TestTracerLifecycle(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLog := NewMockLogger(ctrl)
	mockLog.EXPECT().Info("shutting down tracer...", gomock.Any(), gomock.Any()).Times(1)

	var tr *Tracer
	app := fxtest.New(t,
		FXModule,
		fx.Provide(
			func() Config { return Config{ServiceName: "kafka-roundtrip"} },
			func() Logger { return mockLog },
		),
		fx.Populate(&tr),
	)
	app.RequireStart()
	require.NotNil(t, tr)
	app.RequireStop()
}
