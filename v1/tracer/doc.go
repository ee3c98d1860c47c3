// Package tracer wires OpenTelemetry into the round-trip harness.
//
// Each harness phase runs in its own span. The producer side injects the W3C
// trace context into message headers with InjectHeaders; the consumer side
// continues the trace with SetCarrierOnContext, so one order can be followed
// from produce to verification.
//
//	t := tracer.NewClient(tracer.Config{ServiceName: "kafka-roundtrip"}, log)
//	ctx, span := t.StartSpan(ctx, "produce")
//	defer span.End()
//
//	headers := map[string]string{"correlationId": id}
//	t.InjectHeaders(ctx, headers)
package tracer
