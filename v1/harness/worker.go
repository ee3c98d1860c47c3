package harness

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Aleph-Alpha/kafka-roundtrip/v1/kafka"
	"github.com/Aleph-Alpha/kafka-roundtrip/v1/metrics"
)

// Phases reported in WorkerResult.Phase and the worker error metric.
const (
	PhaseSetup   = "setup"
	PhaseProduce = "produce"
	PhaseConsume = "consume"
	PhaseVerify  = "verify"
)

// WorkerResult is what one worker's cycle produced.
type WorkerResult struct {
	Worker   int
	Produced int
	Consumed int

	// ProduceDuration is the wall-clock time of the produce phase.
	ProduceDuration time.Duration

	Checks []CheckResult

	// Reached is the last state before teardown.
	Reached State

	// Phase and Err describe an aborted cycle.
	Phase string
	Err   error
}

// Worker runs one produce-then-consume cycle. It owns its producer and
// consumer and closes them when the cycle ends.
type Worker struct {
	id        int
	session   *Session
	producer  Producer
	consumer  Consumer
	generator *Generator
	lifecycle *Lifecycle
}

func newWorker(id int, s *Session) *Worker {
	seed := s.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Worker{
		id:        id,
		session:   s,
		producer:  s.clients.NewProducer(s.cfg.Topic),
		consumer:  s.clients.NewConsumer(s.cfg.Topic, id),
		generator: NewGenerator(seed + int64(id)),
		lifecycle: newLifecycleAt(SchemasRegistered),
	}
}

// Run executes the cycle. Check failures are part of the result; only
// transport and codec failures abort it.
func (w *Worker) Run(ctx context.Context, schemas Schemas) (result WorkerResult) {
	s := w.session
	result.Worker = w.id
	defer func() {
		result.Reached = w.lifecycle.State()
		_ = w.lifecycle.Advance(TornDown)
		w.close()
	}()

	fail := func(phase string, err error) WorkerResult {
		result.Phase = phase
		result.Err = fmt.Errorf("worker %d %s: %w", w.id, phase, err)
		s.metrics.RecordWorkerError(phase)
		s.logger.Error("Round trip worker failed", err, map[string]interface{}{
			"worker": w.id,
			"phase":  phase,
		})
		return result
	}

	if err := w.lifecycle.Advance(Producing); err != nil {
		return fail(PhaseProduce, err)
	}
	produced, elapsed, err := w.produce(ctx, schemas)
	result.Produced = produced
	if err != nil {
		return fail(PhaseProduce, err)
	}
	result.ProduceDuration = elapsed
	s.trend.Add(elapsed)
	s.metrics.ObserveProduceDuration(s.cfg.Topic, elapsed)
	s.metrics.AddMessages(s.cfg.Topic, metrics.DirectionProduced, produced)

	if err := w.lifecycle.Advance(Consuming); err != nil {
		return fail(PhaseConsume, err)
	}
	msgs, err := w.consume(ctx)
	result.Consumed = len(msgs)
	s.metrics.AddMessages(s.cfg.Topic, metrics.DirectionConsumed, len(msgs))
	if err != nil {
		return fail(PhaseConsume, err)
	}

	decoded, err := w.decode(ctx, msgs, schemas)
	if err != nil {
		return fail(PhaseVerify, err)
	}
	if err := w.lifecycle.Advance(Verified); err != nil {
		return fail(PhaseVerify, err)
	}
	result.Checks = verify(s.cfg.MessagesPerWorker, decoded, s.keys)
	for _, c := range result.Checks {
		s.metrics.RecordCheck(c.Name, c.Passed)
	}
	return result
}

// produce encodes and sends MessagesPerWorker messages and returns how many
// were acknowledged and how long the phase took.
func (w *Worker) produce(ctx context.Context, schemas Schemas) (int, time.Duration, error) {
	s := w.session
	ctx, span := s.startSpan(ctx, "roundtrip.produce")
	defer span.End()

	n := s.cfg.MessagesPerWorker
	batch := make([]kafka.Message, 0, n)
	sent := 0
	start := time.Now()

	for i := 0; i < n; i++ {
		msg, err := w.message(ctx, i, schemas)
		if err != nil {
			s.recordError(span, err)
			return sent, time.Since(start), err
		}
		if s.cfg.BatchSend {
			batch = append(batch, msg)
			continue
		}
		if err := w.producer.Send(ctx, []kafka.Message{msg}); err != nil {
			s.recordError(span, err)
			return sent, time.Since(start), err
		}
		sent++
	}
	if len(batch) > 0 {
		if err := w.producer.Send(ctx, batch); err != nil {
			s.recordError(span, err)
			return sent, time.Since(start), err
		}
		sent = len(batch)
	}
	return sent, time.Since(start), nil
}

func (w *Worker) message(ctx context.Context, index int, schemas Schemas) (kafka.Message, error) {
	s := w.session
	correlationID := uuid.NewString()

	key, err := s.codec.Encode(ctx, keyPayload(schemas.Key.Type, s.keys.Key(index, correlationID)), schemas.Key)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode key %d: %w", index, err)
	}
	value, err := s.codec.Encode(ctx, valuePayload(schemas.Value.Type, w.generator.Order(index)), schemas.Value)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode value %d: %w", index, err)
	}

	headers := map[string]string{
		HeaderCorrelationID: correlationID,
		HeaderOrigin:        s.cfg.Origin,
		HeaderTimestamp:     time.Now().UTC().Format(time.RFC3339Nano),
	}
	s.injectTrace(ctx, headers)
	return kafka.Message{Key: key, Value: value, Headers: headers}, nil
}

func (w *Worker) consume(ctx context.Context) ([]kafka.Message, error) {
	s := w.session
	ctx, span := s.startSpan(ctx, "roundtrip.consume")
	defer span.End()

	msgs, err := w.consumer.Consume(ctx, s.cfg.MessagesPerWorker, s.cfg.ConsumeTimeout)
	s.recordError(span, err)
	return msgs, err
}

// decode turns every consumed message back into a key and an order. The
// first failure aborts; a message that cannot be decoded is not skipped.
func (w *Worker) decode(ctx context.Context, msgs []kafka.Message, schemas Schemas) ([]received, error) {
	s := w.session
	out := make([]received, 0, len(msgs))
	for _, m := range msgs {
		mctx, span := s.startSpan(s.extractTrace(ctx, m.Headers), "roundtrip.decode")
		rec, err := w.decodeOne(mctx, m, schemas)
		s.recordError(span, err)
		span.End()
		if err != nil {
			return out, fmt.Errorf("partition %d offset %d: %w", m.Partition, m.Offset, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (w *Worker) decodeOne(ctx context.Context, m kafka.Message, schemas Schemas) (received, error) {
	c := w.session.codec

	k, err := c.Decode(ctx, m.Key, schemas.Key, keyShape(schemas.Key.Type))
	if err != nil {
		return received{}, fmt.Errorf("decode key: %w", err)
	}
	key, err := keyFromPayload(k)
	if err != nil {
		return received{}, err
	}

	v, err := c.Decode(ctx, m.Value, schemas.Value, valueShape(schemas.Value.Type))
	if err != nil {
		return received{}, fmt.Errorf("decode value: %w", err)
	}
	order, err := orderFromPayload(v)
	if err != nil {
		return received{}, err
	}
	return received{Key: key, Order: order, Headers: m.Headers}, nil
}

func (w *Worker) close() {
	s := w.session
	if err := w.producer.Close(); err != nil {
		s.logger.Warn("Failed to close producer", err, map[string]interface{}{"worker": w.id})
	}
	if err := w.consumer.Close(); err != nil {
		s.logger.Warn("Failed to close consumer", err, map[string]interface{}{"worker": w.id})
	}
}
