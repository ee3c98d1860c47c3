package harness

import (
	"context"
	"fmt"
	"sync"

	"github.com/Aleph-Alpha/kafka-roundtrip/v1/kafka"
	sr "github.com/Aleph-Alpha/kafka-roundtrip/v1/schema_registry"
)

// Schemas are the handles every worker encodes and decodes with.
type Schemas struct {
	Key   sr.Handle
	Value sr.Handle
}

// Coordinator performs the run's setup and teardown exactly once and
// releases waiting workers when setup is done.
type Coordinator struct {
	session   *Session
	lifecycle *Lifecycle

	setupOnce sync.Once
	ready     chan struct{}
	schemas   Schemas
	setupErr  error

	// topicTouched is set once a create request may have reached the broker.
	topicTouched bool

	teardownOnce sync.Once
	teardownErr  error
}

func newCoordinator(s *Session) *Coordinator {
	return &Coordinator{
		session:   s,
		lifecycle: NewLifecycle(),
		ready:     make(chan struct{}),
	}
}

// State returns the state of the shared run.
func (c *Coordinator) State() State {
	return c.lifecycle.State()
}

// Setup creates the topic and registers the key and value schemas. Only
// the first call does the work; later calls return its result.
func (c *Coordinator) Setup(ctx context.Context) (Schemas, error) {
	c.setupOnce.Do(func() {
		schemas, err := c.setup(ctx)
		if err != nil {
			c.setupErr = fmt.Errorf("%w: %w", ErrSetupFailed, err)
		} else {
			c.schemas = schemas
		}
		close(c.ready)
	})
	return c.schemas, c.setupErr
}

// Await blocks until setup finished and returns its result.
func (c *Coordinator) Await(ctx context.Context) (Schemas, error) {
	select {
	case <-c.ready:
		return c.schemas, c.setupErr
	case <-ctx.Done():
		return Schemas{}, ctx.Err()
	}
}

func (c *Coordinator) setup(ctx context.Context) (Schemas, error) {
	s := c.session
	ctx, span := s.startSpan(ctx, "roundtrip.setup")
	defer span.End()

	schemas, err := c.provision(ctx)
	s.recordError(span, err)
	return schemas, err
}

func (c *Coordinator) provision(ctx context.Context) (Schemas, error) {
	s := c.session
	cfg := s.cfg

	if err := s.catalog.Validate(); err != nil {
		return Schemas{}, err
	}
	strategy := sr.NamingStrategy(cfg.SubjectNameStrategy)
	keySubject, err := s.catalog.SubjectName(cfg.Topic, sr.RoleKey, strategy)
	if err != nil {
		return Schemas{}, err
	}
	valueSubject, err := s.catalog.SubjectName(cfg.Topic, sr.RoleValue, strategy)
	if err != nil {
		return Schemas{}, err
	}

	c.topicTouched = true
	err = s.admin.CreateIfNotExists(ctx, kafka.TopicSpec{
		Name:              cfg.Topic,
		Partitions:        cfg.Partitions,
		ReplicationFactor: cfg.ReplicationFactor,
		ConfigEntries:     map[string]string{"compression.type": cfg.TopicCompression},
	})
	if err != nil {
		return Schemas{}, err
	}
	if err := c.lifecycle.Advance(TopicReady); err != nil {
		return Schemas{}, err
	}

	var schemas Schemas
	if schemas.Key, err = c.register(ctx, sr.RoleKey, keySubject); err != nil {
		return Schemas{}, err
	}
	if schemas.Value, err = c.register(ctx, sr.RoleValue, valueSubject); err != nil {
		return Schemas{}, err
	}
	if err := c.lifecycle.Advance(SchemasRegistered); err != nil {
		return Schemas{}, err
	}

	s.logger.Info("Round trip setup complete", nil, map[string]interface{}{
		"topic":         cfg.Topic,
		"key_subject":   keySubject,
		"key_schema":    schemas.Key.ID,
		"value_subject": valueSubject,
		"value_schema":  schemas.Value.ID,
	})
	return schemas, nil
}

// register returns the handle of role. STRING definitions are not kept in
// the registry and get an unframed handle.
func (c *Coordinator) register(ctx context.Context, role sr.Role, subject string) (sr.Handle, error) {
	def, err := c.session.catalog.Definition(role)
	if err != nil {
		return sr.Handle{}, err
	}
	if !def.Type.Registered() {
		return sr.Handle{Subject: subject, Type: def.Type}, nil
	}
	return c.session.registry.Register(ctx, subject, def.Schema, def.Type)
}

// Teardown deletes the topic once, after every worker is done with it.
// It runs even when ctx is already cancelled, bounded by TeardownTimeout.
func (c *Coordinator) Teardown(ctx context.Context) error {
	c.teardownOnce.Do(func() {
		s := c.session
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.TeardownTimeout)
		defer cancel()
		ctx, span := s.startSpan(ctx, "roundtrip.teardown")
		defer span.End()

		if c.topicTouched && !s.cfg.KeepTopic {
			if err := s.admin.DeleteAll(ctx, s.cfg.Topic); err != nil {
				c.teardownErr = err
				s.recordError(span, err)
				s.logger.Error("Failed to delete topic", err, map[string]interface{}{"topic": s.cfg.Topic})
			} else {
				s.logger.Info("Topic deleted", nil, map[string]interface{}{"topic": s.cfg.Topic})
			}
		}
		_ = c.lifecycle.Advance(TornDown)
	})
	return c.teardownErr
}
