package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/kafka-roundtrip/v1/codec"
	"github.com/Aleph-Alpha/kafka-roundtrip/v1/kafka"
	sr "github.com/Aleph-Alpha/kafka-roundtrip/v1/schema_registry"
)

// memBroker is an in-memory ClientFactory. Every consumer reads the topic
// from the beginning, like a fresh consumer group.
type memBroker struct {
	mu     sync.Mutex
	topics map[string][]kafka.Message
	sent   []kafka.Message // survives topic deletion

	creates     int
	deletes     int
	adminCloses int
	open        int // producers and consumers not closed yet

	failSends int  // number of Send calls that fail
	dropSends bool // acknowledge sends without storing them

	admin TopicAdmin // replaces the in-memory admin when set
}

func newMemBroker() *memBroker {
	return &memBroker{topics: map[string][]kafka.Message{}}
}

func (b *memBroker) NewAdmin() TopicAdmin {
	if b.admin != nil {
		return b.admin
	}
	return &memAdmin{broker: b}
}

func (b *memBroker) NewProducer(topic string) Producer {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.open++
	return &memProducer{broker: b, topic: topic}
}

func (b *memBroker) NewConsumer(topic string, _ int) Consumer {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.open++
	return &memConsumer{broker: b, topic: topic}
}

func (b *memBroker) openClients() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open
}

func (b *memBroker) sentMessages() []kafka.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]kafka.Message(nil), b.sent...)
}

type memAdmin struct {
	broker *memBroker
}

func (a *memAdmin) CreateIfNotExists(_ context.Context, spec kafka.TopicSpec) error {
	b := a.broker
	b.mu.Lock()
	defer b.mu.Unlock()
	b.creates++
	if _, ok := b.topics[spec.Name]; !ok {
		b.topics[spec.Name] = nil
	}
	return nil
}

func (a *memAdmin) DeleteAll(_ context.Context, names ...string) error {
	b := a.broker
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deletes++
	for _, name := range names {
		delete(b.topics, name)
	}
	return nil
}

func (a *memAdmin) Close() error {
	a.broker.mu.Lock()
	defer a.broker.mu.Unlock()
	a.broker.adminCloses++
	return nil
}

type memProducer struct {
	broker *memBroker
	topic  string
}

func (p *memProducer) Send(_ context.Context, batch []kafka.Message) error {
	b := p.broker
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failSends > 0 {
		b.failSends--
		return fmt.Errorf("%w: broker unreachable", kafka.ErrSend)
	}
	for _, m := range batch {
		m.Topic = p.topic
		m.Offset = int64(len(b.topics[p.topic]))
		b.sent = append(b.sent, m)
		if !b.dropSends {
			b.topics[p.topic] = append(b.topics[p.topic], m)
		}
	}
	return nil
}

func (p *memProducer) Close() error {
	p.broker.mu.Lock()
	defer p.broker.mu.Unlock()
	p.broker.open--
	return nil
}

type memConsumer struct {
	broker *memBroker
	topic  string
	offset int
}

func (c *memConsumer) Consume(ctx context.Context, limit int, timeout time.Duration) ([]kafka.Message, error) {
	deadline := time.Now().Add(timeout)
	var out []kafka.Message
	for {
		c.broker.mu.Lock()
		available := c.broker.topics[c.topic]
		for c.offset < len(available) && len(out) < limit {
			out = append(out, available[c.offset])
			c.offset++
		}
		c.broker.mu.Unlock()

		if len(out) == limit || !time.Now().Before(deadline) {
			return out, nil
		}
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func (c *memConsumer) Close() error {
	c.broker.mu.Lock()
	defer c.broker.mu.Unlock()
	c.broker.open--
	return nil
}

// registryServer is a minimal schema registry: identical schemas under a
// subject share an id, a different one is rejected with 409.
type registryServer struct {
	mu       sync.Mutex
	subjects map[string]int
	schemas  map[int]string
	posts    int
	url      string
}

func newRegistryServer(t *testing.T) (*registryServer, *sr.Client) {
	t.Helper()
	rs := &registryServer{subjects: map[string]int{}, schemas: map[int]string{}}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /subjects/{subject}/versions", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Schema string `json:"schema"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		rs.mu.Lock()
		defer rs.mu.Unlock()
		rs.posts++

		subject := r.PathValue("subject")
		if id, ok := rs.subjects[subject]; ok {
			if rs.schemas[id] != body.Schema {
				w.WriteHeader(http.StatusConflict)
				_ = json.NewEncoder(w).Encode(map[string]interface{}{"error_code": 409, "message": "incompatible schema"})
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]int{"id": id})
			return
		}
		id := len(rs.schemas) + 1
		rs.subjects[subject] = id
		rs.schemas[id] = body.Schema
		_ = json.NewEncoder(w).Encode(map[string]int{"id": id})
	})
	mux.HandleFunc("GET /schemas/ids/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(r.PathValue("id"))
		rs.mu.Lock()
		schema, ok := rs.schemas[id]
		rs.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"error_code": 40403, "message": "schema not found"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"schema": schema})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	rs.url = srv.URL

	return rs, newRegistryClient(t, srv.URL)
}

func newRegistryClient(t *testing.T, url string) *sr.Client {
	t.Helper()
	client, err := sr.NewClient(sr.Config{URL: url, MaxRetries: 1, RetryInitialInterval: time.Millisecond})
	require.NoError(t, err)
	return client
}

func (rs *registryServer) postCount() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.posts
}

// recordingMetrics captures what the harness reports.
type recordingMetrics struct {
	mu           sync.Mutex
	durations    []time.Duration
	checks       map[string][2]int // name -> {passes, fails}
	messages     map[string]int    // direction -> count
	workerErrors map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		checks:       map[string][2]int{},
		messages:     map[string]int{},
		workerErrors: map[string]int{},
	}
}

func (m *recordingMetrics) ObserveProduceDuration(_ string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.durations = append(m.durations, d)
}

func (m *recordingMetrics) RecordCheck(name string, passed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.checks[name]
	if passed {
		c[0]++
	} else {
		c[1]++
	}
	m.checks[name] = c
}

func (m *recordingMetrics) AddMessages(_, direction string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[direction] += n
}

func (m *recordingMetrics) RecordWorkerError(phase string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workerErrors[phase]++
}

func testConfig() Config {
	return Config{
		Topic:          "orders",
		ConsumeTimeout: 200 * time.Millisecond,
		Seed:           42,
	}
}

func newTestHarness(t *testing.T, cfg Config, clients ClientFactory, registry sr.Registry) *Harness {
	t.Helper()
	catalog, err := LoadCatalog(cfg)
	require.NoError(t, err)
	h, err := NewHarness(cfg, catalog, registry, codec.NewCodec(registry), clients)
	require.NoError(t, err)
	return h
}
