package kafka

import (
	"sort"
	"time"

	"github.com/segmentio/kafka-go"
)

// Message is one record on a topic. Key and Value are already-encoded
// bytes; Key may be nil. The read-side fields are zero on produce.
type Message struct {
	Key     []byte
	Value   []byte
	Headers map[string]string

	Topic     string
	Partition int
	Offset    int64
	Time      time.Time
}

func toKafkaMessage(m Message) kafka.Message {
	out := kafka.Message{Key: m.Key, Value: m.Value}
	if len(m.Headers) == 0 {
		return out
	}

	keys := make([]string, 0, len(m.Headers))
	for k := range m.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out.Headers = make([]kafka.Header, 0, len(keys))
	for _, k := range keys {
		out.Headers = append(out.Headers, kafka.Header{Key: k, Value: []byte(m.Headers[k])})
	}
	return out
}

func fromKafkaMessage(m kafka.Message) Message {
	out := Message{
		Key:       m.Key,
		Value:     m.Value,
		Topic:     m.Topic,
		Partition: m.Partition,
		Offset:    m.Offset,
		Time:      m.Time,
	}
	if len(m.Headers) > 0 {
		out.Headers = make(map[string]string, len(m.Headers))
		for _, h := range m.Headers {
			out.Headers[h.Key] = string(h.Value)
		}
	}
	return out
}
