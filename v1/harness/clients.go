package harness

import (
	"github.com/Aleph-Alpha/kafka-roundtrip/v1/kafka"
)

type kafkaClients struct {
	factory *kafka.Factory
}

// NewKafkaClients serves the harness from a kafka factory. Consumers join
// the factory's per-worker group.
func NewKafkaClients(factory *kafka.Factory) ClientFactory {
	return &kafkaClients{factory: factory}
}

func (c *kafkaClients) NewAdmin() TopicAdmin {
	return c.factory.NewAdmin()
}

func (c *kafkaClients) NewProducer(topic string) Producer {
	return c.factory.NewProducer(topic)
}

func (c *kafkaClients) NewConsumer(topic string, worker int) Consumer {
	return c.factory.NewConsumer(topic, c.factory.GroupID(worker))
}
