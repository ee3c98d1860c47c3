// Package kafka provides the broker side of the round-trip harness: topic
// administration, a synchronous producer and a bounded consumer, all on
// segmentio/kafka-go.
//
// A Factory carries the shared configuration (brokers, TLS, SASL, tuning)
// and creates the clients:
//
//	factory, err := kafka.NewFactory(kafka.Config{Brokers: []string{"localhost:9092"}}, log)
//
//	admin := factory.NewAdmin()
//	defer admin.Close()
//	err = admin.CreateIfNotExists(ctx, kafka.TopicSpec{
//		Name:          "test-topic-avro",
//		Partitions:    6,
//		ConfigEntries: map[string]string{"compression.type": "snappy"},
//	})
//
//	producer := factory.NewProducer("test-topic-avro")
//	defer producer.Close()
//	err = producer.Send(ctx, []kafka.Message{{Key: key, Value: value}})
//
//	consumer := factory.NewConsumer("test-topic-avro", factory.GroupID(0))
//	defer consumer.Close()
//	msgs, err := consumer.Consume(ctx, 10, 60*time.Second)
//
// CreateIfNotExists and DeleteAll are idempotent. Send waits for the leader
// acknowledgement by default and hashes keys to partitions. Consume treats a
// timeout as a short result; only broker failures surface as ErrConsume.
package kafka
