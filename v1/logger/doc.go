// Package logger provides the structured logger used across the round-trip
// harness.
//
// It wraps zap with a small call shape, message plus optional error plus
// optional field maps, which every other package mirrors in its own Logger
// interface:
//
//	log := logger.NewLoggerClient(logger.Config{
//		Level:       logger.Debug,
//		ServiceName: "kafka-roundtrip",
//	})
//
//	log.Info("topic ready", nil, map[string]interface{}{
//		"topic":      "test-topic-avro",
//		"partitions": 6,
//	})
//
//	log.Error("send failed", err, map[string]interface{}{"worker": 3})
//
// Output is JSON on stderr with "timestamp", "level", "caller", "pid" and
// "service" fields.
//
// With fx, include logger.FXModule and provide a logger.Config; the module
// syncs the logger on shutdown.
package logger
