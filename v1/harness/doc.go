/*
Package harness runs a produce-then-consume round trip through Kafka with
schema-registry encoded keys and values, and verifies what comes back.

A run has one setup, a pool of workers and one teardown:

	Idle → TopicReady → SchemasRegistered → Producing → Consuming → Verified → TornDown

The Coordinator creates the topic and registers the key and value schemas
exactly once. Workers wait on it, then each generates N orders, encodes and
sends them, consumes up to N messages, decodes them and runs the checks.
The produce phase of every worker is timed into a Trend and the produce
duration histogram. Once all workers returned the Coordinator deletes the
topic, whatever happened before.

Check failures are findings about the cluster and end up in the Report.
Setup failures abort the run; a worker failure only ends that worker.

Basic Usage:

	catalog, err := harness.LoadCatalog(cfg)
	if err != nil {
		return err
	}
	h, err := harness.NewHarness(cfg, catalog, registry, codec.NewCodec(registry), harness.NewKafkaClients(factory))
	if err != nil {
		return err
	}
	report, err := h.Run(ctx)
	if err != nil {
		return err
	}
	if !report.Passed() {
		// inspect report.Checks and report.Workers
	}

Key contracts:

	harness.PrefixKeys{Prefix: "key-"}                    // "key-<correlation id>"
	harness.AlternatingKeys{Even: "ROUTER", Odd: "CHANNEL"} // by message index
*/
package harness
