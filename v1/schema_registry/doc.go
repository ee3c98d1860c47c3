// Package schema_registry talks to a Confluent-compatible schema registry
// and owns the schema documents of a run.
//
// # Catalog
//
// A Catalog holds the key and value schema definitions and derives registry
// subjects from them:
//
//	catalog, err := schema_registry.NewCatalog(
//		schema_registry.Definition{Role: schema_registry.RoleKey, Type: schema_registry.Avro, Schema: keySchema},
//		schema_registry.Definition{Role: schema_registry.RoleValue, Type: schema_registry.Avro, Schema: valueSchema},
//	)
//	subject, err := catalog.SubjectName("orders", schema_registry.RoleValue, schema_registry.TopicNameStrategy)
//	// subject == "orders-value"
//
// AVRO documents are checked with goavro, JSON documents with gojsonschema.
// A missing or unparseable definition surfaces as ErrConfig.
//
// # Client
//
// Client implements Registry over the registry REST API:
//
//	client, err := schema_registry.NewClient(schema_registry.Config{URL: "http://localhost:8081"})
//	handle, err := client.Register(ctx, subject, valueSchema, schema_registry.Avro)
//
// Registration is idempotent and the first handle per subject is pinned for
// the life of the client; a different schema under a pinned subject, or a
// 409 from the registry, fails with ErrSchemaConflict. Resolve fails with
// ErrNotFound for unknown subjects. Concurrent registrations of one subject
// share a single HTTP request. Transport errors and 5xx responses are retried
// with exponential backoff, up to Config.MaxRetries times.
//
// # Wire format
//
// Registered payloads are framed as a 0x0 magic byte followed by the
// big-endian 4-byte schema id (EncodeSchemaID, Frame, DecodeSchemaID).
package schema_registry
