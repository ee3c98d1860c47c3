// Package codec serializes message keys and values under schema registry
// handles.
//
// Payloads form a closed set: AvroPayload (a typed Record with an AVRO
// native form), StringPayload (raw UTF-8, unframed) and JSONPayload (any
// value marshalling to a document validated against a JSON schema). AVRO and
// JSON bytes carry the Confluent wire header with the handle's schema id.
//
//	c := codec.NewCodec(registry)
//	data, err := c.Encode(ctx, codec.AvroPayload{Record: order}, valueHandle)
//	back, err := c.Decode(ctx, data, valueHandle, codec.AvroPayload{Record: harness.Order{}})
//
// Decode(Encode(p)) equals p for every payload that encodes. A payload that
// does not fit the schema fails with ErrEncode; MismatchedField returns the
// offending field. Bytes that are truncated, corrupt or framed with another
// schema id fail with ErrDecode.
package codec
