package codec

import (
	sr "github.com/Aleph-Alpha/kafka-roundtrip/v1/schema_registry"
)

// Payload is the closed set of values the codec serializes: AvroPayload,
// StringPayload and JSONPayload.
type Payload interface {
	SchemaType() sr.SchemaType
	payload()
}

// Record is a typed value with an AVRO native representation, the
// map[string]interface{} shape goavro reads and writes.
type Record interface {
	AvroNative() map[string]interface{}
	// FromAvroNative builds a new record of the receiver's type from native.
	FromAvroNative(native map[string]interface{}) (Record, error)
}

// AvroPayload carries a record serialized with AVRO binary encoding.
type AvroPayload struct {
	Record Record
}

// StringPayload carries a plain UTF-8 string. It is never framed.
type StringPayload struct {
	Value string
}

// JSONPayload carries any value that marshals to a JSON document.
// On decode the document is rebuilt with the dynamic type of the shape's
// Document, or as map[string]interface{} when that is nil.
type JSONPayload struct {
	Document interface{}
}

func (AvroPayload) SchemaType() sr.SchemaType   { return sr.Avro }
func (StringPayload) SchemaType() sr.SchemaType { return sr.String }
func (JSONPayload) SchemaType() sr.SchemaType   { return sr.JSON }

func (AvroPayload) payload()   {}
func (StringPayload) payload() {}
func (JSONPayload) payload()   {}
