package codec

import (
	"context"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	sr "github.com/Aleph-Alpha/kafka-roundtrip/v1/schema_registry"
)

// Codec turns payloads into wire bytes under a registry schema handle and
// back. It is safe for concurrent use; compiled schemas are cached by text.
type Codec struct {
	// registry supplies schema text for handles that only carry an id. May be nil.
	registry sr.Registry

	mu   sync.RWMutex
	avro map[string]*avroSchema
	json map[string]*gojsonschema.Schema
}

// NewCodec creates a codec. registry may be nil when every handle passed to
// Encode and Decode carries its schema text.
func NewCodec(registry sr.Registry) *Codec {
	return &Codec{
		registry: registry,
		avro:     make(map[string]*avroSchema),
		json:     make(map[string]*gojsonschema.Schema),
	}
}

// Encode serializes p under h.
//
// STRING payloads become their raw UTF-8 bytes. AVRO and JSON payloads are
// validated against the handle's schema and framed with its id; a mismatch
// fails with ErrEncode wrapping a *FieldError naming the offending field.
func (c *Codec) Encode(ctx context.Context, p Payload, h sr.Handle) ([]byte, error) {
	switch v := p.(type) {
	case StringPayload:
		if h.Type != "" && h.Type != sr.String {
			return nil, encodeErr("", "string payload under %s schema %d", h.Type, h.ID)
		}
		return []byte(v.Value), nil

	case AvroPayload:
		if h.Type != sr.Avro {
			return nil, encodeErr("", "avro payload under %s schema %d", h.Type, h.ID)
		}
		if v.Record == nil {
			return nil, encodeErr("", "avro payload without record")
		}
		schema, err := c.avroSchema(ctx, h)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEncode, err)
		}
		body, err := schema.encode(v.Record.AvroNative())
		if err != nil {
			return nil, err
		}
		return sr.Frame(h.ID, body), nil

	case JSONPayload:
		if h.Type != sr.JSON {
			return nil, encodeErr("", "json payload under %s schema %d", h.Type, h.ID)
		}
		schema, err := c.jsonSchema(ctx, h)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEncode, err)
		}
		body, err := encodeJSON(schema, v.Document)
		if err != nil {
			return nil, err
		}
		return sr.Frame(h.ID, body), nil
	}
	return nil, encodeErr("", "unsupported payload %T", p)
}

// Decode rebuilds a payload of the same variant as shape from data.
//
// For framed types the embedded schema id must equal h.ID. Truncated,
// corrupt or mismatched bytes fail with ErrDecode.
func (c *Codec) Decode(ctx context.Context, data []byte, h sr.Handle, shape Payload) (Payload, error) {
	switch s := shape.(type) {
	case StringPayload:
		if h.Type.Registered() {
			return nil, decodeErr("string shape under %s schema %d", h.Type, h.ID)
		}
		return StringPayload{Value: string(data)}, nil

	case AvroPayload:
		if s.Record == nil {
			return nil, decodeErr("avro shape without record")
		}
		body, err := unframe(data, h)
		if err != nil {
			return nil, err
		}
		schema, err := c.avroSchema(ctx, h)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		native, err := schema.decode(body)
		if err != nil {
			return nil, err
		}
		rec, err := s.Record.FromAvroNative(native)
		if err != nil {
			return nil, decodeErr("build %T: %v", s.Record, err)
		}
		return AvroPayload{Record: rec}, nil

	case JSONPayload:
		body, err := unframe(data, h)
		if err != nil {
			return nil, err
		}
		doc, err := decodeJSON(body, s.Document)
		if err != nil {
			return nil, err
		}
		return JSONPayload{Document: doc}, nil
	}
	return nil, decodeErr("unsupported payload shape %T", shape)
}

func unframe(data []byte, h sr.Handle) ([]byte, error) {
	id, body, err := sr.DecodeSchemaID(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if id != h.ID {
		return nil, decodeErr("schema id mismatch: embedded %d, expected %d", id, h.ID)
	}
	return body, nil
}

func (c *Codec) schemaText(ctx context.Context, h sr.Handle) (string, error) {
	if h.Schema != "" {
		return h.Schema, nil
	}
	if c.registry == nil {
		return "", fmt.Errorf("handle %d carries no schema and no registry is configured", h.ID)
	}
	return c.registry.GetSchemaByID(ctx, h.ID)
}

func (c *Codec) avroSchema(ctx context.Context, h sr.Handle) (*avroSchema, error) {
	text, err := c.schemaText(ctx, h)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	s, ok := c.avro[text]
	c.mu.RUnlock()
	if ok {
		return s, nil
	}

	s, err = newAvroSchema(text)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.avro[text] = s
	c.mu.Unlock()
	return s, nil
}

func (c *Codec) jsonSchema(ctx context.Context, h sr.Handle) (*gojsonschema.Schema, error) {
	text, err := c.schemaText(ctx, h)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	s, ok := c.json[text]
	c.mu.RUnlock()
	if ok {
		return s, nil
	}

	s, err = gojsonschema.NewSchema(gojsonschema.NewStringLoader(text))
	if err != nil {
		return nil, fmt.Errorf("compile json schema: %w", err)
	}
	c.mu.Lock()
	c.json[text] = s
	c.mu.Unlock()
	return s, nil
}
