package harness

import (
	"fmt"

	"github.com/Aleph-Alpha/kafka-roundtrip/v1/codec"
	sr "github.com/Aleph-Alpha/kafka-roundtrip/v1/schema_registry"
)

func keyPayload(t sr.SchemaType, key string) codec.Payload {
	switch t {
	case sr.String:
		return codec.StringPayload{Value: key}
	case sr.JSON:
		return codec.JSONPayload{Document: OrderKey{Key: key}}
	}
	return codec.AvroPayload{Record: OrderKey{Key: key}}
}

func valuePayload(t sr.SchemaType, order Order) codec.Payload {
	if t == sr.JSON {
		return codec.JSONPayload{Document: order}
	}
	return codec.AvroPayload{Record: order}
}

func keyShape(t sr.SchemaType) codec.Payload {
	return keyPayload(t, "")
}

func valueShape(t sr.SchemaType) codec.Payload {
	return valuePayload(t, Order{})
}

func keyFromPayload(p codec.Payload) (string, error) {
	switch v := p.(type) {
	case codec.StringPayload:
		return v.Value, nil
	case codec.AvroPayload:
		if k, ok := v.Record.(OrderKey); ok {
			return k.Key, nil
		}
	case codec.JSONPayload:
		if k, ok := v.Document.(OrderKey); ok {
			return k.Key, nil
		}
	}
	return "", fmt.Errorf("%w: unexpected key payload %T", codec.ErrDecode, p)
}

func orderFromPayload(p codec.Payload) (Order, error) {
	switch v := p.(type) {
	case codec.AvroPayload:
		if o, ok := v.Record.(Order); ok {
			return o, nil
		}
	case codec.JSONPayload:
		if o, ok := v.Document.(Order); ok {
			return o, nil
		}
	}
	return Order{}, fmt.Errorf("%w: unexpected value payload %T", codec.ErrDecode, p)
}
