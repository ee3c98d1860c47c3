package harness

import (
	"fmt"

	"github.com/Aleph-Alpha/kafka-roundtrip/v1/codec"
)

// OrderItem is one line of an order.
type OrderItem struct {
	SKU         string `json:"sku"`
	ProductName string `json:"productName"`
	Quantity    int32  `json:"quantity"`
}

// Order is the message value of a round trip.
type Order struct {
	ID         int32       `json:"id"`
	ClientName string      `json:"clientName"`
	Items      []OrderItem `json:"items"`
}

// OrderKey is the message key when keys are AVRO or JSON encoded.
type OrderKey struct {
	Key string `json:"key"`
}

// AvroNative renders o in the goavro native form of the order value schema.
func (o Order) AvroNative() map[string]interface{} {
	items := make([]interface{}, len(o.Items))
	for i, it := range o.Items {
		items[i] = map[string]interface{}{
			"sku":         it.SKU,
			"productName": it.ProductName,
			"quantity":    it.Quantity,
		}
	}
	return map[string]interface{}{
		"id":         o.ID,
		"clientName": o.ClientName,
		"items":      items,
	}
}

// FromAvroNative rebuilds an Order from its goavro native form. An empty
// items array yields nil Items.
func (Order) FromAvroNative(native map[string]interface{}) (codec.Record, error) {
	var (
		o   Order
		err error
	)
	if o.ID, err = nativeInt(native, "id"); err != nil {
		return nil, err
	}
	if o.ClientName, err = nativeString(native, "clientName"); err != nil {
		return nil, err
	}
	raw, ok := native["items"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("field items is %T", native["items"])
	}
	if len(raw) > 0 {
		o.Items = make([]OrderItem, 0, len(raw))
	}
	for i, r := range raw {
		m, ok := r.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("items[%d] is %T", i, r)
		}
		var it OrderItem
		if it.SKU, err = nativeString(m, "sku"); err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, err)
		}
		if it.ProductName, err = nativeString(m, "productName"); err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, err)
		}
		if it.Quantity, err = nativeInt(m, "quantity"); err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, err)
		}
		o.Items = append(o.Items, it)
	}
	return o, nil
}

// AvroNative renders k in the goavro native form of the order key schema.
func (k OrderKey) AvroNative() map[string]interface{} {
	return map[string]interface{}{"key": k.Key}
}

// FromAvroNative rebuilds an OrderKey from its goavro native form.
func (OrderKey) FromAvroNative(native map[string]interface{}) (codec.Record, error) {
	key, err := nativeString(native, "key")
	if err != nil {
		return nil, err
	}
	return OrderKey{Key: key}, nil
}

func nativeString(m map[string]interface{}, field string) (string, error) {
	s, ok := m[field].(string)
	if !ok {
		return "", fmt.Errorf("field %s is %T, want string", field, m[field])
	}
	return s, nil
}

func nativeInt(m map[string]interface{}, field string) (int32, error) {
	switch v := m[field].(type) {
	case int32:
		return v, nil
	case int64:
		return int32(v), nil
	case int:
		return int32(v), nil
	}
	return 0, fmt.Errorf("field %s is %T, want int", field, m[field])
}
