package codec

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sr "github.com/Aleph-Alpha/kafka-roundtrip/v1/schema_registry"
)

const testOrderSchema = `{
  "type": "record",
  "name": "Order",
  "fields": [
    {"name": "id", "type": "int"},
    {"name": "clientName", "type": "string"},
    {"name": "items", "type": {"type": "array", "items": {
      "type": "record",
      "name": "Item",
      "fields": [
        {"name": "sku", "type": "string"},
        {"name": "quantity", "type": "int"}
      ]
    }}}
  ]
}`

const testOrderJSONSchema = `{
  "type": "object",
  "properties": {
    "id": {"type": "integer"},
    "clientName": {"type": "string"},
    "items": {"type": "array", "minItems": 1, "items": {
      "type": "object",
      "properties": {"sku": {"type": "string"}, "quantity": {"type": "integer", "minimum": 1, "maximum": 10}},
      "required": ["sku", "quantity"]
    }}
  },
  "required": ["id", "clientName", "items"]
}`

type testItem struct {
	SKU      string `json:"sku"`
	Quantity int32  `json:"quantity"`
}

type testOrder struct {
	ID         int32      `json:"id"`
	ClientName string     `json:"clientName"`
	Items      []testItem `json:"items"`
}

func (o testOrder) AvroNative() map[string]interface{} {
	items := make([]interface{}, len(o.Items))
	for i, it := range o.Items {
		items[i] = map[string]interface{}{"sku": it.SKU, "quantity": it.Quantity}
	}
	return map[string]interface{}{"id": o.ID, "clientName": o.ClientName, "items": items}
}

func (testOrder) FromAvroNative(native map[string]interface{}) (Record, error) {
	var o testOrder
	o.ID, _ = native["id"].(int32)
	o.ClientName, _ = native["clientName"].(string)
	raw, _ := native["items"].([]interface{})
	for _, r := range raw {
		m, ok := r.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("item is %T", r)
		}
		sku, _ := m["sku"].(string)
		qty, _ := m["quantity"].(int32)
		o.Items = append(o.Items, testItem{SKU: sku, Quantity: qty})
	}
	return o, nil
}

// rawRecord lets a test hand arbitrary native maps to the encoder.
type rawRecord map[string]interface{}

func (r rawRecord) AvroNative() map[string]interface{} { return r }
func (rawRecord) FromAvroNative(native map[string]interface{}) (Record, error) {
	return rawRecord(native), nil
}

type stubRegistry struct {
	sr.Registry
	schemas map[int]string
	calls   int
}

func (s *stubRegistry) GetSchemaByID(_ context.Context, id int) (string, error) {
	s.calls++
	schema, ok := s.schemas[id]
	if !ok {
		return "", sr.ErrNotFound
	}
	return schema, nil
}

var (
	avroHandle = sr.Handle{ID: 7, Subject: "orders-value", Type: sr.Avro, Schema: testOrderSchema}
	jsonHandle = sr.Handle{ID: 9, Subject: "orders-value", Type: sr.JSON, Schema: testOrderJSONSchema}
	sample     = testOrder{ID: 3, ClientName: "client-3", Items: []testItem{{SKU: "sku-1", Quantity: 2}, {SKU: "sku-2", Quantity: 10}}}
)

func TestAvroRoundTrip(t *testing.T) {
	c := NewCodec(nil)
	ctx := context.Background()

	data, err := c.Encode(ctx, AvroPayload{Record: sample}, avroHandle)
	require.NoError(t, err)

	id, _, err := sr.DecodeSchemaID(data)
	require.NoError(t, err)
	assert.Equal(t, 7, id)

	back, err := c.Decode(ctx, data, avroHandle, AvroPayload{Record: testOrder{}})
	require.NoError(t, err)
	assert.Equal(t, AvroPayload{Record: sample}, back)
}

func TestAvroSchemaFetchedFromRegistry(t *testing.T) {
	registry := &stubRegistry{schemas: map[int]string{7: testOrderSchema}}
	c := NewCodec(registry)
	ctx := context.Background()
	idOnly := sr.Handle{ID: 7, Type: sr.Avro}

	data, err := c.Encode(ctx, AvroPayload{Record: sample}, idOnly)
	require.NoError(t, err)
	back, err := c.Decode(ctx, data, idOnly, AvroPayload{Record: testOrder{}})
	require.NoError(t, err)
	assert.Equal(t, sample, back.(AvroPayload).Record)
	assert.Equal(t, 2, registry.calls)

	_, err = NewCodec(nil).Encode(ctx, AvroPayload{Record: sample}, idOnly)
	assert.True(t, IsEncodeError(err))
}

func TestStringRoundTripIsUnframed(t *testing.T) {
	c := NewCodec(nil)
	ctx := context.Background()

	data, err := c.Encode(ctx, StringPayload{Value: "key-ü"}, sr.Handle{})
	require.NoError(t, err)
	assert.Equal(t, []byte("key-ü"), data)

	back, err := c.Decode(ctx, data, sr.Handle{}, StringPayload{})
	require.NoError(t, err)
	assert.Equal(t, StringPayload{Value: "key-ü"}, back)
}

func TestStringShapeRejectsFramedHandle(t *testing.T) {
	c := NewCodec(nil)
	ctx := context.Background()
	data, err := c.Encode(ctx, AvroPayload{Record: sample}, avroHandle)
	require.NoError(t, err)

	_, err = c.Decode(ctx, data, avroHandle, StringPayload{})
	require.Error(t, err)
	assert.True(t, IsDecodeError(err))

	_, err = c.Decode(ctx, []byte("key-1"), sr.Handle{Type: sr.String}, StringPayload{})
	assert.NoError(t, err)
}

func TestJSONRoundTrip(t *testing.T) {
	c := NewCodec(nil)
	ctx := context.Background()

	data, err := c.Encode(ctx, JSONPayload{Document: sample}, jsonHandle)
	require.NoError(t, err)

	back, err := c.Decode(ctx, data, jsonHandle, JSONPayload{Document: testOrder{}})
	require.NoError(t, err)
	assert.Equal(t, JSONPayload{Document: sample}, back)

	ptr, err := c.Decode(ctx, data, jsonHandle, JSONPayload{Document: &testOrder{}})
	require.NoError(t, err)
	assert.Equal(t, &sample, ptr.(JSONPayload).Document)

	generic, err := c.Decode(ctx, data, jsonHandle, JSONPayload{})
	require.NoError(t, err)
	assert.Equal(t, "client-3", generic.(JSONPayload).Document.(map[string]interface{})["clientName"])
}

func TestAvroEncodeNamesMismatchedField(t *testing.T) {
	c := NewCodec(nil)
	ctx := context.Background()

	_, err := c.Encode(ctx, AvroPayload{Record: rawRecord{"id": 1, "items": []interface{}{}}}, avroHandle)
	require.True(t, IsEncodeError(err))
	field, ok := MismatchedField(err)
	require.True(t, ok)
	assert.Equal(t, "clientName", field)

	_, err = c.Encode(ctx, AvroPayload{Record: rawRecord{"id": 1, "clientName": "c", "items": []interface{}{}, "extra": true}}, avroHandle)
	field, _ = MismatchedField(err)
	assert.Equal(t, "extra", field)

	_, err = c.Encode(ctx, AvroPayload{Record: rawRecord{"id": "one", "clientName": "c", "items": []interface{}{}}}, avroHandle)
	require.True(t, IsEncodeError(err))
	field, _ = MismatchedField(err)
	assert.Equal(t, "id", field)

	bad := rawRecord{"id": 1, "clientName": "c", "items": []interface{}{
		map[string]interface{}{"sku": "s", "quantity": "many"},
	}}
	_, err = c.Encode(ctx, AvroPayload{Record: bad}, avroHandle)
	require.True(t, IsEncodeError(err))
	field, _ = MismatchedField(err)
	assert.True(t, strings.HasPrefix(field, "items"), field)
}

func TestJSONEncodeNamesMismatchedField(t *testing.T) {
	c := NewCodec(nil)
	ctx := context.Background()

	tooMany := testOrder{ID: 1, ClientName: "c", Items: []testItem{{SKU: "s", Quantity: 11}}}
	_, err := c.Encode(ctx, JSONPayload{Document: tooMany}, jsonHandle)
	require.True(t, IsEncodeError(err))
	field, _ := MismatchedField(err)
	assert.Equal(t, "items.0.quantity", field)

	_, err = c.Encode(ctx, JSONPayload{Document: map[string]interface{}{"id": 1, "items": []interface{}{}}}, jsonHandle)
	require.True(t, IsEncodeError(err))
}

func TestEncodeRejectsVariantHandleMismatch(t *testing.T) {
	c := NewCodec(nil)
	ctx := context.Background()

	_, err := c.Encode(ctx, JSONPayload{Document: sample}, avroHandle)
	assert.True(t, IsEncodeError(err))
	_, err = c.Encode(ctx, AvroPayload{Record: sample}, jsonHandle)
	assert.True(t, IsEncodeError(err))
	_, err = c.Encode(ctx, StringPayload{Value: "x"}, avroHandle)
	assert.True(t, IsEncodeError(err))
	_, err = c.Encode(ctx, nil, avroHandle)
	assert.True(t, IsEncodeError(err))
}

func TestDecodeFailures(t *testing.T) {
	c := NewCodec(nil)
	ctx := context.Background()
	data, err := c.Encode(ctx, AvroPayload{Record: sample}, avroHandle)
	require.NoError(t, err)

	tests := map[string]struct {
		data   []byte
		handle sr.Handle
	}{
		"schema id mismatch": {data, sr.Handle{ID: 8, Type: sr.Avro, Schema: testOrderSchema}},
		"shorter than frame": {data[:3], avroHandle},
		"truncated body":     {data[:len(data)-2], avroHandle},
		"bad magic byte":     {append([]byte{0x1}, data[1:]...), avroHandle},
		"trailing garbage":   {append(append([]byte{}, data...), 0x0, 0x0), avroHandle},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := c.Decode(ctx, tt.data, tt.handle, AvroPayload{Record: testOrder{}})
			require.Error(t, err)
			assert.True(t, IsDecodeError(err))
			assert.False(t, errors.Is(err, ErrEncode))
		})
	}

	jsonData, err := c.Encode(ctx, JSONPayload{Document: sample}, jsonHandle)
	require.NoError(t, err)
	_, err = c.Decode(ctx, jsonData, sr.Handle{ID: 10, Type: sr.JSON}, JSONPayload{Document: testOrder{}})
	assert.True(t, IsDecodeError(err))
}

func TestConcurrentEncodeDecode(t *testing.T) {
	c := NewCodec(nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			order := testOrder{ID: int32(i), ClientName: fmt.Sprintf("client-%d", i), Items: []testItem{{SKU: "s", Quantity: 1}}}
			data, err := c.Encode(ctx, AvroPayload{Record: order}, avroHandle)
			assert.NoError(t, err)
			back, err := c.Decode(ctx, data, avroHandle, AvroPayload{Record: testOrder{}})
			assert.NoError(t, err)
			assert.Equal(t, order, back.(AvroPayload).Record)
		}(i)
	}
	wg.Wait()
}
