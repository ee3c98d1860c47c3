package codec

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/linkedin/goavro/v2"
)

// avroSchema is a compiled record schema plus its top-level field list.
type avroSchema struct {
	codec  *goavro.Codec
	fields []avroField
}

type avroField struct {
	name       string
	hasDefault bool
}

var goavroFieldPattern = regexp.MustCompile(`field "([^"]+)"`)

func newAvroSchema(text string) (*avroSchema, error) {
	codec, err := goavro.NewCodec(text)
	if err != nil {
		return nil, fmt.Errorf("failed to create Avro codec: %w", err)
	}

	var record struct {
		Type   interface{} `json:"type"`
		Fields []struct {
			Name    string          `json:"name"`
			Default json.RawMessage `json:"default"`
		} `json:"fields"`
	}
	if err := json.Unmarshal([]byte(text), &record); err != nil || record.Type != "record" {
		return nil, fmt.Errorf("avro schema is not a record")
	}

	s := &avroSchema{codec: codec}
	for _, f := range record.Fields {
		s.fields = append(s.fields, avroField{name: f.Name, hasDefault: len(f.Default) > 0})
	}
	return s, nil
}

// encode checks native against the record's fields and encodes it.
func (s *avroSchema) encode(native map[string]interface{}) ([]byte, error) {
	known := make(map[string]struct{}, len(s.fields))
	for _, f := range s.fields {
		known[f.name] = struct{}{}
		if _, ok := native[f.name]; !ok && !f.hasDefault {
			return nil, encodeErr(f.name, "missing from payload")
		}
	}
	for name := range native {
		if _, ok := known[name]; !ok {
			return nil, encodeErr(name, "not part of the schema")
		}
	}

	body, err := s.codec.BinaryFromNative(nil, native)
	if err != nil {
		return nil, encodeErr(fieldFromGoavro(err), "%v", err)
	}
	return body, nil
}

func (s *avroSchema) decode(body []byte) (map[string]interface{}, error) {
	native, rest, err := s.codec.NativeFromBinary(body)
	if err != nil {
		return nil, decodeErr("failed to decode Avro data: %v", err)
	}
	if len(rest) > 0 {
		return nil, decodeErr("%d trailing bytes after Avro record", len(rest))
	}
	record, ok := native.(map[string]interface{})
	if !ok {
		return nil, decodeErr("expected Avro record, got %T", native)
	}
	return record, nil
}

// fieldFromGoavro extracts the nested field path goavro reports, e.g.
// `... field "items": ... field "quantity": ...` becomes "items.quantity".
func fieldFromGoavro(err error) string {
	matches := goavroFieldPattern.FindAllStringSubmatch(err.Error(), -1)
	path := make([]string, 0, len(matches))
	for _, m := range matches {
		path = append(path, m[1])
	}
	return strings.Join(path, ".")
}
