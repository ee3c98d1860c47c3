package codec

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

func encodeJSON(schema *gojsonschema.Schema, doc interface{}) ([]byte, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, encodeErr("", "marshal json document: %v", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, encodeErr("", "validate json document: %v", err)
	}
	if !result.Valid() {
		first := result.Errors()[0]
		return nil, encodeErr(jsonFieldPath(first), "%s", first.Description())
	}
	return body, nil
}

// decodeJSON unmarshals body into a fresh value of like's dynamic type.
func decodeJSON(body []byte, like interface{}) (interface{}, error) {
	if like == nil {
		var doc map[string]interface{}
		if err := json.Unmarshal(body, &doc); err != nil {
			return nil, decodeErr("unmarshal json document: %v", err)
		}
		return doc, nil
	}

	t := reflect.TypeOf(like)
	if t.Kind() == reflect.Pointer {
		v := reflect.New(t.Elem())
		if err := json.Unmarshal(body, v.Interface()); err != nil {
			return nil, decodeErr("unmarshal json document into %s: %v", t, err)
		}
		return v.Interface(), nil
	}

	v := reflect.New(t)
	if err := json.Unmarshal(body, v.Interface()); err != nil {
		return nil, decodeErr("unmarshal json document into %s: %v", t, err)
	}
	return v.Elem().Interface(), nil
}

// jsonFieldPath returns the dotted path of a validation error, including the
// property name for "required" violations.
func jsonFieldPath(e gojsonschema.ResultError) string {
	var parts []string
	if field := e.Field(); field != "(root)" && field != "" {
		parts = append(parts, field)
	}
	if e.Type() == "required" {
		if property, ok := e.Details()["property"].(string); ok {
			parts = append(parts, property)
		}
	}
	return strings.Join(parts, ".")
}
