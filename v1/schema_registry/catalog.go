package schema_registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/linkedin/goavro/v2"
	"github.com/xeipuuv/gojsonschema"
)

// SchemaType names the serialization format of a schema.
type SchemaType string

const (
	Avro   SchemaType = "AVRO"
	JSON   SchemaType = "JSON"
	String SchemaType = "STRING"
)

// Registered reports whether values of this type are framed with a
// registry schema id. STRING payloads travel as raw bytes.
func (t SchemaType) Registered() bool {
	return t == Avro || t == JSON
}

// ParseSchemaType accepts the type names case-insensitively.
func ParseSchemaType(s string) (SchemaType, error) {
	switch t := SchemaType(strings.ToUpper(strings.TrimSpace(s))); t {
	case Avro, JSON, String:
		return t, nil
	}
	return "", fmt.Errorf("%w: unknown schema type %q", ErrConfig, s)
}

// Role is the slot of a message a schema describes.
type Role string

const (
	RoleKey   Role = "key"
	RoleValue Role = "value"
)

// NamingStrategy derives a registry subject from a topic and a schema.
type NamingStrategy string

const (
	// TopicNameStrategy yields "<topic>-key" and "<topic>-value".
	TopicNameStrategy NamingStrategy = "TOPIC_NAME"

	// RecordNameStrategy yields the fully-qualified record name.
	RecordNameStrategy NamingStrategy = "RECORD_NAME"

	// TopicRecordNameStrategy yields "<topic>-<fully-qualified record name>".
	TopicRecordNameStrategy NamingStrategy = "TOPIC_RECORD_NAME"
)

// Definition is a schema document for one role.
type Definition struct {
	Role   Role
	Type   SchemaType
	Schema string

	recordName string
}

// RecordName is the fully-qualified record name (AVRO) or title (JSON), if any.
func (d Definition) RecordName() string {
	return d.recordName
}

// LoadDefinition reads a schema document from path.
func LoadDefinition(role Role, schemaType SchemaType, path string) (Definition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("%w: read %s schema %q: %v", ErrConfig, role, path, err)
	}
	return Definition{Role: role, Type: schemaType, Schema: string(raw)}, nil
}

// Catalog holds the key and value schema definitions of a run. It is
// read-only once built and safe for concurrent use.
type Catalog struct {
	definitions map[Role]Definition
	problems    map[Role]error
}

// NewCatalog parses every definition. A definition that fails to parse is
// kept as a problem and reported by Definition, SubjectName and Validate;
// only a repeated role is rejected outright.
func NewCatalog(defs ...Definition) (*Catalog, error) {
	c := &Catalog{
		definitions: make(map[Role]Definition, len(defs)),
		problems:    make(map[Role]error),
	}
	for _, d := range defs {
		if _, dup := c.definitions[d.Role]; dup {
			return nil, fmt.Errorf("%w: duplicate %s schema", ErrConfig, d.Role)
		}
		if _, dup := c.problems[d.Role]; dup {
			return nil, fmt.Errorf("%w: duplicate %s schema", ErrConfig, d.Role)
		}
		parsed, err := parseDefinition(d)
		if err != nil {
			c.problems[d.Role] = err
			continue
		}
		c.definitions[d.Role] = parsed
	}
	return c, nil
}

// Validate returns every parse problem of the catalog, or nil.
func (c *Catalog) Validate() error {
	var errs []error
	for _, role := range []Role{RoleKey, RoleValue} {
		if err, ok := c.problems[role]; ok {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Definition returns the parsed definition of role.
func (c *Catalog) Definition(role Role) (Definition, error) {
	if err, ok := c.problems[role]; ok {
		return Definition{}, err
	}
	d, ok := c.definitions[role]
	if !ok {
		return Definition{}, fmt.Errorf("%w: no %s schema defined", ErrConfig, role)
	}
	return d, nil
}

// SubjectName derives the registry subject for role on topic.
// The result depends only on its inputs and the catalog contents.
func (c *Catalog) SubjectName(topic string, role Role, strategy NamingStrategy) (string, error) {
	d, err := c.Definition(role)
	if err != nil {
		return "", err
	}

	switch strategy {
	case TopicNameStrategy, "":
		if topic == "" {
			return "", fmt.Errorf("%w: topic name is empty", ErrConfig)
		}
		return topic + "-" + string(role), nil
	case RecordNameStrategy:
		if d.recordName == "" {
			return "", fmt.Errorf("%w: %s schema has no record name", ErrConfig, role)
		}
		return d.recordName, nil
	case TopicRecordNameStrategy:
		if d.recordName == "" {
			return "", fmt.Errorf("%w: %s schema has no record name", ErrConfig, role)
		}
		if topic == "" {
			return "", fmt.Errorf("%w: topic name is empty", ErrConfig)
		}
		return topic + "-" + d.recordName, nil
	}
	return "", fmt.Errorf("%w: unknown subject naming strategy %q", ErrConfig, strategy)
}

func parseDefinition(d Definition) (Definition, error) {
	switch d.Type {
	case Avro:
		if _, err := goavro.NewCodec(d.Schema); err != nil {
			return d, fmt.Errorf("%w: %s schema is not valid avro: %v", ErrConfig, d.Role, err)
		}
		d.recordName = avroFullName(d.Schema)
	case JSON:
		if _, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(d.Schema)); err != nil {
			return d, fmt.Errorf("%w: %s schema is not valid json schema: %v", ErrConfig, d.Role, err)
		}
		var doc struct {
			Title string `json:"title"`
		}
		if err := json.Unmarshal([]byte(d.Schema), &doc); err == nil {
			d.recordName = doc.Title
		}
	case String:
	default:
		return d, fmt.Errorf("%w: %s schema has unknown type %q", ErrConfig, d.Role, d.Type)
	}
	return d, nil
}

// avroFullName returns namespace.name of a named avro schema, "" otherwise.
func avroFullName(schema string) string {
	var named struct {
		Name      string `json:"name"`
		Namespace string `json:"namespace"`
	}
	if err := json.Unmarshal([]byte(schema), &named); err != nil || named.Name == "" {
		return ""
	}
	if strings.Contains(named.Name, ".") || named.Namespace == "" {
		return named.Name
	}
	return named.Namespace + "." + named.Name
}
