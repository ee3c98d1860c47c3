package harness

import (
	"embed"
	"fmt"

	sr "github.com/Aleph-Alpha/kafka-roundtrip/v1/schema_registry"
)

//go:embed schemas
var embeddedSchemas embed.FS

// LoadCatalog builds the schema catalog of a run: the configured schema
// files, or the embedded order schemas of the configured types.
func LoadCatalog(cfg Config) (*sr.Catalog, error) {
	cfg = cfg.withDefaults()

	keyType, err := sr.ParseSchemaType(cfg.KeySchemaType)
	if err != nil {
		return nil, err
	}
	valueType, err := sr.ParseSchemaType(cfg.ValueSchemaType)
	if err != nil {
		return nil, err
	}

	key, err := loadDefinition(sr.RoleKey, keyType, cfg.KeySchemaPath, "order-key")
	if err != nil {
		return nil, err
	}
	value, err := loadDefinition(sr.RoleValue, valueType, cfg.ValueSchemaPath, "order-value")
	if err != nil {
		return nil, err
	}
	return sr.NewCatalog(key, value)
}

func loadDefinition(role sr.Role, schemaType sr.SchemaType, path, name string) (sr.Definition, error) {
	if schemaType == sr.String {
		return sr.Definition{Role: role, Type: schemaType}, nil
	}
	if path != "" {
		return sr.LoadDefinition(role, schemaType, path)
	}

	ext := ".avsc"
	if schemaType == sr.JSON {
		ext = ".json"
	}
	raw, err := embeddedSchemas.ReadFile("schemas/" + name + ext)
	if err != nil {
		return sr.Definition{}, fmt.Errorf("%w: embedded %s schema: %v", sr.ErrConfig, role, err)
	}
	return sr.Definition{Role: role, Type: schemaType, Schema: string(raw)}, nil
}
