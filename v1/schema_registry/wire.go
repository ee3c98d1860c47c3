package schema_registry

import (
	"encoding/binary"
	"fmt"
)

const (
	// MagicByte opens every Confluent-framed payload.
	MagicByte byte = 0x0

	// HeaderSize is the magic byte plus the 4-byte schema id.
	HeaderSize = 5
)

// EncodeSchemaID encodes a schema ID in the Confluent wire format
// Format: [magic_byte][schema_id]
// - magic_byte: 0x0 (1 byte)
// - schema_id: 4 bytes (big-endian)
func EncodeSchemaID(schemaID int) []byte {
	buf := make([]byte, HeaderSize)
	buf[0] = MagicByte
	binary.BigEndian.PutUint32(buf[1:], uint32(schemaID))
	return buf
}

// Frame prefixes payload with the wire-format header of schemaID.
func Frame(schemaID int, payload []byte) []byte {
	out := make([]byte, 0, HeaderSize+len(payload))
	out = append(out, EncodeSchemaID(schemaID)...)
	return append(out, payload...)
}

// DecodeSchemaID decodes a schema ID from the Confluent wire format
// Returns the schema ID and the remaining payload (after the 5-byte header)
func DecodeSchemaID(data []byte) (int, []byte, error) {
	if len(data) < HeaderSize {
		return 0, nil, fmt.Errorf("%w: expected at least %d bytes, got %d", ErrWireFormat, HeaderSize, len(data))
	}

	if data[0] != MagicByte {
		return 0, nil, fmt.Errorf("%w: invalid magic byte 0x%x", ErrWireFormat, data[0])
	}

	schemaID := int(binary.BigEndian.Uint32(data[1:HeaderSize]))
	return schemaID, data[HeaderSize:], nil
}
