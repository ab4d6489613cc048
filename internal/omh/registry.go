package omh

// ChunkSize is the platform-wide maximum number of points served per read.
const ChunkSize = 2000

// Field types used by payload definitions. Health Graph quotes almost
// everything, so most fields are strings even when they look numeric.
const (
	FieldString = "string"
	FieldNumber = "number"
)

// Field describes one named field of a payload definition.
type Field struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Definition is the schema of the data block served for an endpoint.
type Definition struct {
	Type   string  `json:"type"`
	Schema []Field `json:"schema"`
}

// ObjectDefinition builds an object Definition over the given fields.
func ObjectDefinition(fields ...Field) Definition {
	return Definition{Type: "object", Schema: fields}
}

// RegistryEntry is the shared schema-registry contract the platform consumes
// to discover readable payloads.
type RegistryEntry struct {
	ChunkSize            int        `json:"chunk_size"`
	LocalTzAuthoritative bool       `json:"local_tz_authoritative"`
	Summarizable         bool       `json:"summarizable"`
	PayloadID            string     `json:"payload_id"`
	PayloadVersion       string     `json:"payload_version"`
	PayloadDefinition    Definition `json:"payload_definition"`
}

// NewRegistryEntry builds the registry entry for an endpoint under the given
// payload identifier.
func NewRegistryEntry(payloadID string, endpoint Endpoint) RegistryEntry {
	return RegistryEntry{
		ChunkSize:            ChunkSize,
		LocalTzAuthoritative: true,
		Summarizable:         false,
		PayloadID:            payloadID,
		PayloadVersion:       "1",
		PayloadDefinition:    endpoint.Definition(),
	}
}
