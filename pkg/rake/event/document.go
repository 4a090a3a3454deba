package event

import (
	"encoding/json"
	"maps"
)

// Reserved property keys set on every document.
const (
	KeyToken     = "token"
	KeyBaseTime  = "base_time"
	KeyLocalTime = "local_time"
)

// Properties is a flat JSON object of event properties.
type Properties map[string]any

// Clone returns a shallow copy of p.
func (p Properties) Clone() Properties {
	if p == nil {
		return Properties{}
	}
	return maps.Clone(p)
}

// Merge copies every key of src into p, overwriting on collision.
func (p Properties) Merge(src map[string]any) {
	for k, v := range src {
		p[k] = v
	}
}

// Document is a fully composed event ready for delivery.
//
// A document with schema metadata always serializes schema_id,
// field_order and encryption_fields, even when they are empty.
type Document struct {
	SchemaID         string         `json:"schema_id,omitempty"`
	FieldOrder       map[string]any `json:"field_order,omitempty"`
	EncryptionFields []any          `json:"encryption_fields,omitempty"`
	Properties       Properties     `json:"properties"`
}

// schemaDocument is the wire form of a Document carrying schema metadata.
type schemaDocument struct {
	SchemaID         string         `json:"schema_id"`
	FieldOrder       map[string]any `json:"field_order"`
	EncryptionFields []any          `json:"encryption_fields"`
	Properties       Properties     `json:"properties"`
}

// plainDocument has Document's fields without its methods.
type plainDocument Document

// HasSchema reports whether the document carries schema metadata.
func (d *Document) HasSchema() bool {
	return d.FieldOrder != nil
}

// MarshalJSON implements json.Marshaler.
func (d Document) MarshalJSON() ([]byte, error) {
	if !d.HasSchema() {
		return json.Marshal(plainDocument(d))
	}
	fields := d.EncryptionFields
	if fields == nil {
		fields = []any{}
	}
	return json.Marshal(schemaDocument{
		SchemaID:         d.SchemaID,
		FieldOrder:       d.FieldOrder,
		EncryptionFields: fields,
		Properties:       d.Properties,
	})
}

// Token returns the token the document was composed for.
func (d *Document) Token() string {
	s, _ := d.Properties[KeyToken].(string)
	return s
}

// Marshal serializes the document to JSON.
func (d *Document) Marshal() ([]byte, error) {
	return json.Marshal(d)
}

// Unmarshal deserializes a document from JSON.
func Unmarshal(data []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	if d.Properties == nil {
		d.Properties = Properties{}
	}
	return &d, nil
}
