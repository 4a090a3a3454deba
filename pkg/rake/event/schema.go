package event

import "fmt"

// Keys of the schema metadata object attached to tracked properties.
const (
	KeySchemaMeta       = "sentinel_meta"
	KeySchemaID         = "_$ssSchemaId"
	KeyFieldOrder       = "_$ssFieldOrder"
	KeyEncryptionFields = "_$encryptionFields"
)

// SchemaMeta is the schema directive lifted out of an event's properties.
type SchemaMeta struct {
	ID               string
	FieldOrder       map[string]any
	EncryptionFields []any
}

// SchemaError reports malformed schema metadata.
type SchemaError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema metadata: %s: %s", e.Field, e.Message)
}

// ExtractSchema removes the schema metadata from props and returns it.
// Returns (nil, nil) when props carries no metadata. A present but
// malformed entry is an error; props is left untouched in that case.
func ExtractSchema(props Properties) (*SchemaMeta, error) {
	raw, ok := props[KeySchemaMeta]
	if !ok {
		return nil, nil
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, &SchemaError{Field: KeySchemaMeta, Message: fmt.Sprintf("expected object, got %T", raw)}
	}

	id, ok := obj[KeySchemaID].(string)
	if !ok {
		return nil, &SchemaError{Field: KeySchemaID, Message: "missing or not a string"}
	}

	order, ok := obj[KeyFieldOrder].(map[string]any)
	if !ok {
		return nil, &SchemaError{Field: KeyFieldOrder, Message: "missing or not an object"}
	}

	fields, err := toList(obj[KeyEncryptionFields])
	if err != nil {
		return nil, err
	}

	delete(props, KeySchemaMeta)
	return &SchemaMeta{
		ID:               id,
		FieldOrder:       order,
		EncryptionFields: fields,
	}, nil
}

func toList(v any) ([]any, error) {
	switch list := v.(type) {
	case []any:
		return list, nil
	case []string:
		out := make([]any, len(list))
		for i, s := range list {
			out[i] = s
		}
		return out, nil
	default:
		return nil, &SchemaError{Field: KeyEncryptionFields, Message: "missing or not an array"}
	}
}

// Allows reports whether an environment property may be merged.
// A nil SchemaMeta allows everything.
func (m *SchemaMeta) Allows(key string) bool {
	if m == nil {
		return true
	}
	_, ok := m.FieldOrder[key]
	return ok
}

// Apply copies the metadata onto the top level of doc.
func (m *SchemaMeta) Apply(doc *Document) {
	if m == nil {
		return
	}
	doc.SchemaID = m.ID
	doc.FieldOrder = m.FieldOrder
	doc.EncryptionFields = m.EncryptionFields
}
