// Package event defines the event document handed to the delivery queue
// and the schema metadata that may accompany a tracked event.
//
// A Document is immutable once composed. Its Properties carry the token,
// both timestamps, the super properties, the caller's properties and the
// environment snapshot. When the caller attaches schema metadata under the
// reserved "sentinel_meta" key, the metadata is lifted out of the
// properties and serialized at the top level of the document:
//
//	{
//	  "schema_id": "abc",
//	  "field_order": {"event": 0, "plan": 1},
//	  "encryption_fields": ["device_id"],
//	  "properties": {"token": "...", "base_time": "...", ...}
//	}
//
// The field order doubles as an allow-list for environment properties;
// see SchemaMeta.Allows.
package event
