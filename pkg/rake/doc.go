/*
Package rake records structured analytics events.

# Overview

Applications obtain a Client per token from a Registry and call Track with
ad-hoc properties. Each call composes an event document from four layers
and hands it to a delivery queue, which batches and sends documents in the
background. Track never blocks on the network and never reports failure to
the caller: an event that cannot be composed is logged and dropped.

# Basic Usage

	reg := rake.NewRegistry(
	    rake.WithStore(sqliteStore),
	    rake.WithEnvironment(env.NewSystem(env.Info{AppVersion: "1.4.0"})),
	)
	defer reg.Close(context.Background())

	client := reg.GetInstance("my-app", "token-abc", false)
	client.RegisterSuperProperties(map[string]any{"plan": "free"})
	client.Track(map[string]any{"event": "upgrade", "plan": "pro"})

# Property Precedence

Properties are merged lowest to highest:

 1. token, base_time and local_time
 2. super properties
 3. properties passed to Track
 4. the environment snapshot

The environment wins over caller values of the same name. base_time is
rendered in Korea Standard Time and local_time in the local zone, both as
yyyyMMddHHmmssSSS.

# Super Properties

Super properties are merged into every event and survive restarts. Every
mutation is written through to the store before the call returns:

	client.RegisterSuperProperties(map[string]any{"plan": "pro"})     // overwrite
	client.RegisterSuperPropertiesOnce(map[string]any{"cohort": "a"}) // only if absent
	client.UnregisterSuperProperty("cohort")
	client.ClearSuperProperties()

A stored document that cannot be parsed is replaced by an empty one.

# Schema Metadata

Events may carry a schema directive under the reserved "sentinel_meta" key:

	client.Track(map[string]any{
	    "event": "purchase",
	    "sentinel_meta": map[string]any{
	        "_$ssSchemaId":      "purchase-v2",
	        "_$ssFieldOrder":    map[string]any{"event": 0, "app_version": 1},
	        "_$encryptionFields": []any{"device_id"},
	    },
	})

The directive is moved to the top level of the document as schema_id,
field_order and encryption_fields, and only environment properties named in
the field order are merged.

# Instances

Registry.GetInstance returns the same *Client for the same scope and token,
even when called concurrently. The dev-server flag is fixed by the first
call; later calls with a different flag get the existing client.
*/
package rake
