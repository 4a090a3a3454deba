// Package store provides the durable key/value storage that backs
// per-token client state such as super properties.
package store

import "errors"

// NamespacePrefix is prepended to the token to form a client's namespace.
const NamespacePrefix = "com.rake.android.rkmetrics.RakeAPI_"

// KeySuperProperties is the key holding the serialized super properties.
const KeySuperProperties = "super_properties"

// Store persists string values grouped by namespace.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get retrieves the value stored under (namespace, key).
	// Returns ErrNotFound if nothing is stored there.
	Get(namespace, key string) (string, error)

	// Put stores a value, overwriting any previous one.
	// The write is committed before Put returns.
	Put(namespace, key, value string) error

	// ClearAll removes every key in a namespace.
	// Returns nil if the namespace is empty.
	ClearAll(namespace string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Namespace returns the namespace used for a token.
func Namespace(token string) string {
	return NamespacePrefix + token
}

// Sentinel errors for store operations.
var (
	// ErrNotFound indicates no value exists for the key.
	ErrNotFound = errors.New("store: key not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("store: closed")
)
