// Package env produces the environment snapshot merged into every event:
// library, OS, device, display, network and locale descriptors.
package env

import "maps"

// LibName and LibVersion identify this library in every event.
const (
	LibName    = "go"
	LibVersion = "r0.5.0_go0.1.0"
)

// Unknown is reported for descriptors that could not be determined.
const Unknown = "UNKNOWN"

// Environment property keys.
const (
	KeyLib          = "rake_lib"
	KeyLibVersion   = "rake_lib_version"
	KeyOSName       = "os_name"
	KeyOSVersion    = "os_version"
	KeyManufacturer = "manufacturer"
	KeyDeviceModel  = "device_model"
	KeyDeviceID     = "device_id"
	KeyScreenHeight = "screen_height"
	KeyScreenWidth  = "screen_width"
	KeyResolution   = "resolution"
	KeyAppVersion   = "app_version"
	KeyCarrierName  = "carrier_name"
	KeyNetworkType  = "network_type"
	KeyLanguageCode = "language_code"
)

// Provider produces a fresh environment snapshot on every call.
// Snapshot must not have side effects; callers own the returned map.
type Provider interface {
	Snapshot() map[string]any
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func() map[string]any

// Snapshot implements Provider.
func (f ProviderFunc) Snapshot() map[string]any {
	return f()
}

// Static is a Provider that always reports the same properties.
type Static map[string]any

// Snapshot implements Provider.
func (s Static) Snapshot() map[string]any {
	if s == nil {
		return map[string]any{}
	}
	return maps.Clone(s)
}

// Empty is a Provider that contributes nothing.
var Empty Provider = Static(nil)
