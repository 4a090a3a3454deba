package env

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/randalmurphal/rake/pkg/rake/store"
)

// Network types reported in KeyNetworkType.
const (
	NetworkWifi    = "WIFI"
	NetworkNotWifi = "NOT WIFI"
)

// Info describes the host the library runs on. Zero fields are reported
// as Unknown (strings) or 0 (display geometry).
type Info struct {
	AppVersion   string
	OSVersion    string
	Manufacturer string
	DeviceModel  string
	DeviceID     string
	Carrier      string

	// NetworkType is NetworkWifi, NetworkNotWifi or empty.
	NetworkType string

	// Locale is a BCP 47 tag or POSIX locale ("ko_KR.UTF-8").
	Locale string

	ScreenWidth  int
	ScreenHeight int
}

// System reports the descriptors in Info plus values read from the runtime.
// It is immutable after construction.
type System struct {
	props map[string]any
}

// NewSystem builds a System provider from info.
func NewSystem(info Info) *System {
	if info.DeviceModel == "" {
		if host, err := os.Hostname(); err == nil {
			info.DeviceModel = host
		}
	}
	if info.Locale == "" {
		info.Locale = LocaleFromEnv()
	}

	props := map[string]any{
		KeyLib:          LibName,
		KeyLibVersion:   LibVersion,
		KeyOSName:       runtime.GOOS,
		KeyOSVersion:    orUnknown(info.OSVersion),
		KeyManufacturer: orUnknown(info.Manufacturer),
		KeyDeviceModel:  orUnknown(info.DeviceModel),
		KeyDeviceID:     orUnknown(info.DeviceID),
		KeyScreenHeight: info.ScreenHeight,
		KeyScreenWidth:  info.ScreenWidth,
		KeyResolution:   fmt.Sprintf("%d*%d", info.ScreenWidth, info.ScreenHeight),
		KeyAppVersion:   orUnknown(info.AppVersion),
		KeyCarrierName:  orUnknown(info.Carrier),
		KeyNetworkType:  networkType(info.NetworkType),
		KeyLanguageCode: Region(info.Locale),
	}
	return &System{props: props}
}

// Snapshot implements Provider.
func (s *System) Snapshot() map[string]any {
	out := make(map[string]any, len(s.props))
	for k, v := range s.props {
		out[k] = v
	}
	return out
}

func orUnknown(s string) string {
	if s == "" {
		return Unknown
	}
	return s
}

func networkType(s string) string {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case NetworkWifi:
		return NetworkWifi
	case NetworkNotWifi, "NOT_WIFI", "CELLULAR", "ETHERNET":
		return NetworkNotWifi
	default:
		return Unknown
	}
}

// LocaleFromEnv returns the process locale from LC_ALL, LC_MESSAGES or LANG.
func LocaleFromEnv() string {
	for _, name := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(name); v != "" && v != "C" && v != "POSIX" {
			return v
		}
	}
	return ""
}

// Region returns the upper-case country code of a locale, or "" when the
// locale names no region. POSIX suffixes (".UTF-8", "@euro") are ignored.
func Region(locale string) string {
	if i := strings.IndexAny(locale, ".@"); i >= 0 {
		locale = locale[:i]
	}
	locale = strings.ReplaceAll(locale, "_", "-")
	if locale == "" {
		return ""
	}

	tag, err := language.Parse(locale)
	if err != nil {
		return ""
	}
	region, conf := tag.Region()
	if conf != language.Exact {
		return ""
	}
	return region.String()
}

// Device id storage location. DeviceNamespace does not start with
// store.NamespacePrefix, so no token's namespace can equal it.
const (
	DeviceNamespace = "com.rake.android.rkmetrics.Device"
	KeyDeviceIDPref = "device_id"
)

// DeviceID returns the persisted install identifier, generating and
// storing a random one on first use.
func DeviceID(s store.Store) (string, error) {
	id, err := s.Get(DeviceNamespace, KeyDeviceIDPref)
	if err == nil && id != "" {
		return id, nil
	}
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("read device id: %w", err)
	}

	id = uuid.NewString()
	if err := s.Put(DeviceNamespace, KeyDeviceIDPref, id); err != nil {
		return "", fmt.Errorf("store device id: %w", err)
	}
	return id, nil
}
