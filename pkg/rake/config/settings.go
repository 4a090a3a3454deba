package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/randalmurphal/rake/pkg/rake/delivery"
	"github.com/randalmurphal/rake/pkg/rake/env"
	"github.com/randalmurphal/rake/pkg/rake/retry"
)

// ErrInvalidSettings is wrapped by every error returned from Validate.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings is the file form of a rake client configuration.
type Settings struct {
	// Token identifies the client. Required.
	Token string `yaml:"token" json:"token"`

	// DevServer selects DevEndpoint instead of Endpoint.
	DevServer bool `yaml:"dev_server" json:"dev_server"`

	Endpoint    string `yaml:"endpoint" json:"endpoint"`
	DevEndpoint string `yaml:"dev_endpoint" json:"dev_endpoint"`

	FlushInterval time.Duration `yaml:"flush_interval" json:"flush_interval"`
	BatchSize     int           `yaml:"batch_size" json:"batch_size"`
	QueueSize     int           `yaml:"queue_size" json:"queue_size"`

	// MaxRetries is the number of resends after a transient failure.
	MaxRetries int `yaml:"max_retries" json:"max_retries"`

	Debug bool `yaml:"debug" json:"debug"`

	// StorePath is the SQLite database holding super properties.
	// Empty keeps them in memory only.
	StorePath string `yaml:"store_path" json:"store_path"`

	AppVersion   string `yaml:"app_version" json:"app_version"`
	DeviceID     string `yaml:"device_id" json:"device_id"`
	ScreenWidth  int    `yaml:"screen_width" json:"screen_width"`
	ScreenHeight int    `yaml:"screen_height" json:"screen_height"`
	Carrier      string `yaml:"carrier" json:"carrier"`
	NetworkType  string `yaml:"network_type" json:"network_type"`
	Locale       string `yaml:"locale" json:"locale"`
}

// Defaults returns the settings used for fields a file leaves out.
func Defaults() Settings {
	return Settings{
		Endpoint:      delivery.LiveEndpoint,
		DevEndpoint:   delivery.DevEndpoint,
		FlushInterval: delivery.DefaultConfig.FlushInterval,
		BatchSize:     delivery.DefaultConfig.BatchSize,
		QueueSize:     delivery.DefaultConfig.QueueSize,
		MaxRetries:    retry.Default.MaxAttempts - 1,
	}
}

// Validate reports the first problem with s.
func (s Settings) Validate() error {
	if s.Token == "" {
		return fmt.Errorf("%w: token is required", ErrInvalidSettings)
	}
	if err := checkURL("endpoint", s.Endpoint); err != nil {
		return err
	}
	if err := checkURL("dev_endpoint", s.DevEndpoint); err != nil {
		return err
	}
	if s.FlushInterval <= 0 {
		return fmt.Errorf("%w: flush_interval must be positive, got %s", ErrInvalidSettings, s.FlushInterval)
	}
	if s.BatchSize <= 0 {
		return fmt.Errorf("%w: batch_size must be positive, got %d", ErrInvalidSettings, s.BatchSize)
	}
	if s.QueueSize <= 0 {
		return fmt.Errorf("%w: queue_size must be positive, got %d", ErrInvalidSettings, s.QueueSize)
	}
	if s.MaxRetries < 0 {
		return fmt.Errorf("%w: max_retries must not be negative, got %d", ErrInvalidSettings, s.MaxRetries)
	}
	if s.ScreenWidth < 0 || s.ScreenHeight < 0 {
		return fmt.Errorf("%w: screen dimensions must not be negative", ErrInvalidSettings)
	}
	switch s.NetworkType {
	case "", env.NetworkWifi, env.NetworkNotWifi:
	default:
		return fmt.Errorf("%w: network_type must be %q or %q, got %q",
			ErrInvalidSettings, env.NetworkWifi, env.NetworkNotWifi, s.NetworkType)
	}
	return nil
}

func checkURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %s must be an http(s) URL, got %q", ErrInvalidSettings, field, raw)
	}
	return nil
}

// ActiveEndpoint returns the collector URL selected by DevServer.
func (s Settings) ActiveEndpoint() string {
	if s.DevServer {
		return s.DevEndpoint
	}
	return s.Endpoint
}

// Delivery returns the batch queue configuration described by s.
// Logger, Metrics and Spans are left for the caller to set.
func (s Settings) Delivery() delivery.Config {
	cfg := delivery.DefaultConfig
	cfg.Endpoint = s.ActiveEndpoint()
	cfg.FlushInterval = s.FlushInterval
	cfg.BatchSize = s.BatchSize
	cfg.QueueSize = s.QueueSize
	cfg.Retry.MaxAttempts = s.MaxRetries + 1
	return cfg
}

// Environment returns the host descriptors described by s.
func (s Settings) Environment() env.Info {
	return env.Info{
		AppVersion:   s.AppVersion,
		DeviceID:     s.DeviceID,
		Carrier:      s.Carrier,
		NetworkType:  s.NetworkType,
		Locale:       s.Locale,
		ScreenWidth:  s.ScreenWidth,
		ScreenHeight: s.ScreenHeight,
	}
}
