package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FromFile loads settings from a file, auto-detecting format by extension.
// Supported extensions: .yaml, .yml, .json
func FromFile(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("read config file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return FromYAML(data)
	case ".json":
		return FromJSON(data)
	default:
		return Settings{}, fmt.Errorf("unsupported config file extension: %s", ext)
	}
}

// FromYAML parses YAML data over Defaults().
func FromYAML(data []byte) (Settings, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Settings{}, fmt.Errorf("parse yaml: %w", err)
	}
	return FromMap(m)
}

// FromJSON parses JSON data over Defaults().
func FromJSON(data []byte) (Settings, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return Settings{}, fmt.Errorf("parse json: %w", err)
	}
	return FromMap(m)
}

// FromMap reads settings from a decoded document over Defaults().
// Unknown keys are ignored.
func FromMap(m map[string]any) (Settings, error) {
	s := Defaults()
	v := values(m)

	errs := []error{
		v.stringField("token", &s.Token),
		v.boolField("dev_server", &s.DevServer),
		v.stringField("endpoint", &s.Endpoint),
		v.stringField("dev_endpoint", &s.DevEndpoint),
		v.durationField("flush_interval", &s.FlushInterval),
		v.intField("batch_size", &s.BatchSize),
		v.intField("queue_size", &s.QueueSize),
		v.intField("max_retries", &s.MaxRetries),
		v.boolField("debug", &s.Debug),
		v.stringField("store_path", &s.StorePath),
		v.stringField("app_version", &s.AppVersion),
		v.stringField("device_id", &s.DeviceID),
		v.intField("screen_width", &s.ScreenWidth),
		v.intField("screen_height", &s.ScreenHeight),
		v.stringField("carrier", &s.Carrier),
		v.stringField("network_type", &s.NetworkType),
		v.stringField("locale", &s.Locale),
	}
	if err := errors.Join(errs...); err != nil {
		return Settings{}, err
	}
	return s, nil
}
