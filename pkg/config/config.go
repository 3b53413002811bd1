// Package config holds the settings a component needs to find its payloads:
// endpoints, retry policy and naming. Values come from defaults, an optional
// JSON or YAML file, and DYNVIEW_* environment variables, in that order.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DYNVIEW_"

const (
	DefaultBaseURL         = "http://localhost:3000"
	DefaultConfigEndpoint  = "/config"
	DefaultDataEndpoint    = "/data"
	DefaultMaxRetries      = 3
	DefaultRetryDelay      = 2 * time.Second
	DefaultTransientStatus = 503
)

// Duration is a time.Duration that decodes from strings such as "2s" or
// from integer milliseconds.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// MarshalJSON encodes the duration as a string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts "2s" or 2000.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case string:
		return d.parse(v)
	case float64:
		*d = Duration(time.Duration(v) * time.Millisecond)
		return nil
	default:
		return fmt.Errorf("config: invalid duration %s", string(data))
	}
}

// MarshalYAML encodes the duration as a string.
func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

// UnmarshalYAML accepts "2s" or 2000.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("config: invalid duration at line %d", node.Line)
	}
	return d.parse(node.Value)
}

func (d *Duration) parse(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		*d = 0
		return nil
	}
	if ms, err := strconv.ParseInt(value, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config describes one component.
type Config struct {
	BaseURL         string   `json:"baseURL" yaml:"baseURL"`
	ConfigEndpoint  string   `json:"configEndpoint" yaml:"configEndpoint"`
	DataEndpoint    string   `json:"dataEndpoint" yaml:"dataEndpoint"`
	MaxRetries      int      `json:"maxRetries" yaml:"maxRetries"`
	RetryDelay      Duration `json:"retryDelay" yaml:"retryDelay"`
	TransientStatus int      `json:"transientStatus" yaml:"transientStatus"`
	RequestTimeout  Duration `json:"requestTimeout" yaml:"requestTimeout"`
	ComponentName   string   `json:"componentName" yaml:"componentName"`
	WatchPhrases    []string `json:"watchPhrases,omitempty" yaml:"watchPhrases,omitempty"`
}

// Default returns the configuration used when nothing else is supplied.
func Default() Config {
	return Config{
		BaseURL:         DefaultBaseURL,
		ConfigEndpoint:  DefaultConfigEndpoint,
		DataEndpoint:    DefaultDataEndpoint,
		MaxRetries:      DefaultMaxRetries,
		RetryDelay:      Duration(DefaultRetryDelay),
		TransientStatus: DefaultTransientStatus,
	}
}

// Load reads path over the defaults. Files ending in .yaml or .yml are
// decoded as YAML, .json as JSON, anything else tries JSON then YAML.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := cfg.decode(data, filepath.Ext(path)); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data over the defaults, JSON first then YAML.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := cfg.decode(data, ""); err != nil {
		return cfg, fmt.Errorf("config: parse: %w", err)
	}
	return cfg, nil
}

func (c *Config) decode(data []byte, ext string) error {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, c)
	case ".json":
		return json.Unmarshal(data, c)
	}
	snapshot := *c
	jsonErr := json.Unmarshal(data, c)
	if jsonErr == nil {
		return nil
	}
	*c = snapshot
	if err := yaml.Unmarshal(data, c); err != nil {
		return jsonErr
	}
	return nil
}

// FromEnv applies DYNVIEW_* overrides read through lookup, which defaults to
// os.LookupEnv.
func (c Config) FromEnv(lookup func(string) (string, bool)) (Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(name string) (string, bool) {
		value, ok := lookup(EnvPrefix + name)
		if !ok {
			return "", false
		}
		return strings.TrimSpace(value), true
	}

	if v, ok := get("BASE_URL"); ok {
		c.BaseURL = v
	}
	if v, ok := get("CONFIG_ENDPOINT"); ok {
		c.ConfigEndpoint = v
	}
	if v, ok := get("DATA_ENDPOINT"); ok {
		c.DataEndpoint = v
	}
	if v, ok := get("COMPONENT_NAME"); ok {
		c.ComponentName = v
	}
	if v, ok := get("MAX_RETRIES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c, fmt.Errorf("config: %sMAX_RETRIES: %w", EnvPrefix, err)
		}
		c.MaxRetries = n
	}
	if v, ok := get("TRANSIENT_STATUS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c, fmt.Errorf("config: %sTRANSIENT_STATUS: %w", EnvPrefix, err)
		}
		c.TransientStatus = n
	}
	if v, ok := get("RETRY_DELAY"); ok {
		if err := c.RetryDelay.parse(v); err != nil {
			return c, err
		}
	}
	if v, ok := get("REQUEST_TIMEOUT"); ok {
		if err := c.RequestTimeout.parse(v); err != nil {
			return c, err
		}
	}
	if v, ok := get("WATCH_PHRASES"); ok {
		c.WatchPhrases = nil
		for _, phrase := range strings.Split(v, ",") {
			if phrase = strings.TrimSpace(phrase); phrase != "" {
				c.WatchPhrases = append(c.WatchPhrases, phrase)
			}
		}
	}
	return c, nil
}

// Validate reports every problem found in c.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.ConfigEndpoint) == "" {
		errs = append(errs, errors.New("config: configEndpoint is required"))
	}
	if strings.TrimSpace(c.DataEndpoint) == "" {
		errs = append(errs, errors.New("config: dataEndpoint is required"))
	}
	if c.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("config: maxRetries must not be negative, got %d", c.MaxRetries))
	}
	if c.RetryDelay < 0 {
		errs = append(errs, fmt.Errorf("config: retryDelay must not be negative, got %s", c.RetryDelay))
	}
	if c.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("config: requestTimeout must not be negative, got %s", c.RequestTimeout))
	}
	if c.TransientStatus < 100 || c.TransientStatus > 599 {
		errs = append(errs, fmt.Errorf("config: transientStatus must be an HTTP status, got %d", c.TransientStatus))
	}
	return errors.Join(errs...)
}
