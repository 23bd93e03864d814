package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPath is the default config path.
const DefaultConfigPath = "/etc/aquamon/aquamon.yaml"

// configSearchPaths lists config file paths to try, in priority order.
// A Datadog aqua.d/conf.yaml uses the same instances layout and loads as-is.
var configSearchPaths = []string{
	"/etc/aquamon/aquamon.yaml",
	"/etc/aquamon.yaml",
	"/etc/datadog-agent/conf.d/aqua.d/conf.yaml", // original Datadog check layout
}

// FindConfigPath returns the first existing config file from the search paths.
// If none exist, it returns DefaultConfigPath (which will fail with a clear error).
func FindConfigPath() string {
	for _, path := range configSearchPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return DefaultConfigPath
}

// Config holds all configuration values for aquamon.
type Config struct {
	Instances  []Instance       `koanf:"instances"`
	Collector  CollectorConfig  `koanf:"collector"`
	Dogstatsd  DogstatsdConfig  `koanf:"dogstatsd"`
	Prometheus PrometheusConfig `koanf:"prometheus"`
	Zabbix     ZabbixConfig     `koanf:"zabbix"`
	Telemetry  TelemetryConfig  `koanf:"telemetry"`
}

// Instance describes one Aqua console to poll. URL, APIUser and Password are
// required for a poll cycle to run; the other fields are optional.
type Instance struct {
	Name               string   `koanf:"name"`
	URL                string   `koanf:"url"`
	APIUser            string   `koanf:"api_user"`
	Password           string   `koanf:"password"`
	CredentialsProfile string   `koanf:"credentials_profile"`
	Tags               []string `koanf:"tags"`
	Timeout            int      `koanf:"timeout"`
	InsecureSkipVerify bool     `koanf:"insecure_skip_verify"`
}

// CollectorConfig holds poll scheduling parameters.
type CollectorConfig struct {
	Interval        int    `koanf:"interval"`
	Workers         int    `koanf:"workers"`
	Timeout         int    `koanf:"timeout"`
	CredentialsFile string `koanf:"credentials_file"`
}

// DogstatsdConfig holds the DogStatsD output settings.
type DogstatsdConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// PrometheusConfig holds the Prometheus exposition settings.
type PrometheusConfig struct {
	Enabled bool   `koanf:"enabled"`
	Listen  string `koanf:"listen"`
}

// ZabbixConfig holds the Zabbix trapper output settings. Server, Port and
// SenderPath drive the zabbix_sender pushes; the api_* fields are only used
// by `aquamon prepare` to provision hosts and trapper items.
type ZabbixConfig struct {
	Enabled     bool   `koanf:"enabled"`
	Server      string `koanf:"server"`
	Port        int    `koanf:"port"`
	SenderPath  string `koanf:"sender_path"`
	APIURL      string `koanf:"api_url"`
	APIUser     string `koanf:"api_user"`
	APIPassword string `koanf:"api_password"`
	HostGroup   string `koanf:"host_group"`
}

// TelemetryConfig holds OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled      bool   `koanf:"enabled"`
	OTLPEndpoint string `koanf:"otlp_endpoint"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Collector: CollectorConfig{
			Interval: 15,
			Workers:  4,
			Timeout:  10,
		},
		Dogstatsd: DogstatsdConfig{
			Enabled: true,
			Addr:    "127.0.0.1:8125",
		},
		Prometheus: PrometheusConfig{
			Enabled: false,
			Listen:  ":9099",
		},
		Zabbix: ZabbixConfig{
			Enabled:    false,
			Port:       10051,
			SenderPath: "zabbix_sender",
			HostGroup:  "Aqua CSP",
		},
		Telemetry: TelemetryConfig{
			Enabled: false,
		},
	}
}

// ConfigError reports a required Aqua instance field that is not set.
// It is returned before any network I/O happens for the instance.
type ConfigError struct {
	Field string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("aqua instance missing required field %q", e.Field)
}

// Load reads configuration from a YAML file. Environment variables
// (AQUAMON_ prefix) always override file values. Instances referencing a
// credentials profile are resolved against collector.credentials_file.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config file: %w", err)
	}

	if err := loadEnvOverrides(k); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.normalizeInstances()

	if err := resolveCredentials(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// --- helpers ---

func loadDefaults(k *koanf.Koanf) error {
	defaults := DefaultConfig()
	return k.Load(confmap.Provider(map[string]interface{}{
		"collector.interval": defaults.Collector.Interval,
		"collector.workers":  defaults.Collector.Workers,
		"collector.timeout":  defaults.Collector.Timeout,
		"dogstatsd.enabled":  defaults.Dogstatsd.Enabled,
		"dogstatsd.addr":     defaults.Dogstatsd.Addr,
		"prometheus.enabled": defaults.Prometheus.Enabled,
		"prometheus.listen":  defaults.Prometheus.Listen,
		"zabbix.enabled":     defaults.Zabbix.Enabled,
		"zabbix.port":        defaults.Zabbix.Port,
		"zabbix.sender_path": defaults.Zabbix.SenderPath,
		"zabbix.host_group":  defaults.Zabbix.HostGroup,
		"telemetry.enabled":  defaults.Telemetry.Enabled,
	}, "."), nil)
}

func loadEnvOverrides(k *koanf.Koanf) error {
	// AQUAMON_COLLECTOR_INTERVAL → collector.interval
	return k.Load(env.Provider("AQUAMON_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "AQUAMON_")
		s = strings.ToLower(s)
		if idx := strings.Index(s, "_"); idx >= 0 {
			return s[:idx] + "." + s[idx+1:]
		}
		return s
	}), nil)
}

// normalizeInstances fills derived instance fields: a display name from the
// console URL host when name is unset, and the collector-wide login timeout
// when the instance has none.
func (c *Config) normalizeInstances() {
	for i := range c.Instances {
		inst := &c.Instances[i]
		if inst.Name == "" && inst.URL != "" {
			if u, err := url.Parse(inst.URL); err == nil && u.Host != "" {
				inst.Name = u.Host
			}
		}
		if inst.Timeout <= 0 {
			inst.Timeout = c.Collector.Timeout
		}
	}
}

// Validate checks structural settings: scheduling values, output backends and
// instance URLs. It does NOT require api_user/password on instances — those
// are checked per poll cycle by Instance.Validate, so one broken instance
// cannot keep the others from running.
func (c *Config) Validate() error {
	var errs []error

	if len(c.Instances) == 0 {
		errs = append(errs, fmt.Errorf("at least one entry under instances is required"))
	}
	for i := range c.Instances {
		inst := &c.Instances[i]
		if inst.URL == "" {
			continue
		}
		u, err := url.Parse(inst.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("instances[%d].url must be a valid URL with scheme and host", i))
		}
	}

	if c.Collector.Interval <= 0 {
		errs = append(errs, fmt.Errorf("collector.interval must be greater than 0, got %d", c.Collector.Interval))
	}
	if c.Collector.Workers <= 0 {
		errs = append(errs, fmt.Errorf("collector.workers must be greater than 0, got %d", c.Collector.Workers))
	}
	if c.Collector.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("collector.timeout must be greater than 0, got %d", c.Collector.Timeout))
	}
	if c.Dogstatsd.Enabled && c.Dogstatsd.Addr == "" {
		errs = append(errs, fmt.Errorf("dogstatsd.addr is required when dogstatsd.enabled is true"))
	}
	if c.Prometheus.Enabled && c.Prometheus.Listen == "" {
		errs = append(errs, fmt.Errorf("prometheus.listen is required when prometheus.enabled is true"))
	}
	if c.Zabbix.Enabled {
		if c.Zabbix.Server == "" {
			errs = append(errs, fmt.Errorf("zabbix.server is required when zabbix.enabled is true"))
		}
		if c.Zabbix.Port <= 0 || c.Zabbix.Port > 65535 {
			errs = append(errs, fmt.Errorf("zabbix.port must be a valid port, got %d", c.Zabbix.Port))
		}
	}

	return errors.Join(errs...)
}

// Validate checks that the fields required to poll this instance are set.
// Missing fields are reported as ConfigError values joined together.
func (i *Instance) Validate() error {
	var errs []error

	if i.URL == "" {
		errs = append(errs, &ConfigError{Field: "url"})
	}
	if i.APIUser == "" {
		errs = append(errs, &ConfigError{Field: "api_user"})
	}
	if i.Password == "" {
		errs = append(errs, &ConfigError{Field: "password"})
	}

	return errors.Join(errs...)
}
