package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Collector.Interval != 15 {
		t.Errorf("Interval = %d, want 15", cfg.Collector.Interval)
	}
	if cfg.Collector.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Collector.Workers)
	}
	if cfg.Collector.Timeout != 10 {
		t.Errorf("Timeout = %d, want 10", cfg.Collector.Timeout)
	}
	if cfg.Dogstatsd.Enabled != true {
		t.Error("Dogstatsd.Enabled should default to true")
	}
	if cfg.Dogstatsd.Addr != "127.0.0.1:8125" {
		t.Errorf("Dogstatsd.Addr = %q, want 127.0.0.1:8125", cfg.Dogstatsd.Addr)
	}
	if cfg.Prometheus.Enabled != false {
		t.Error("Prometheus.Enabled should default to false")
	}
	if cfg.Zabbix.Enabled != false {
		t.Error("Zabbix.Enabled should default to false")
	}
	if cfg.Zabbix.Port != 10051 {
		t.Errorf("Zabbix.Port = %d, want 10051", cfg.Zabbix.Port)
	}
	if cfg.Zabbix.SenderPath != "zabbix_sender" {
		t.Errorf("Zabbix.SenderPath = %q, want zabbix_sender", cfg.Zabbix.SenderPath)
	}
	if cfg.Zabbix.HostGroup != "Aqua CSP" {
		t.Errorf("Zabbix.HostGroup = %q, want Aqua CSP", cfg.Zabbix.HostGroup)
	}
	if cfg.Telemetry.Enabled != false {
		t.Error("Telemetry.Enabled should default to false")
	}
}

func TestValidate(t *testing.T) {
	validConfig := func() *Config {
		cfg := DefaultConfig()
		cfg.Instances = []Instance{
			{Name: "prod", URL: "https://aqua.example.com", APIUser: "admin", Password: "secret"},
		}
		return cfg
	}

	t.Run("valid config", func(t *testing.T) {
		cfg := validConfig()
		if err := cfg.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("no instances", func(t *testing.T) {
		cfg := DefaultConfig()
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), "instances") {
			t.Errorf("expected instances error, got: %v", err)
		}
	})

	t.Run("missing credentials not checked by Validate", func(t *testing.T) {
		cfg := validConfig()
		cfg.Instances[0].APIUser = ""
		cfg.Instances[0].Password = ""
		// Validate() does not require api_user/password — those are checked
		// per poll cycle by Instance.Validate.
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() should not fail on missing instance credentials: %v", err)
		}
	})

	t.Run("invalid instance url", func(t *testing.T) {
		cfg := validConfig()
		cfg.Instances[0].URL = "not-a-url"
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), "url") {
			t.Errorf("expected url error, got: %v", err)
		}
	})

	t.Run("invalid interval", func(t *testing.T) {
		cfg := validConfig()
		cfg.Collector.Interval = 0
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), "interval") {
			t.Errorf("expected interval error, got: %v", err)
		}
	})

	t.Run("invalid workers", func(t *testing.T) {
		cfg := validConfig()
		cfg.Collector.Workers = 0
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), "workers") {
			t.Errorf("expected workers error, got: %v", err)
		}
	})

	t.Run("invalid timeout", func(t *testing.T) {
		cfg := validConfig()
		cfg.Collector.Timeout = -1
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), "timeout") {
			t.Errorf("expected timeout error, got: %v", err)
		}
	})

	t.Run("dogstatsd enabled without addr", func(t *testing.T) {
		cfg := validConfig()
		cfg.Dogstatsd.Addr = ""
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), "dogstatsd.addr") {
			t.Errorf("expected dogstatsd.addr error, got: %v", err)
		}
	})

	t.Run("prometheus enabled without listen", func(t *testing.T) {
		cfg := validConfig()
		cfg.Prometheus.Enabled = true
		cfg.Prometheus.Listen = ""
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), "prometheus.listen") {
			t.Errorf("expected prometheus.listen error, got: %v", err)
		}
	})

	t.Run("zabbix enabled without server", func(t *testing.T) {
		cfg := validConfig()
		cfg.Zabbix.Enabled = true
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), "zabbix.server") {
			t.Errorf("expected zabbix.server error, got: %v", err)
		}
	})

	t.Run("zabbix invalid port", func(t *testing.T) {
		cfg := validConfig()
		cfg.Zabbix.Enabled = true
		cfg.Zabbix.Server = "zabbix.example.com"
		cfg.Zabbix.Port = 0
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), "zabbix.port") {
			t.Errorf("expected zabbix.port error, got: %v", err)
		}
	})

	t.Run("zabbix disabled skips backend checks", func(t *testing.T) {
		cfg := validConfig()
		cfg.Zabbix.Server = ""
		cfg.Zabbix.Port = 0
		if err := cfg.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("multiple errors at once", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Collector.Workers = 0
		err := cfg.Validate()
		if err == nil {
			t.Fatal("expected error")
		}
		errStr := err.Error()
		if !strings.Contains(errStr, "instances") {
			t.Error("expected instances error in combined output")
		}
		if !strings.Contains(errStr, "workers") {
			t.Error("expected workers error in combined output")
		}
	})
}

func TestInstanceValidate(t *testing.T) {
	validInstance := func() Instance {
		return Instance{
			URL:      "https://aqua.example.com",
			APIUser:  "admin",
			Password: "secret",
		}
	}

	t.Run("valid instance", func(t *testing.T) {
		inst := validInstance()
		if err := inst.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	fields := []struct {
		name  string
		unset func(*Instance)
	}{
		{"url", func(i *Instance) { i.URL = "" }},
		{"api_user", func(i *Instance) { i.APIUser = "" }},
		{"password", func(i *Instance) { i.Password = "" }},
	}
	for _, f := range fields {
		t.Run("missing "+f.name, func(t *testing.T) {
			inst := validInstance()
			f.unset(&inst)
			err := inst.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigError, got %T: %v", err, err)
			}
			if cfgErr.Field != f.name {
				t.Errorf("Field = %q, want %q", cfgErr.Field, f.name)
			}
		})
	}

	t.Run("multiple missing fields joined", func(t *testing.T) {
		inst := Instance{URL: "https://aqua.example.com"}
		err := inst.Validate()
		if err == nil {
			t.Fatal("expected error")
		}
		errStr := err.Error()
		if !strings.Contains(errStr, "api_user") {
			t.Error("expected api_user in combined output")
		}
		if !strings.Contains(errStr, "password") {
			t.Error("expected password in combined output")
		}
	})
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aquamon.yaml")

	content := `
instances:
  - name: prod
    url: "https://aqua.example.com:8080"
    api_user: admin
    password: secret
    tags:
      - env:prod
      - team:platform
collector:
  interval: 30
  workers: 8
dogstatsd:
  addr: "127.0.0.1:9125"
prometheus:
  enabled: true
  listen: ":9100"
zabbix:
  enabled: true
  server: zabbix.example.com
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if len(cfg.Instances) != 1 {
		t.Fatalf("len(Instances) = %d, want 1", len(cfg.Instances))
	}
	inst := cfg.Instances[0]
	if inst.Name != "prod" {
		t.Errorf("Name = %q, want prod", inst.Name)
	}
	if inst.URL != "https://aqua.example.com:8080" {
		t.Errorf("URL = %q", inst.URL)
	}
	if inst.APIUser != "admin" {
		t.Errorf("APIUser = %q, want admin", inst.APIUser)
	}
	if len(inst.Tags) != 2 || inst.Tags[0] != "env:prod" {
		t.Errorf("Tags = %v", inst.Tags)
	}
	if cfg.Collector.Interval != 30 {
		t.Errorf("Interval = %d, want 30", cfg.Collector.Interval)
	}
	if cfg.Collector.Workers != 8 {
		t.Errorf("Workers = %d, want 8", cfg.Collector.Workers)
	}
	if cfg.Dogstatsd.Addr != "127.0.0.1:9125" {
		t.Errorf("Dogstatsd.Addr = %q", cfg.Dogstatsd.Addr)
	}
	if !cfg.Prometheus.Enabled || cfg.Prometheus.Listen != ":9100" {
		t.Errorf("Prometheus = %+v", cfg.Prometheus)
	}
	if !cfg.Zabbix.Enabled || cfg.Zabbix.Server != "zabbix.example.com" {
		t.Errorf("Zabbix = %+v", cfg.Zabbix)
	}
	// Defaults fill the zabbix keys the file leaves out.
	if cfg.Zabbix.Port != 10051 || cfg.Zabbix.SenderPath != "zabbix_sender" {
		t.Errorf("Zabbix defaults = %+v", cfg.Zabbix)
	}
}

func TestLoadYAML_DatadogLayout(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.yaml")

	// The layout shipped with the original Datadog integration: top-level
	// init_config plus an instances list with the same keys.
	content := `
init_config:

instances:
  - url: https://aqua.example.com
    api_user: admin
    password: secret
    tags:
      - env:staging
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if len(cfg.Instances) != 1 {
		t.Fatalf("len(Instances) = %d, want 1", len(cfg.Instances))
	}
	if cfg.Instances[0].URL != "https://aqua.example.com" {
		t.Errorf("URL = %q", cfg.Instances[0].URL)
	}
	if cfg.Collector.Interval != 15 {
		t.Errorf("Interval = %d, want 15 (default)", cfg.Collector.Interval)
	}
}

func TestLoad_InstanceDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aquamon.yaml")

	content := `
instances:
  - url: "https://aqua.internal:8443"
    api_user: admin
    password: secret
collector:
  timeout: 25
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	inst := cfg.Instances[0]
	if inst.Name != "aqua.internal:8443" {
		t.Errorf("Name = %q, want host derived from URL", inst.Name)
	}
	if inst.Timeout != 25 {
		t.Errorf("Timeout = %d, want collector default 25", inst.Timeout)
	}
}

func TestLoad_InstanceTimeoutOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aquamon.yaml")

	content := `
instances:
  - url: "https://aqua.example.com"
    api_user: admin
    password: secret
    timeout: 5
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Instances[0].Timeout != 5 {
		t.Errorf("Timeout = %d, want instance override 5", cfg.Instances[0].Timeout)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aquamon.yaml")

	content := `
instances:
  - url: "https://aqua.example.com"
    api_user: admin
    password: secret
collector:
  interval: 30
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("AQUAMON_COLLECTOR_INTERVAL", "60")
	t.Setenv("AQUAMON_DOGSTATSD_ADDR", "10.0.0.5:8125")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Collector.Interval != 60 {
		t.Errorf("Interval = %d, want env override 60", cfg.Collector.Interval)
	}
	if cfg.Dogstatsd.Addr != "10.0.0.5:8125" {
		t.Errorf("Dogstatsd.Addr = %q, want env override", cfg.Dogstatsd.Addr)
	}
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not found error, got: %v", err)
	}
}

func TestLoad_CredentialsProfile(t *testing.T) {
	dir := t.TempDir()

	credsPath := filepath.Join(dir, "credentials.ini")
	creds := `[production]
api_user = svc-aqua
password = from-profile

[staging]
api_user = svc-aqua-stg
password = stg-secret
`
	if err := os.WriteFile(credsPath, []byte(creds), 0600); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(dir, "aquamon.yaml")
	content := `
instances:
  - url: "https://aqua.example.com"
    credentials_profile: production
  - url: "https://aqua-stg.example.com"
    credentials_profile: staging
    api_user: inline-user
collector:
  credentials_file: ` + credsPath + `
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Instances[0].APIUser != "svc-aqua" {
		t.Errorf("APIUser = %q, want svc-aqua", cfg.Instances[0].APIUser)
	}
	if cfg.Instances[0].Password != "from-profile" {
		t.Errorf("Password = %q, want from-profile", cfg.Instances[0].Password)
	}
	// Inline values win over the profile.
	if cfg.Instances[1].APIUser != "inline-user" {
		t.Errorf("APIUser = %q, want inline-user", cfg.Instances[1].APIUser)
	}
	if cfg.Instances[1].Password != "stg-secret" {
		t.Errorf("Password = %q, want stg-secret", cfg.Instances[1].Password)
	}
}

func TestLoad_CredentialsProfileMissing(t *testing.T) {
	dir := t.TempDir()

	credsPath := filepath.Join(dir, "credentials.ini")
	if err := os.WriteFile(credsPath, []byte("[other]\napi_user = x\n"), 0600); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(dir, "aquamon.yaml")
	content := `
instances:
  - url: "https://aqua.example.com"
    credentials_profile: production
collector:
  credentials_file: ` + credsPath + `
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "production") {
		t.Errorf("expected missing profile error, got: %v", err)
	}
}

func TestLoad_CredentialsProfileWithoutFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aquamon.yaml")

	content := `
instances:
  - url: "https://aqua.example.com"
    credentials_profile: production
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "credentials_file") {
		t.Errorf("expected credentials_file error, got: %v", err)
	}
}
