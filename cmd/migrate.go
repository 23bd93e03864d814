package cmd

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"log/slog"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"

	"github.com/aquamon/aquamon/internal/config"
)

var (
	migrateFrom   string
	migrateOutput string
)

// carriedInstanceKeys are the Datadog instance options that map onto an
// aquamon instance. Anything else in the source file is Datadog base-check
// machinery that aquamon does not carry, and is warned about.
var carriedInstanceKeys = map[string]bool{
	"url":      true,
	"api_user": true,
	"password": true,
	"tags":     true,
	"timeout":  true,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate-config",
	Short: "Render a native config from a Datadog aqua.d/conf.yaml",
	Long: `Read a Datadog Agent aqua.d/conf.yaml and render the equivalent
aquamon.yaml to stdout (or --output).

The instances list carries over as-is: url, api_user, password, tags and
timeout. Datadog base-check options with no aquamon equivalent
(min_collection_interval, proxy settings, service, ...) are reported and
dropped. init_config is ignored.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger(verbose)

		cfg, err := loadDatadogConf(migrateFrom, log)
		if err != nil {
			return err
		}

		out, err := renderYAML(cfg)
		if err != nil {
			return fmt.Errorf("failed to render config: %w", err)
		}

		if migrateOutput == "" {
			fmt.Print(string(out))
			return nil
		}
		if err := os.WriteFile(migrateOutput, out, 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", migrateOutput, err)
		}
		log.Info("Wrote native config", slog.String("path", migrateOutput))
		return nil
	},
}

// loadDatadogConf reads a Datadog conf.yaml and maps its instances onto a
// default aquamon config.
func loadDatadogConf(path string, log *slog.Logger) (*config.Config, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	var src struct {
		Instances []map[string]interface{} `koanf:"instances"`
	}
	if err := k.Unmarshal("", &src); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", path, err)
	}
	if len(src.Instances) == 0 {
		return nil, fmt.Errorf("no instances found in %s", path)
	}

	cfg := config.DefaultConfig()
	for i, raw := range src.Instances {
		var inst config.Instance
		if v, ok := raw["url"].(string); ok {
			inst.URL = v
		}
		if v, ok := raw["api_user"].(string); ok {
			inst.APIUser = v
		}
		if v, ok := raw["password"].(string); ok {
			inst.Password = v
		}
		if v, ok := raw["timeout"].(int); ok {
			inst.Timeout = v
		}
		if tags, ok := raw["tags"].([]interface{}); ok {
			for _, t := range tags {
				if s, ok := t.(string); ok {
					inst.Tags = append(inst.Tags, s)
				}
			}
		}

		var dropped []string
		for key := range raw {
			if !carriedInstanceKeys[key] {
				dropped = append(dropped, key)
			}
		}
		sort.Strings(dropped)
		for _, key := range dropped {
			log.Warn("Dropping instance option with no aquamon equivalent",
				slog.Int("instance", i), slog.String("key", key))
		}

		cfg.Instances = append(cfg.Instances, inst)
	}

	return cfg, nil
}

// renderYAML renders a minimal native config: the instances list plus any
// setting that differs from the defaults.
func renderYAML(cfg *config.Config) ([]byte, error) {
	if len(cfg.Instances) == 0 {
		return nil, fmt.Errorf("no instances to render")
	}
	defaults := config.DefaultConfig()

	var b bytes.Buffer
	b.WriteString("instances:\n")
	for i := range cfg.Instances {
		inst := &cfg.Instances[i]
		b.WriteString("  - url: " + yamlQuote(inst.URL) + "\n")
		if inst.Name != "" {
			b.WriteString("    name: " + yamlQuote(inst.Name) + "\n")
		}
		b.WriteString("    api_user: " + yamlQuote(inst.APIUser) + "\n")
		b.WriteString("    password: " + yamlQuote(inst.Password) + "\n")
		if len(inst.Tags) > 0 {
			b.WriteString("    tags:\n")
			for _, tag := range inst.Tags {
				b.WriteString("      - " + yamlQuote(tag) + "\n")
			}
		}
		if inst.Timeout > 0 && inst.Timeout != defaults.Collector.Timeout {
			fmt.Fprintf(&b, "    timeout: %d\n", inst.Timeout)
		}
		if inst.InsecureSkipVerify {
			b.WriteString("    insecure_skip_verify: true\n")
		}
	}

	var collector []string
	if cfg.Collector.Interval != defaults.Collector.Interval {
		collector = append(collector, fmt.Sprintf("  interval: %d", cfg.Collector.Interval))
	}
	if cfg.Collector.Workers != defaults.Collector.Workers {
		collector = append(collector, fmt.Sprintf("  workers: %d", cfg.Collector.Workers))
	}
	if cfg.Collector.Timeout != defaults.Collector.Timeout {
		collector = append(collector, fmt.Sprintf("  timeout: %d", cfg.Collector.Timeout))
	}
	if len(collector) > 0 {
		b.WriteString("collector:\n")
		b.WriteString(strings.Join(collector, "\n") + "\n")
	}

	if cfg.Dogstatsd.Addr != defaults.Dogstatsd.Addr {
		b.WriteString("dogstatsd:\n")
		b.WriteString("  addr: " + yamlQuote(cfg.Dogstatsd.Addr) + "\n")
	}

	return b.Bytes(), nil
}

// yamlQuote quotes a scalar only when YAML would otherwise misread it.
func yamlQuote(s string) string {
	if s == "" {
		return `""`
	}
	needsQuote := strings.ContainsAny(s, ":#\"") ||
		strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ")
	if !needsQuote {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

func init() {
	migrateCmd.Flags().StringVar(&migrateFrom, "from", "/etc/datadog-agent/conf.d/aqua.d/conf.yaml", "Datadog conf.yaml to read")
	migrateCmd.Flags().StringVarP(&migrateOutput, "output", "o", "", "write the native config to a file instead of stdout")

	rootCmd.AddCommand(migrateCmd)
}
