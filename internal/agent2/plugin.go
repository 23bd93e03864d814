// Package agent2 exposes Aqua console metrics as Zabbix Agent 2 item keys.
// A background loop polls the console on an interval and caches the latest
// completed report; Export answers item requests from that cache.
package agent2

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"io"
	"log/slog"

	"golang.zabbix.com/sdk/plugin"

	"github.com/aquamon/aquamon/internal/aqua"
	"github.com/aquamon/aquamon/internal/check"
	"github.com/aquamon/aquamon/internal/config"
)

// DefaultPollInterval is the default seconds between background polls.
const DefaultPollInterval = 60

// KeyLastPoll reports when the cached report was completed (unix seconds).
const KeyLastPoll = "aqua.last_poll"

// AquaPlugin implements Configurator, Runner and Exporter for Zabbix Agent 2.
type AquaPlugin struct {
	plugin.Base

	inst         *config.Instance
	pollInterval int
	cache        *ReportCache

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPlugin creates a new AquaPlugin instance.
func NewPlugin() *AquaPlugin {
	return &AquaPlugin{
		cache:        NewReportCache(),
		pollInterval: DefaultPollInterval,
	}
}

// --- Configurator ---

// Configure is called by Agent 2 to pass config options.
func (p *AquaPlugin) Configure(globalOptions *plugin.GlobalOptions, privateOptions any) {
	// privateOptions is a map[string]string from the agent2 config file
	// (Plugins.Aqua.* keys).
	opts, ok := privateOptions.(map[string]string)
	if !ok {
		p.Errf("unexpected privateOptions type: %T", privateOptions)
		return
	}

	inst := &config.Instance{Name: "agent2"}

	if v, ok := opts["Url"]; ok {
		inst.URL = v
	}
	if v, ok := opts["ApiUser"]; ok {
		inst.APIUser = v
	}
	if v, ok := opts["Password"]; ok {
		inst.Password = v
	}
	if v, ok := opts["Tags"]; ok && v != "" {
		for _, tag := range strings.Split(v, ",") {
			inst.Tags = append(inst.Tags, strings.TrimSpace(tag))
		}
	}
	if v, ok := opts["Timeout"]; ok {
		if t, err := strconv.Atoi(v); err == nil {
			inst.Timeout = t
		}
	}
	if v, ok := opts["InsecureSkipVerify"]; ok {
		inst.InsecureSkipVerify = v == "true" || v == "1"
	}
	if v, ok := opts["PollInterval"]; ok {
		if pi, err := strconv.Atoi(v); err == nil {
			p.pollInterval = pi
		}
	}

	p.inst = inst
}

// Validate checks mandatory configuration.
func (p *AquaPlugin) Validate(privateOptions any) error {
	opts, ok := privateOptions.(map[string]string)
	if !ok {
		return fmt.Errorf("unexpected privateOptions type: %T", privateOptions)
	}
	if opts["Url"] == "" {
		return fmt.Errorf("Plugins.Aqua.Url is required")
	}
	if opts["ApiUser"] == "" {
		return fmt.Errorf("Plugins.Aqua.ApiUser is required")
	}
	if opts["Password"] == "" {
		return fmt.Errorf("Plugins.Aqua.Password is required")
	}
	return nil
}

// --- Runner ---

// Start is called when Agent 2 starts the plugin.
func (p *AquaPlugin) Start() {
	p.Infof("starting Aqua plugin (poll interval: %ds)", p.pollInterval)

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.wg.Add(1)
	go p.pollLoop(ctx)
}

// Stop is called when Agent 2 shuts down.
func (p *AquaPlugin) Stop() {
	p.Infof("stopping Aqua plugin")
	p.cancel()
	p.wg.Wait()
}

func (p *AquaPlugin) pollLoop(ctx context.Context) {
	defer p.wg.Done()

	// Poll immediately on start, then periodically.
	p.runPoll(ctx)

	interval := p.pollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(time.Duration(interval) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.runPoll(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *AquaPlugin) runPoll(ctx context.Context) {
	if p.inst == nil {
		p.Errf("plugin not configured, skipping poll")
		return
	}

	// Check internals log through a discard slog handler; plugin logging
	// goes through p.Base (SDK logger).
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	rec := check.NewRecorder()
	runner := check.NewRunner(p.inst, aqua.NewClient(p.inst, log), rec, log)
	if err := runner.Run(ctx); err != nil {
		// The CRITICAL health signal is already in the report; keep it so
		// aqua.can_connect reflects the failure.
		p.Errf("poll failed: %s", err)
	}

	report := rec.Report()
	p.cache.Update(report)

	p.Infof("poll completed: %d metrics, %d service checks", len(report.Metrics), len(report.Checks))
}

// --- Exporter ---

// Export handles item key requests from Agent 2.
func (p *AquaPlugin) Export(key string, params []string, ctx plugin.ContextProvider) (any, error) {
	report := p.cache.Report()
	if report == nil {
		return nil, fmt.Errorf("no poll data available yet")
	}

	switch key {
	case check.ServiceCheckName:
		hc, ok := report.Check(check.ServiceCheckName)
		if !ok {
			return nil, fmt.Errorf("no health data available yet")
		}
		if hc.Status == check.StatusOK {
			return 1, nil
		}
		return 0, nil

	case KeyLastPoll:
		return report.CompletedAt.Unix(), nil
	}

	for _, f := range check.Families() {
		if f.Name != key {
			continue
		}
		if len(params) < 1 {
			return nil, fmt.Errorf("%s requires a %s parameter", key, f.Dimension)
		}
		value, ok := report.Lookup(key, f.Dimension+":"+params[0])
		if !ok {
			return nil, fmt.Errorf("no %s value for %s %q", key, f.Dimension, params[0])
		}
		return value, nil
	}

	return nil, fmt.Errorf("unknown key: %s", key)
}
