package main

import (
	"fmt"
	"os"

	"golang.zabbix.com/sdk/plugin"
	"golang.zabbix.com/sdk/plugin/container"

	"github.com/aquamon/aquamon/internal/agent2"
)

func main() {
	p := agent2.NewPlugin()

	err := plugin.RegisterMetrics(
		p, "Aqua",
		"aqua.can_connect", "Returns 1 when the Aqua console login succeeded, 0 otherwise.",
		"aqua.images", "Returns the image count for a severity (all, high, medium, ok, low).",
		"aqua.vulnerabilities", "Returns the vulnerability count for a severity (all, high, medium, ok, low).",
		"aqua.running_containers", "Returns the running container count for a status (all, unregistered, registered).",
		"aqua.enforcers", "Returns the enforcer count for a status (all, disconnected).",
		"aqua.audit.access", "Returns the hourly audit access count for a status (all, success, blocked, detect, alert).",
		"aqua.scan_queue", "Returns the scan queue count for a status (all, failed, in_progress, finished, pending).",
		"aqua.last_poll", "Returns the unix timestamp of the last completed poll.",
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to register metrics: %s\n", err)
		os.Exit(1)
	}

	h, err := container.NewHandler("Aqua")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create handler: %s\n", err)
		os.Exit(1)
	}

	if err := h.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "plugin execution failed: %s\n", err)
		os.Exit(1)
	}
}
