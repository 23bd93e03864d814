package cmd

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aquamon/aquamon/internal/sink"
)

var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Provision Zabbix objects for the trapper backend",
	Long: `Create the Zabbix objects the trapper backend pushes into.

For the configured host group and every Aqua instance this command ensures:
- the host group (zabbix.host_group, default "Aqua CSP")
- one host named after the instance
- one numeric trapper item per metric the collector emits
  (aqua.can_connect plus aqua.<family>[<severity or status>])

Existing objects are left alone; only missing ones are created. Requires
zabbix.api_url, zabbix.api_user and zabbix.api_password.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := GetLogger()
		cfg := GetConfig()

		if cfg.Zabbix.APIURL == "" || cfg.Zabbix.APIUser == "" || cfg.Zabbix.APIPassword == "" {
			return fmt.Errorf("zabbix.api_url, zabbix.api_user and zabbix.api_password are required for prepare")
		}

		log.Info("Preparing Zabbix objects...")

		client, err := initZabbixClient(cfg, log)
		if err != nil {
			return fmt.Errorf("failed to connect to Zabbix: %w", err)
		}
		defer func() { _ = client.Close() }()

		ctx := context.Background()

		groupID, err := client.EnsureHostGroupCtx(ctx, cfg.Zabbix.HostGroup)
		if err != nil {
			return fmt.Errorf("failed to ensure host group: %w", err)
		}

		items := sink.TrapperItems()
		for i := range cfg.Instances {
			name := cfg.Instances[i].Name
			log.Info("Preparing instance host", slog.String("host", name))

			hostID, err := client.EnsureInstanceHostCtx(ctx, groupID, name)
			if err != nil {
				return fmt.Errorf("failed to ensure host %q: %w", name, err)
			}
			if err := client.EnsureTrapperItemsCtx(ctx, hostID, items); err != nil {
				return fmt.Errorf("failed to ensure items on %q: %w", name, err)
			}
		}

		log.Info("Zabbix preparation complete",
			slog.Int("hosts", len(cfg.Instances)), slog.Int("items_per_host", len(items)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(prepareCmd)
}
