package zabbix

import "go.uber.org/fx"

// Module provides the API client and the zabbix_sender wrapper for fx
// injection.
var Module = fx.Module("zabbix",
	fx.Provide(NewClient, NewSender),
)
