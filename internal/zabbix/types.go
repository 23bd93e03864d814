package zabbix

// Host represents a Zabbix host
type Host struct {
	HostID     string          `json:"hostid"`
	Host       string          `json:"host"`
	Name       string          `json:"name"`
	Status     string          `json:"status"`
	Interfaces []HostInterface `json:"interfaces,omitempty"`
	Groups     []HostGroup     `json:"groups,omitempty"`
}

// HostInterface represents a Zabbix host interface
type HostInterface struct {
	InterfaceID string `json:"interfaceid"`
	IP          string `json:"ip"`
	DNS         string `json:"dns"`
	Port        string `json:"port"`
	Type        string `json:"type"`
	Main        string `json:"main"`
	UseIP       string `json:"useip"`
}

// HostGroup represents a Zabbix host group
type HostGroup struct {
	GroupID string `json:"groupid"`
	Name    string `json:"name"`
}

// Item represents a Zabbix item
type Item struct {
	ItemID    string `json:"itemid"`
	HostID    string `json:"hostid"`
	Name      string `json:"name"`
	Key       string `json:"key_"`
	Value     string `json:"lastvalue"`
	ValueType string `json:"value_type"`
	State     string `json:"state"`
}

// APIResponse represents a generic Zabbix API response
type APIResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result"`
	Error   *APIError   `json:"error,omitempty"`
	ID      int         `json:"id"`
}

// APIError represents a Zabbix API error
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data"`
}

func (e *APIError) Error() string {
	return e.Message + ": " + e.Data
}
