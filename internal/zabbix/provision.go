package zabbix

import (
	"context"
	"encoding/json"
	"fmt"

	"log/slog"
)

// TrapperItem describes one trapper item `aquamon prepare` ensures on an
// instance host.
type TrapperItem struct {
	Name string
	Key  string
}

// EnsureHostGroupCtx returns the ID of the named host group, creating the
// group when it does not exist.
func (c *Client) EnsureHostGroupCtx(ctx context.Context, name string) (string, error) {
	params := map[string]interface{}{
		"output": []string{"groupid"},
		"filter": map[string]interface{}{
			"name": name,
		},
	}

	result, err := c.callWithContext(ctx, "hostgroup.get", params)
	if err != nil {
		return "", fmt.Errorf("failed to get host group: %w", err)
	}

	groups, err := parseHostGroups(result)
	if err != nil {
		return "", err
	}

	if len(groups) > 0 {
		c.log.Debug("Host group already exists", slog.String("group", name))
		return groups[0].GroupID, nil
	}

	result, err = c.callWithContext(ctx, "hostgroup.create", map[string]interface{}{
		"name": name,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create host group: %w", err)
	}

	groupID, err := firstID(result, "groupids")
	if err != nil {
		return "", err
	}

	c.log.Info("Created host group", slog.String("group", name))
	return groupID, nil
}

// EnsureInstanceHostCtx returns the ID of the Zabbix host named after an Aqua
// instance, creating the host in the given group when it does not exist.
// Trapper values carry no interface but Zabbix requires one, so new hosts get
// a loopback agent interface.
func (c *Client) EnsureInstanceHostCtx(ctx context.Context, groupID, name string) (string, error) {
	params := map[string]interface{}{
		"output": []string{"hostid", "host", "name", "status"},
		"filter": map[string]interface{}{
			"host": name,
		},
	}

	result, err := c.callWithContext(ctx, "host.get", params)
	if err != nil {
		return "", fmt.Errorf("failed to get host %q: %w", name, err)
	}

	hosts, err := parseHosts(result)
	if err != nil {
		return "", err
	}

	if len(hosts) > 0 {
		c.log.Debug("Instance host already exists", slog.String("host", name))
		return hosts[0].HostID, nil
	}

	createParams := map[string]interface{}{
		"host": name,
		"name": name,
		"groups": []map[string]string{
			{"groupid": groupID},
		},
		"interfaces": []map[string]interface{}{
			{
				"type":  1, // agent
				"main":  1,
				"useip": 1,
				"ip":    "127.0.0.1",
				"dns":   "",
				"port":  "10050",
			},
		},
	}

	result, err = c.callWithContext(ctx, "host.create", createParams)
	if err != nil {
		return "", fmt.Errorf("failed to create host %q: %w", name, err)
	}

	hostID, err := firstID(result, "hostids")
	if err != nil {
		return "", err
	}

	c.log.Info("Created instance host", slog.String("host", name))
	return hostID, nil
}

// EnsureTrapperItemsCtx ensures every given trapper item exists on the host.
// Existing items are left alone; missing ones are created individually as
// numeric float trappers.
func (c *Client) EnsureTrapperItemsCtx(ctx context.Context, hostID string, items []TrapperItem) error {
	params := map[string]interface{}{
		"output":  []string{"itemid", "key_"},
		"hostids": hostID,
	}

	result, err := c.callWithContext(ctx, "item.get", params)
	if err != nil {
		return fmt.Errorf("failed to get items: %w", err)
	}

	existing, err := parseItems(result)
	if err != nil {
		return err
	}

	have := make(map[string]bool, len(existing))
	for _, item := range existing {
		have[item.Key] = true
	}

	created := 0
	for _, item := range items {
		if have[item.Key] {
			continue
		}
		createParams := map[string]interface{}{
			"hostid":     hostID,
			"name":       item.Name,
			"key_":       item.Key,
			"type":       2, // Zabbix trapper
			"value_type": 0, // numeric float
		}
		if _, err := c.callWithContext(ctx, "item.create", createParams); err != nil {
			return fmt.Errorf("failed to create item %s: %w", item.Key, err)
		}
		created++
	}

	if created > 0 {
		c.log.Info("Created trapper items", slog.Int("count", created))
	} else {
		c.log.Debug("All trapper items already exist", slog.Int("count", len(items)))
	}
	return nil
}

// firstID pulls the first ID out of a create-call response, e.g. the first
// entry of "hostids" after host.create.
func firstID(result interface{}, field string) (string, error) {
	resultMap, ok := result.(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("unexpected response type: %T", result)
	}

	ids, ok := resultMap[field].([]interface{})
	if !ok || len(ids) == 0 {
		return "", fmt.Errorf("no %s in response", field)
	}

	id, ok := ids[0].(string)
	if !ok {
		return "", fmt.Errorf("unexpected %s entry type: %T", field, ids[0])
	}
	return id, nil
}

// parseHosts parses the API response into a slice of Host
func parseHosts(result interface{}) ([]Host, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	var hosts []Host
	if err := json.Unmarshal(data, &hosts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal hosts: %w", err)
	}

	return hosts, nil
}

// parseHostGroups parses the API response into a slice of HostGroup
func parseHostGroups(result interface{}) ([]HostGroup, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	var groups []HostGroup
	if err := json.Unmarshal(data, &groups); err != nil {
		return nil, fmt.Errorf("failed to unmarshal host groups: %w", err)
	}

	return groups, nil
}

// parseItems parses the API response into a slice of Item
func parseItems(result interface{}) ([]Item, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal items: %w", err)
	}

	return items, nil
}
