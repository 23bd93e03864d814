package sink

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"log/slog"

	"github.com/aquamon/aquamon/internal/check"
	"github.com/aquamon/aquamon/internal/zabbix"
)

// batchSender is the part of zabbix.Sender the trapper sink needs. Tests
// substitute a recorder.
type batchSender interface {
	SendBatch(items []zabbix.SenderData) error
}

// ZabbixTrapper buffers one poll cycle's emissions and pushes them on Commit
// as a single zabbix_sender batch. The Zabbix host is the instance name; item
// keys are aqua.<family>[<severity or status>] and aqua.can_connect carries
// 1 or 0.
type ZabbixTrapper struct {
	host   string
	sender batchSender
	log    *slog.Logger

	mu  sync.Mutex
	buf []zabbix.SenderData
}

func NewZabbixTrapper(host string, sender batchSender, log *slog.Logger) *ZabbixTrapper {
	return &ZabbixTrapper{host: host, sender: sender, log: log}
}

func (z *ZabbixTrapper) Gauge(name string, value float64, tags []string) {
	key, ok := trapperKey(name, tags)
	if !ok {
		z.log.Debug("Dropping gauge with no trapper key", slog.String("metric", name))
		return
	}
	z.append(key, strconv.FormatFloat(value, 'f', -1, 64))
}

func (z *ZabbixTrapper) ServiceCheck(name string, status check.Status, _ []string, _ string) {
	if name != check.ServiceCheckName {
		return
	}
	value := "0"
	if status == check.StatusOK {
		value = "1"
	}
	z.append(name, value)
}

// Commit flushes the cycle's buffer. A failed push is logged and the buffer
// dropped: the next cycle produces fresh values anyway.
func (z *ZabbixTrapper) Commit() {
	z.mu.Lock()
	batch := z.buf
	z.buf = nil
	z.mu.Unlock()

	if len(batch) == 0 {
		return
	}
	if err := z.sender.SendBatch(batch); err != nil {
		z.log.Error("Failed to push cycle to Zabbix",
			slog.String("host", z.host), slog.Any("error", err))
	}
}

func (z *ZabbixTrapper) append(key, value string) {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.buf = append(z.buf, zabbix.SenderData{Host: z.host, Key: key, Value: value})
}

// trapperKey maps a gauge emission onto its trapper item key, e.g.
// aqua.images with severity:high becomes aqua.images[high].
func trapperKey(name string, tags []string) (string, bool) {
	for _, f := range check.Families() {
		if f.Name != name {
			continue
		}
		v := check.TagValue(tags, f.Dimension)
		if v == "" {
			return "", false
		}
		return fmt.Sprintf("%s[%s]", name, v), true
	}
	return "", false
}

// TrapperItems lists every trapper item a poll cycle can emit. `aquamon
// prepare` ensures these exist on each instance host.
func TrapperItems() []zabbix.TrapperItem {
	items := []zabbix.TrapperItem{
		{Name: "Aqua: can connect", Key: check.ServiceCheckName},
	}
	for _, f := range check.Families() {
		base := strings.TrimPrefix(f.Name, "aqua.")
		for _, v := range f.Values {
			items = append(items, zabbix.TrapperItem{
				Name: fmt.Sprintf("Aqua: %s (%s %s)", base, f.Dimension, v),
				Key:  fmt.Sprintf("%s[%s]", f.Name, v),
			})
		}
	}
	return items
}
