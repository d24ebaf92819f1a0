package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	measurementMixinEvents    = "mixin_events"
	measurementSettingChanges = "setting_changes"
)

// RecordMixinEvent records that a mixin announced an event on iface.
//
// Only identifiers are stored; event details stay on the bus.
func (c *Client) RecordMixinEvent(mixinID, iface string) {
	c.writePoint(measurementMixinEvents,
		map[string]string{
			"mixin_id":  mixinID,
			"interface": iface,
		},
		map[string]any{"count": 1},
		time.Now(),
	)
}

// RecordSettingChange records a successful setting write through the API.
// The value itself is never stored since settings may hold credentials.
func (c *Client) RecordSettingChange(mixinID, key string) {
	c.writePoint(measurementSettingChanges,
		map[string]string{
			"mixin_id": mixinID,
			"key":      key,
		},
		map[string]any{"count": 1},
		time.Now(),
	)
}

func (c *Client) writePoint(measurement string, tags map[string]string, fields map[string]any, ts time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, ts))
}
