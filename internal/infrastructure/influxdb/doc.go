// Package influxdb records mixin activity history in InfluxDB.
//
// Two measurements are written:
//
//	mixin_events     tags: mixin_id, interface   field: count
//	setting_changes  tags: mixin_id, key         field: count
//
// Recording is optional (influxdb.enabled in config.yaml). Writes are
// non-blocking and batched according to batch_size and flush_interval;
// failures arrive asynchronously on the SetOnError callback.
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.RecordMixinEvent("light-living", "Settings")
//
// All methods are safe for concurrent use.
package influxdb
