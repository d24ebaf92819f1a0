// Package mqtt provides MQTT connectivity for the extensions plugin.
//
// The plugin talks to Gray Logic Core over the same broker the core uses for
// its protocol bridges:
//
//	Extensions plugin ↔ MQTT Broker ↔ Gray Logic Core
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Retained online/offline status with a Last Will
//   - Tracked subscriptions, restored after reconnect
//   - Handler panic recovery
//
// # Topics
//
//	graylogic/plugin/{client_id}/status             retained, plugin status
//	graylogic/core/device/{id}/info                 retained, device description
//	graylogic/core/device/{id}/settings/request     settings get/put requests
//	graylogic/core/settings/response/{request_id}   replies to requests
//	graylogic/core/mixin/{id}/event/{interface}     mixin events
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.PublishJSON(mqtt.Topics{}.MixinEvent(id, "Settings"), event)
//
// TLS should be enabled (cfg.Broker.TLS) anywhere the broker is not on
// localhost.
package mqtt
