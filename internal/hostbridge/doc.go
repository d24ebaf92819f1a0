// Package hostbridge connects the plugin to Gray Logic Core over MQTT.
//
// Manager implements sdk.DeviceManager:
//
//   - device descriptions arrive as retained messages on
//     graylogic/core/device/{id}/info and are cached for DeviceState
//   - mixin events are published on graylogic/core/mixin/{id}/event/{interface}
//
// RemoteDevice implements sdk.Settings for a device in the core. Each call
// publishes a request on graylogic/core/device/{id}/settings/request and
// waits for the reply on graylogic/core/settings/response/{request_id}:
//
//	request:  {"request_id":"…","op":"get_settings","reply_to":"…"}
//	response: {"request_id":"…","settings":[…]}   or   {"error":"…"}
//
// A reply carrying an error surfaces as ErrRemote; no reply within the
// configured timeout is ErrRequestTimeout.
package hostbridge
