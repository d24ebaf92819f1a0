package mqtt

import (
	"fmt"
	"strings"
)

// Topic prefixes used by the extensions plugin.
//
// Device and mixin topics live under the core hierarchy because the core owns
// those devices; the plugin only publishes its own status under its prefix.
const (
	// TopicPrefixCore is the base for all core topics.
	TopicPrefixCore = "graylogic/core"

	// TopicPrefixPlugin is the base for plugin status topics.
	TopicPrefixPlugin = "graylogic/plugin"
)

// Topics provides builders for the MQTT topics the plugin uses.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	topics.MixinEvent("light-living", "Settings")
//	// Returns: "graylogic/core/mixin/light-living/event/Settings"
type Topics struct{}

// PluginStatus returns the retained online/offline topic for a plugin client.
//
// Example: graylogic/plugin/graylogic-extensions/status
func (Topics) PluginStatus(clientID string) string {
	return fmt.Sprintf("%s/%s/status", TopicPrefixPlugin, clientID)
}

// MixinEvent returns the topic a mixin event for iface is published on.
//
// Example: graylogic/core/mixin/light-living/event/Settings
func (Topics) MixinEvent(mixinID, iface string) string {
	return fmt.Sprintf("%s/mixin/%s/event/%s", TopicPrefixCore, mixinID, iface)
}

// DeviceInfo returns the retained topic describing a device (name, interfaces).
//
// Example: graylogic/core/device/light-living/info
func (Topics) DeviceInfo(deviceID string) string {
	return fmt.Sprintf("%s/device/%s/info", TopicPrefixCore, deviceID)
}

// AllDeviceInfo returns a wildcard pattern matching every device info topic.
func (Topics) AllDeviceInfo() string {
	return TopicPrefixCore + "/device/+/info"
}

// SettingsRequest returns the topic settings requests for a device are sent to.
//
// Example: graylogic/core/device/light-living/settings/request
func (Topics) SettingsRequest(deviceID string) string {
	return fmt.Sprintf("%s/device/%s/settings/request", TopicPrefixCore, deviceID)
}

// SettingsResponse returns the topic the core replies to a settings request on.
//
// Example: graylogic/core/settings/response/5f0c...
func (Topics) SettingsResponse(requestID string) string {
	return fmt.Sprintf("%s/settings/response/%s", TopicPrefixCore, requestID)
}

// AllSettingsResponses returns a wildcard pattern matching every settings response.
func (Topics) AllSettingsResponses() string {
	return TopicPrefixCore + "/settings/response/+"
}

// ParseDeviceInfoTopic extracts the device id from a device info topic.
// Returns false if topic is not a device info topic.
func ParseDeviceInfoTopic(topic string) (string, bool) {
	rest, ok := strings.CutPrefix(topic, TopicPrefixCore+"/device/")
	if !ok {
		return "", false
	}
	id, ok := strings.CutSuffix(rest, "/info")
	if !ok || id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}

// ParseSettingsResponseTopic extracts the request id from a settings response topic.
// Returns false if topic is not a settings response topic.
func ParseSettingsResponseTopic(topic string) (string, bool) {
	id, ok := strings.CutPrefix(topic, TopicPrefixCore+"/settings/response/")
	if !ok || id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}
