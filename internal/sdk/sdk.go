package sdk

import (
	"context"
	"errors"
)

// Settings is implemented by anything that exposes user-configurable settings:
// devices living in the core, and the mixins this plugin attaches to them.
type Settings interface {
	// GetSettings returns the current settings in display order.
	GetSettings(ctx context.Context) ([]Setting, error)

	// PutSetting writes a single value. Value is a string, number or bool.
	PutSetting(ctx context.Context, key string, value any) error
}

// DeviceManager is the host's device manager as seen from a plugin.
type DeviceManager interface {
	// OnMixinEvent tells the host that a mixin changed something about iface
	// (for Settings: the settings metadata must be fetched again).
	OnMixinEvent(ctx context.Context, mixinID string, iface Interface, details any) error

	// DeviceState returns the last known state of the device with the given
	// native id. Returns ErrDeviceNotFound when the host has not announced it.
	DeviceState(nativeID string) (DeviceState, error)
}

// Storage is a per-device key/value store owned by the host.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}

var (
	// ErrDeviceNotFound is returned when the host does not know a device.
	ErrDeviceNotFound = errors.New("sdk: device not found")

	// ErrSettingsUnsupported is returned when a device is asked for settings
	// it cannot provide.
	ErrSettingsUnsupported = errors.New("sdk: device does not implement Settings")
)
