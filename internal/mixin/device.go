package mixin

import (
	"fmt"

	"github.com/nerrad567/gray-logic-extensions/internal/sdk"
)

// Logger defines the logging interface used by mixins.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// DeviceConfig describes one mixin attachment as handed over by the host.
type DeviceConfig struct {
	// Device is the wrapped device. It is only asked for settings when
	// Interfaces contains sdk.InterfaceSettings, and must then implement
	// sdk.Settings.
	Device any

	// Interfaces are the interfaces the wrapped device declares.
	Interfaces []sdk.Interface

	// State is the host's snapshot of the wrapped device.
	State sdk.DeviceState

	// ProviderNativeID identifies the plugin device that provides the mixin.
	ProviderNativeID string

	// StorageSuffix namespaces this mixin's storage when several mixins from
	// the same provider attach to one device.
	StorageSuffix string

	// Manager receives mixin events.
	Manager sdk.DeviceManager

	// Logger is optional; callers usually pass one already scoped to the mixin.
	Logger Logger
}

// Device is the common part of every mixin: the wrapped device, what it
// declares, and the host it reports to.
type Device struct {
	device           any
	interfaces       []sdk.Interface
	state            sdk.DeviceState
	providerNativeID string
	storageSuffix    string
	manager          sdk.DeviceManager
	logger           Logger
}

// NewDevice validates cfg and returns the mixin base.
func NewDevice(cfg DeviceConfig) (*Device, error) {
	if cfg.Manager == nil {
		return nil, fmt.Errorf("%w: device manager is required", ErrInvalidConfig)
	}
	if cfg.State.ID == "" {
		return nil, fmt.Errorf("%w: device state id is required", ErrInvalidConfig)
	}
	if cfg.ProviderNativeID == "" {
		return nil, fmt.Errorf("%w: provider native id is required", ErrInvalidConfig)
	}

	interfaces := make([]sdk.Interface, len(cfg.Interfaces))
	copy(interfaces, cfg.Interfaces)

	var logger Logger = noopLogger{}
	if cfg.Logger != nil {
		logger = cfg.Logger
	}

	return &Device{
		device:           cfg.Device,
		interfaces:       interfaces,
		state:            cfg.State.Clone(),
		providerNativeID: cfg.ProviderNativeID,
		storageSuffix:    cfg.StorageSuffix,
		manager:          cfg.Manager,
		logger:           logger,
	}, nil
}

// ID returns the id of the wrapped device, which is also the mixin's id.
func (d *Device) ID() string {
	return d.state.ID
}

// Name returns the wrapped device's display name, falling back to its id.
func (d *Device) Name() string {
	if d.state.Name != "" {
		return d.state.Name
	}
	return d.state.ID
}

// State returns a copy of the snapshot taken at attach time.
func (d *Device) State() sdk.DeviceState {
	return d.state.Clone()
}

// ProviderNativeID returns the native id of the providing plugin device.
func (d *Device) ProviderNativeID() string {
	return d.providerNativeID
}

// HasInterface reports whether the wrapped device declares iface.
func (d *Device) HasInterface(iface sdk.Interface) bool {
	for _, i := range d.interfaces {
		if i == iface {
			return true
		}
	}
	return false
}

// StorageNativeID is the key under which this mixin's storage lives.
func (d *Device) StorageNativeID() string {
	base := d.state.NativeID
	if base == "" {
		base = d.state.ID
	}
	return base + d.storageSuffix
}

// Wrapped returns the wrapped device.
func (d *Device) Wrapped() any {
	return d.device
}

// Logger returns the mixin-scoped logger.
func (d *Device) Logger() Logger {
	return d.logger
}
