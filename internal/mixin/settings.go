package mixin

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/gray-logic-extensions/internal/infrastructure/metrics"
	"github.com/nerrad567/gray-logic-extensions/internal/sdk"
)

// Error placeholder presentation.
const (
	// ErrorGroup is the settings group placeholders are shown in.
	ErrorGroup = "Errors"

	// ErrorValue is the value shown for a placeholder.
	ErrorValue = "Settings Error"

	// groupKeySeparator joins a group key and a mixin setting key.
	groupKeySeparator = ":"
)

// MixinSettings is what a concrete settings mixin contributes.
type MixinSettings interface {
	// GetMixinSettings returns the mixin's own settings with un-prefixed keys.
	GetMixinSettings(ctx context.Context) ([]sdk.Setting, error)

	// PutMixinSetting writes one of the mixin's own settings. Key has
	// already been stripped of the group prefix.
	PutMixinSetting(ctx context.Context, key string, value any) error
}

// Options configure how a mixin's settings are grouped in the UI.
type Options struct {
	// Group is the display group for mixin settings that do not set one.
	Group string

	// GroupKey namespaces mixin setting keys as "<GroupKey>:<key>".
	GroupKey string
}

// SettingsMixinDevice merges a wrapped device's settings with settings
// contributed by a mixin, and routes writes back to whichever side owns the key.
//
// The two settings sources are fetched concurrently and fail independently:
// a failing source is replaced by a single read-only placeholder in the
// "Errors" group so the other source still renders.
//
// Thread Safety: all methods are safe for concurrent use. Start and Release
// notify the host at most once each.
type SettingsMixinDevice struct {
	*Device

	settings MixinSettings
	group    string
	groupKey string

	startOnce   sync.Once
	releaseOnce sync.Once
}

// NewSettingsMixinDevice builds a settings mixin around base.
//
// The host is not notified here; the owner must call Start once the mixin
// is registered so the first settings-changed event finds it.
func NewSettingsMixinDevice(base *Device, settings MixinSettings, opts Options) (*SettingsMixinDevice, error) {
	if base == nil {
		return nil, fmt.Errorf("%w: base device is required", ErrInvalidConfig)
	}
	if settings == nil {
		return nil, fmt.Errorf("%w: mixin settings are required", ErrInvalidConfig)
	}
	if opts.GroupKey == "" {
		return nil, fmt.Errorf("%w: group key is required", ErrInvalidConfig)
	}
	if strings.Contains(opts.GroupKey, groupKeySeparator) {
		return nil, fmt.Errorf("%w: group key %q must not contain %q", ErrInvalidConfig, opts.GroupKey, groupKeySeparator)
	}

	return &SettingsMixinDevice{
		Device:   base,
		settings: settings,
		group:    opts.Group,
		groupKey: opts.GroupKey,
	}, nil
}

// Group returns the default display group for mixin settings.
func (m *SettingsMixinDevice) Group() string {
	return m.group
}

// GroupKey returns the namespace prefixed to mixin setting keys.
func (m *SettingsMixinDevice) GroupKey() string {
	return m.groupKey
}

// Start finishes initialisation by telling the host the settings changed.
// Only the first call notifies.
func (m *SettingsMixinDevice) Start(ctx context.Context) {
	m.startOnce.Do(func() {
		m.notifySettingsChanged(ctx, "start")
	})
}

// Release tells the host to refresh settings metadata because the mixin is
// going away. Only the first call notifies.
func (m *SettingsMixinDevice) Release(ctx context.Context) {
	m.releaseOnce.Do(func() {
		m.notifySettingsChanged(ctx, "release")
	})
}

// GetSettings returns the wrapped device's settings followed by the mixin's
// settings, with mixin keys prefixed by the group key.
//
// The returned error is always nil: a failing source is logged and replaced
// by a placeholder entry. Cancelling ctx surfaces as such a failure.
func (m *SettingsMixinDevice) GetSettings(ctx context.Context) ([]sdk.Setting, error) {
	var (
		deviceSettings []sdk.Setting
		deviceErr      error
		mixinSettings  []sdk.Setting
		mixinErr       error
	)

	// Neither goroutine returns an error, so one source failing never
	// cancels or short-circuits the other.
	var g errgroup.Group
	if m.HasInterface(sdk.InterfaceSettings) {
		g.Go(func() error {
			deviceSettings, deviceErr = guard(func() ([]sdk.Setting, error) {
				return m.fetchDeviceSettings(ctx)
			})
			return nil
		})
	}
	g.Go(func() error {
		mixinSettings, mixinErr = guard(func() ([]sdk.Setting, error) {
			return m.settings.GetMixinSettings(ctx)
		})
		return nil
	})
	_ = g.Wait() //nolint:errcheck // goroutines always return nil

	all := make([]sdk.Setting, 0, len(deviceSettings)+len(mixinSettings)+1)

	if deviceErr != nil {
		metrics.IncSettingsPlaceholder("device")
		name := m.Name()
		m.logger.Error("device settings failed to load",
			"mixin_id", m.ID(),
			"device", name,
			"error", deviceErr,
		)
		all = append(all, errorSetting(name))
	} else {
		all = append(all, deviceSettings...)
	}

	if mixinErr != nil {
		metrics.IncSettingsPlaceholder("mixin")
		name := m.providerName()
		m.logger.Error("mixin settings failed to load",
			"mixin_id", m.ID(),
			"provider", name,
			"error", mixinErr,
		)
		all = append(all, errorSetting(name))
	} else {
		for _, s := range mixinSettings {
			all = append(all, m.namespaced(s))
		}
	}

	return all, nil
}

// PutSetting routes a write to the mixin when key carries the group prefix,
// and to the wrapped device unchanged otherwise.
//
// Write errors from either side are returned to the caller.
func (m *SettingsMixinDevice) PutSetting(ctx context.Context, key string, value any) error {
	mixinKey, ok := strings.CutPrefix(key, m.prefix())
	if !ok {
		settings, isSettings := m.device.(sdk.Settings)
		if !isSettings {
			return fmt.Errorf("putting setting %q on %s: %w", key, m.ID(), sdk.ErrSettingsUnsupported)
		}
		err := settings.PutSetting(ctx, key, value)
		metrics.RecordSettingsWrite("device", err)
		return err
	}

	err := m.settings.PutMixinSetting(ctx, mixinKey, value)
	metrics.RecordSettingsWrite("mixin", err)
	if err != nil {
		return fmt.Errorf("putting mixin setting %q: %w", mixinKey, err)
	}

	m.notifySettingsChanged(ctx, "put")
	return nil
}

// prefix returns "<groupKey>:".
func (m *SettingsMixinDevice) prefix() string {
	return m.groupKey + groupKeySeparator
}

// namespaced returns a copy of s with its key prefixed and its group defaulted.
func (m *SettingsMixinDevice) namespaced(s sdk.Setting) sdk.Setting {
	cpy := s
	if cpy.Group == "" {
		cpy.Group = m.group
	}
	cpy.Key = m.prefix() + s.Key
	if s.Choices != nil {
		cpy.Choices = make([]string, len(s.Choices))
		copy(cpy.Choices, s.Choices)
	}
	return cpy
}

// fetchDeviceSettings asks the wrapped device for its own settings.
func (m *SettingsMixinDevice) fetchDeviceSettings(ctx context.Context) ([]sdk.Setting, error) {
	settings, ok := m.device.(sdk.Settings)
	if !ok {
		return nil, sdk.ErrSettingsUnsupported
	}
	return settings.GetSettings(ctx)
}

// providerName resolves the providing plugin's display name from the host.
func (m *SettingsMixinDevice) providerName() string {
	state, err := m.manager.DeviceState(m.providerNativeID)
	if err != nil || state.Name == "" {
		return m.providerNativeID
	}
	return state.Name
}

// notifySettingsChanged sends a Settings mixin event. Failures are logged:
// the host will pick the change up on its next refresh.
func (m *SettingsMixinDevice) notifySettingsChanged(ctx context.Context, reason string) {
	if err := m.manager.OnMixinEvent(ctx, m.ID(), sdk.InterfaceSettings, nil); err != nil {
		m.logger.Warn("settings change notification failed",
			"mixin_id", m.ID(),
			"reason", reason,
			"error", err,
		)
		return
	}
	m.logger.Debug("settings change notified", "mixin_id", m.ID(), "reason", reason)
}

// errorSetting builds the read-only placeholder shown when a source fails.
// The key is random and only used for display.
func errorSetting(name string) sdk.Setting {
	return sdk.Setting{
		Key:         uuid.NewString(),
		Title:       name,
		Value:       ErrorValue,
		Group:       ErrorGroup,
		Description: name + " Extension settings failed to load.",
		Readonly:    true,
	}
}

// guard runs fetch and converts a panic into an error.
func guard(fetch func() ([]sdk.Setting, error)) (settings []sdk.Setting, err error) {
	defer func() {
		if r := recover(); r != nil {
			settings = nil
			err = fmt.Errorf("%w: %v", ErrSourcePanicked, r)
		}
	}()
	return fetch()
}
