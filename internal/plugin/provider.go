package plugin

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/nerrad567/gray-logic-extensions/internal/extension/labels"
	"github.com/nerrad567/gray-logic-extensions/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-extensions/internal/infrastructure/metrics"
	"github.com/nerrad567/gray-logic-extensions/internal/mixin"
	"github.com/nerrad567/gray-logic-extensions/internal/sdk"
)

// Config configures a Provider.
type Config struct {
	// NativeID is the provider's own device id. The provider never
	// extends this device.
	NativeID string

	// Group and GroupKey control how mixin settings are presented.
	Group    string
	GroupKey string

	// StorageSuffix is appended to a device's native id to form its
	// storage bucket id. Optional.
	StorageSuffix string

	Manager sdk.DeviceManager

	// Storage returns the storage bucket for a storage native id.
	Storage func(nativeID string) sdk.Storage

	// Resolve returns the device object a mixin wraps for an announced
	// device. Required by HandleDevice only.
	Resolve func(state sdk.DeviceState) any

	// NewSettings builds the mixin contribution. Defaults to the labels mixin.
	NewSettings func(store sdk.Storage) mixin.MixinSettings

	Logger *logging.Logger
}

// Provider owns the active mixin attachments, keyed by device id.
type Provider struct {
	cfg    Config
	base   *logging.Logger // unscoped, for mixin loggers
	logger *logging.Logger

	mu     sync.RWMutex
	mixins map[string]*mixin.SettingsMixinDevice
	closed bool
}

// New creates a Provider.
func New(cfg Config) (*Provider, error) {
	switch {
	case cfg.NativeID == "":
		return nil, fmt.Errorf("%w: native id is required", ErrInvalidConfig)
	case cfg.Manager == nil:
		return nil, fmt.Errorf("%w: device manager is required", ErrInvalidConfig)
	case cfg.Storage == nil:
		return nil, fmt.Errorf("%w: storage is required", ErrInvalidConfig)
	}

	if cfg.NewSettings == nil {
		cfg.NewSettings = func(store sdk.Storage) mixin.MixinSettings {
			return labels.New(store)
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	return &Provider{
		cfg:    cfg,
		base:   logger,
		logger: logger.With("component", "provider"),
		mixins: make(map[string]*mixin.SettingsMixinDevice),
	}, nil
}

// NativeID returns the provider's own native id.
func (p *Provider) NativeID() string {
	return p.cfg.NativeID
}

// CanMixin reports whether the provider extends the device described by state.
func (p *Provider) CanMixin(state sdk.DeviceState) bool {
	if state.ID == "" {
		return false
	}
	if state.NativeID == p.cfg.NativeID {
		return false
	}
	return !state.HasInterface(sdk.InterfaceMixinHost)
}

// Attach extends device with a settings mixin and starts it.
//
// An existing attachment for the same device id is released first.
func (p *Provider) Attach(ctx context.Context, device any, state sdk.DeviceState) (*mixin.SettingsMixinDevice, error) {
	if !p.CanMixin(state) {
		return nil, fmt.Errorf("%w: %s", ErrNotMixable, state.NativeID)
	}

	p.mu.RLock()
	closed := p.closed
	p.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}

	base, err := mixin.NewDevice(mixin.DeviceConfig{
		Device:           device,
		Interfaces:       state.Interfaces,
		State:            state,
		ProviderNativeID: p.cfg.NativeID,
		StorageSuffix:    p.cfg.StorageSuffix,
		Manager:          p.cfg.Manager,
		Logger:           p.base.ForMixin(state.ID, state.Name),
	})
	if err != nil {
		return nil, fmt.Errorf("attaching to %s: %w", state.ID, err)
	}

	bucket := p.cfg.Storage(base.StorageNativeID())
	m, err := mixin.NewSettingsMixinDevice(base, p.cfg.NewSettings(bucket), mixin.Options{
		Group:    p.cfg.Group,
		GroupKey: p.cfg.GroupKey,
	})
	if err != nil {
		return nil, fmt.Errorf("attaching to %s: %w", state.ID, err)
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrClosed
	}
	old := p.mixins[state.ID]
	p.mixins[state.ID] = m
	metrics.SetMixinsActive(len(p.mixins))
	p.mu.Unlock()

	if old != nil {
		old.Release(ctx)
	}
	m.Start(ctx)

	p.logger.Info("mixin attached",
		"mixin_id", state.ID,
		"device", state.Name,
		"replaced", old != nil,
	)
	return m, nil
}

// Detach releases and forgets the mixin for id.
func (p *Provider) Detach(ctx context.Context, id string) error {
	p.mu.Lock()
	m, ok := p.mixins[id]
	delete(p.mixins, id)
	metrics.SetMixinsActive(len(p.mixins))
	p.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrMixinNotFound, id)
	}

	m.Release(ctx)
	p.logger.Info("mixin detached", "mixin_id", id)
	return nil
}

// Mixin returns the active mixin for id.
func (p *Provider) Mixin(id string) (*mixin.SettingsMixinDevice, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	m, ok := p.mixins[id]
	return m, ok
}

// IDs returns the ids of all active mixins, sorted.
func (p *Provider) IDs() []string {
	p.mu.RLock()
	ids := make([]string, 0, len(p.mixins))
	for id := range p.mixins {
		ids = append(ids, id)
	}
	p.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

// Close releases every mixin. Later calls to Attach fail with ErrClosed.
func (p *Provider) Close(ctx context.Context) {
	p.mu.Lock()
	p.closed = true
	mixins := p.mixins
	p.mixins = make(map[string]*mixin.SettingsMixinDevice)
	metrics.SetMixinsActive(0)
	p.mu.Unlock()

	for _, m := range mixins {
		m.Release(ctx)
	}
	p.logger.Info("provider closed", "released", len(mixins))
}

// HandleDevice attaches to announced devices and detaches from removed
// ones. Re-announcements with an unchanged state keep the current mixin.
// It has the shape of hostbridge.DeviceHandler.
func (p *Provider) HandleDevice(ctx context.Context, state sdk.DeviceState, removed bool) {
	if removed {
		if err := p.Detach(ctx, state.ID); err != nil {
			p.logger.Debug("detach skipped", "device_id", state.ID, "error", err)
		}
		return
	}

	if !p.CanMixin(state) {
		return
	}
	if m, ok := p.Mixin(state.ID); ok && sameState(m.State(), state) {
		return
	}
	if p.cfg.Resolve == nil {
		p.logger.Error("cannot attach: no device resolver configured", "device_id", state.ID)
		return
	}

	if _, err := p.Attach(ctx, p.cfg.Resolve(state), state); err != nil {
		p.logger.Error("attach failed", "device_id", state.ID, "error", err)
	}
}

func sameState(a, b sdk.DeviceState) bool {
	return a.ID == b.ID &&
		a.NativeID == b.NativeID &&
		a.Name == b.Name &&
		a.ProviderNativeID == b.ProviderNativeID &&
		slices.Equal(a.Interfaces, b.Interfaces)
}
