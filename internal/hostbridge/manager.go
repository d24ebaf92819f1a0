package hostbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-extensions/internal/infrastructure/metrics"
	"github.com/nerrad567/gray-logic-extensions/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-extensions/internal/sdk"
)

const (
	defaultRequestTimeout = 5 * time.Second
	defaultQoS            = 1
)

// MQTTClient is the subset of the MQTT client the bridge needs.
// *mqtt.Client satisfies it.
type MQTTClient interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
}

// EventRecorder stores a history of mixin events. Optional.
type EventRecorder interface {
	RecordMixinEvent(mixinID, iface string)
}

// Logger is the logging interface used by the bridge.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// DeviceHandler is called when the core announces or removes a device.
// It runs on the MQTT delivery goroutine and must not block for long.
type DeviceHandler func(ctx context.Context, state sdk.DeviceState, removed bool)

// Config configures a Manager.
type Config struct {
	MQTT MQTTClient

	// Recorder is optional.
	Recorder EventRecorder

	// RequestTimeout bounds settings requests to the core. Defaults to 5s.
	RequestTimeout time.Duration

	// QoS for publishes and subscriptions. Defaults to 1.
	QoS byte

	Logger Logger
}

// Manager is the plugin's view of the core's device manager.
//
// It caches the retained device descriptions the core publishes, forwards
// mixin events to the core, and correlates settings requests with replies.
type Manager struct {
	mqtt     MQTTClient
	recorder EventRecorder
	timeout  time.Duration
	qos      byte
	logger   Logger

	mu      sync.RWMutex
	devices map[string]sdk.DeviceState // by native id

	handlerMu sync.RWMutex
	onDevice  DeviceHandler

	pendingMu sync.Mutex
	pending   map[string]chan settingsResponse
	started   bool
	closed    bool
	ctx       context.Context
}

var _ sdk.DeviceManager = (*Manager)(nil)

// New creates a Manager. Call Start to begin receiving device information.
func New(cfg Config) (*Manager, error) {
	if cfg.MQTT == nil {
		return nil, fmt.Errorf("%w: mqtt client is required", ErrInvalidConfig)
	}

	m := &Manager{
		mqtt:     cfg.MQTT,
		recorder: cfg.Recorder,
		timeout:  cfg.RequestTimeout,
		qos:      cfg.QoS,
		logger:   cfg.Logger,
		devices:  make(map[string]sdk.DeviceState),
		pending:  make(map[string]chan settingsResponse),
		ctx:      context.Background(),
	}
	if m.timeout <= 0 {
		m.timeout = defaultRequestTimeout
	}
	if m.qos == 0 {
		m.qos = defaultQoS
	}
	if m.logger == nil {
		m.logger = noopLogger{}
	}
	return m, nil
}

// OnDevice sets the handler for device announcements. Set it before Start
// so retained announcements are not missed.
func (m *Manager) OnDevice(fn DeviceHandler) {
	m.handlerMu.Lock()
	m.onDevice = fn
	m.handlerMu.Unlock()
}

// Start subscribes to device descriptions and settings replies. ctx is
// handed to the DeviceHandler.
func (m *Manager) Start(ctx context.Context) error {
	m.pendingMu.Lock()
	if m.closed {
		m.pendingMu.Unlock()
		return ErrClosed
	}
	m.ctx = ctx
	m.pendingMu.Unlock()

	topics := mqtt.Topics{}
	if err := m.mqtt.Subscribe(topics.AllSettingsResponses(), m.qos, m.handleSettingsResponse); err != nil {
		return fmt.Errorf("subscribe to settings responses: %w", err)
	}

	m.pendingMu.Lock()
	m.started = true
	m.pendingMu.Unlock()

	if err := m.mqtt.Subscribe(topics.AllDeviceInfo(), m.qos, m.handleDeviceInfo); err != nil {
		return fmt.Errorf("subscribe to device info: %w", err)
	}

	m.logger.Info("host bridge started", "request_timeout", m.timeout)
	return nil
}

// Close unsubscribes and fails every pending request with ErrClosed.
func (m *Manager) Close() error {
	m.pendingMu.Lock()
	if m.closed {
		m.pendingMu.Unlock()
		return nil
	}
	m.closed = true
	started := m.started
	for id, ch := range m.pending {
		close(ch)
		delete(m.pending, id)
	}
	m.pendingMu.Unlock()

	if !started {
		return nil
	}

	topics := mqtt.Topics{}
	var firstErr error
	for _, topic := range []string{topics.AllDeviceInfo(), topics.AllSettingsResponses()} {
		if err := m.mqtt.Unsubscribe(topic); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("unsubscribe %s: %w", topic, err)
		}
	}
	return firstErr
}

// Register adds a device the core will not announce itself, such as the
// plugin's own provider device.
func (m *Manager) Register(state sdk.DeviceState) {
	m.mu.Lock()
	m.devices[state.NativeID] = state.Clone()
	m.mu.Unlock()
}

// DeviceState returns the cached state for nativeID.
func (m *Manager) DeviceState(nativeID string) (sdk.DeviceState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.devices[nativeID]
	if !ok {
		return sdk.DeviceState{}, fmt.Errorf("%w: %s", sdk.ErrDeviceNotFound, nativeID)
	}
	return state.Clone(), nil
}

// Devices returns every cached device state.
func (m *Manager) Devices() []sdk.DeviceState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]sdk.DeviceState, 0, len(m.devices))
	for _, s := range m.devices {
		out = append(out, s.Clone())
	}
	return out
}

// OnMixinEvent publishes a mixin event to the core and records it.
func (m *Manager) OnMixinEvent(ctx context.Context, mixinID string, iface sdk.Interface, details any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(mixinEvent{
		MixinID:   mixinID,
		Interface: iface,
		Details:   details,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encoding mixin event: %w", err)
	}

	topic := mqtt.Topics{}.MixinEvent(mixinID, string(iface))
	err = m.mqtt.Publish(topic, payload, m.qos, false)
	metrics.RecordMixinEvent(string(iface), err)
	if err != nil {
		return fmt.Errorf("publishing mixin event: %w", err)
	}

	if m.recorder != nil {
		m.recorder.RecordMixinEvent(mixinID, string(iface))
	}
	return nil
}

// handleDeviceInfo updates the cache from a retained device description.
// An empty payload (cleared retained message) removes the device.
func (m *Manager) handleDeviceInfo(topic string, payload []byte) error {
	id, ok := mqtt.ParseDeviceInfoTopic(topic)
	if !ok {
		return fmt.Errorf("%w: unexpected topic %s", ErrInvalidPayload, topic)
	}

	info := deviceInfo{Removed: len(payload) == 0}
	if !info.Removed {
		if err := json.Unmarshal(payload, &info); err != nil {
			return fmt.Errorf("%w: device %s: %w", ErrInvalidPayload, id, err)
		}
	}
	if info.NativeID == "" {
		info.NativeID = id
	}
	if info.ID == "" {
		info.ID = id
	}

	m.mu.Lock()
	if info.Removed {
		if cached, ok := m.devices[info.NativeID]; ok {
			info.DeviceState = cached
		}
		delete(m.devices, info.NativeID)
	} else {
		m.devices[info.NativeID] = info.DeviceState.Clone()
	}
	m.mu.Unlock()

	m.logger.Debug("device info received",
		"native_id", info.NativeID,
		"removed", info.Removed,
	)

	m.handlerMu.RLock()
	fn := m.onDevice
	m.handlerMu.RUnlock()
	if fn != nil {
		m.pendingMu.Lock()
		ctx := m.ctx
		m.pendingMu.Unlock()
		fn(ctx, info.DeviceState.Clone(), info.Removed)
	}
	return nil
}
