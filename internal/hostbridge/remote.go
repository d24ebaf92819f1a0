package hostbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/gray-logic-extensions/internal/infrastructure/metrics"
	"github.com/nerrad567/gray-logic-extensions/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-extensions/internal/sdk"
)

// RemoteDevice is a device living in the core. Its settings are read and
// written by request/reply over MQTT.
type RemoteDevice struct {
	manager  *Manager
	nativeID string
}

var _ sdk.Settings = (*RemoteDevice)(nil)

// Remote returns the settings proxy for the device with nativeID.
func (m *Manager) Remote(nativeID string) *RemoteDevice {
	return &RemoteDevice{manager: m, nativeID: nativeID}
}

// NativeID returns the device's native id.
func (d *RemoteDevice) NativeID() string {
	return d.nativeID
}

// GetSettings asks the core for the device's settings.
func (d *RemoteDevice) GetSettings(ctx context.Context) ([]sdk.Setting, error) {
	started := time.Now()
	resp, err := d.manager.request(ctx, d.nativeID, settingsRequest{Op: opGetSettings})
	metrics.ObserveSettingsRequest(opGetSettings, started, err)
	if err != nil {
		return nil, err
	}
	return resp.Settings, nil
}

// PutSetting asks the core to write one of the device's settings.
func (d *RemoteDevice) PutSetting(ctx context.Context, key string, value any) error {
	started := time.Now()
	_, err := d.manager.request(ctx, d.nativeID, settingsRequest{
		Op:    opPutSetting,
		Key:   key,
		Value: value,
	})
	metrics.ObserveSettingsRequest(opPutSetting, started, err)
	return err
}

// request publishes req for nativeID and waits for the matching reply.
func (m *Manager) request(ctx context.Context, nativeID string, req settingsRequest) (settingsResponse, error) {
	req.RequestID = uuid.NewString()
	req.ReplyTo = mqtt.Topics{}.SettingsResponse(req.RequestID)

	ch := make(chan settingsResponse, 1)

	m.pendingMu.Lock()
	switch {
	case m.closed:
		m.pendingMu.Unlock()
		return settingsResponse{}, ErrClosed
	case !m.started:
		m.pendingMu.Unlock()
		return settingsResponse{}, ErrNotStarted
	}
	m.pending[req.RequestID] = ch
	m.pendingMu.Unlock()

	defer m.forget(req.RequestID)

	payload, err := json.Marshal(req)
	if err != nil {
		return settingsResponse{}, fmt.Errorf("encoding settings request: %w", err)
	}
	if err := m.mqtt.Publish(mqtt.Topics{}.SettingsRequest(nativeID), payload, m.qos, false); err != nil {
		return settingsResponse{}, fmt.Errorf("publishing settings request: %w", err)
	}

	timer := time.NewTimer(m.timeout)
	defer timer.Stop()

	select {
	case resp, ok := <-ch:
		if !ok {
			return settingsResponse{}, ErrClosed
		}
		if resp.Error != "" {
			return resp, fmt.Errorf("%w: %s: %s", ErrRemote, nativeID, resp.Error)
		}
		return resp, nil
	case <-timer.C:
		return settingsResponse{}, fmt.Errorf("%w: %s %s after %v", ErrRequestTimeout, req.Op, nativeID, m.timeout)
	case <-ctx.Done():
		return settingsResponse{}, ctx.Err()
	}
}

func (m *Manager) forget(requestID string) {
	m.pendingMu.Lock()
	delete(m.pending, requestID)
	m.pendingMu.Unlock()
}

// handleSettingsResponse delivers a reply to the waiting request. Replies
// nobody waits for (late or foreign) are dropped.
func (m *Manager) handleSettingsResponse(topic string, payload []byte) error {
	requestID, ok := mqtt.ParseSettingsResponseTopic(topic)
	if !ok {
		return fmt.Errorf("%w: unexpected topic %s", ErrInvalidPayload, topic)
	}

	var resp settingsResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return fmt.Errorf("%w: settings response %s: %w", ErrInvalidPayload, requestID, err)
	}
	resp.RequestID = requestID

	m.pendingMu.Lock()
	ch, ok := m.pending[requestID]
	if ok {
		delete(m.pending, requestID)
	}
	m.pendingMu.Unlock()

	if !ok {
		m.logger.Debug("dropping unmatched settings response", "request_id", requestID)
		return nil
	}

	// Buffered with capacity 1 and removed from pending above: never blocks.
	ch <- resp
	return nil
}
