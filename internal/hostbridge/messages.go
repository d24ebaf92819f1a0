package hostbridge

import (
	"time"

	"github.com/nerrad567/gray-logic-extensions/internal/sdk"
)

// deviceInfo is the retained body of graylogic/core/device/{id}/info.
type deviceInfo struct {
	sdk.DeviceState
	Removed bool `json:"removed,omitempty"`
}

// mixinEvent is published on graylogic/core/mixin/{id}/event/{interface}.
type mixinEvent struct {
	MixinID   string        `json:"mixin_id"`
	Interface sdk.Interface `json:"interface"`
	Details   any           `json:"details,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// Settings request operations.
const (
	opGetSettings = "get_settings"
	opPutSetting  = "put_setting"
)

// settingsRequest asks the core for, or to change, a device's settings.
type settingsRequest struct {
	RequestID string `json:"request_id"`
	Op        string `json:"op"`
	Key       string `json:"key,omitempty"`
	Value     any    `json:"value,omitempty"`
	ReplyTo   string `json:"reply_to"`
}

// settingsResponse is the core's reply to a settingsRequest.
type settingsResponse struct {
	RequestID string        `json:"request_id"`
	Settings  []sdk.Setting `json:"settings,omitempty"`
	Error     string        `json:"error,omitempty"`
}
