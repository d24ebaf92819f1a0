package sdk

// Interface names a capability a device advertises to the host.
// Mixins are only offered the interfaces the host says the device declares.
type Interface string

// Interfaces understood by the extensions plugin.
const (
	InterfaceSettings    Interface = "Settings"
	InterfaceOnOff       Interface = "OnOff"
	InterfaceBrightness  Interface = "Brightness"
	InterfaceThermometer Interface = "Thermometer"
	InterfaceSensor      Interface = "Sensor"
	InterfaceMixinHost   Interface = "MixinProvider"
)

// SettingType hints the UI which editor to render.
type SettingType string

// Setting types.
const (
	SettingTypeString  SettingType = "string"
	SettingTypeNumber  SettingType = "number"
	SettingTypeBoolean SettingType = "boolean"
)

// Setting is a single user-configurable field shown in the host's settings UI.
//
// Value holds a string, number (float64 after JSON decoding) or bool.
type Setting struct {
	Key         string      `json:"key"`
	Title       string      `json:"title,omitempty"`
	Group       string      `json:"group,omitempty"`
	Description string      `json:"description,omitempty"`
	Type        SettingType `json:"type,omitempty"`
	Value       any         `json:"value,omitempty"`
	Readonly    bool        `json:"readonly,omitempty"`
	Placeholder string      `json:"placeholder,omitempty"`
	Choices     []string    `json:"choices,omitempty"`
}

// DeviceState is the host's last known snapshot of a device.
type DeviceState struct {
	ID               string      `json:"id"`
	NativeID         string      `json:"native_id"`
	Name             string      `json:"name"`
	Interfaces       []Interface `json:"interfaces"`
	ProviderNativeID string      `json:"provider_native_id,omitempty"`
}

// HasInterface reports whether the state declares iface.
func (s DeviceState) HasInterface(iface Interface) bool {
	for _, i := range s.Interfaces {
		if i == iface {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices with s.
func (s DeviceState) Clone() DeviceState {
	cpy := s
	if s.Interfaces != nil {
		cpy.Interfaces = make([]Interface, len(s.Interfaces))
		copy(cpy.Interfaces, s.Interfaces)
	}
	return cpy
}
