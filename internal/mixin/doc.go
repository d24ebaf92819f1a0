// Package mixin provides the base for plugin mixins that extend devices
// living in Gray Logic Core.
//
// A mixin wraps an existing device without replacing it. SettingsMixinDevice
// is the common case: it shows the wrapped device's own settings together with
// settings contributed by the mixin, in one list the host UI can render.
//
// # Key namespacing
//
// Mixin settings are rendered with keys of the form "<groupKey>:<key>".
// PutSetting uses that prefix to route writes: prefixed keys go to the mixin
// (prefix stripped), everything else is forwarded untouched to the wrapped
// device.
//
// # Lifecycle
//
//	base, err := mixin.NewDevice(mixin.DeviceConfig{...})
//	m, err := mixin.NewSettingsMixinDevice(base, labels, mixin.Options{
//	    Group:    "Labels",
//	    GroupKey: "labels",
//	})
//	// register m with the owner, then:
//	m.Start(ctx)   // host is told the settings changed
//	...
//	m.Release(ctx) // host is told again on teardown
//
// # Failure handling
//
// GetSettings never fails because of one source. When the wrapped device or
// the mixin cannot produce settings, the failure is logged and replaced by a
// read-only entry in the "Errors" group. Write failures are returned as-is.
package mixin
