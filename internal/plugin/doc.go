// Package plugin is the mixin provider of the extensions plugin.
//
// The Provider decides which devices it extends, builds a
// mixin.SettingsMixinDevice for each one (backed by the labels mixin and a
// storage bucket), starts it, and releases it when the device goes away or
// the plugin shuts down.
//
//	provider, err := plugin.New(plugin.Config{
//	    NativeID: cfg.Plugin.NativeID,
//	    GroupKey: cfg.Plugin.GroupKey,
//	    Manager:  bridge,
//	    Storage:  func(id string) sdk.Storage { return store.Bucket(id) },
//	    Resolve:  func(s sdk.DeviceState) any { return bridge.Remote(s.NativeID) },
//	})
//	bridge.OnDevice(provider.HandleDevice)
package plugin
