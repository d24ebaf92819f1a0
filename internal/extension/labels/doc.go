// Package labels is the settings mixin shipped with the extensions plugin.
//
// It lets users give any device an alias, a room and a favourite flag
// without touching the device itself. Attached through
// mixin.SettingsMixinDevice, the keys appear as "labels:alias",
// "labels:room" and "labels:favourite" next to the device's own settings.
package labels
