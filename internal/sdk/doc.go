// Package sdk defines the contracts between the extensions plugin and the
// Gray Logic host: device state snapshots, settings, the device manager used
// for mixin notifications, and per-device storage.
//
// The host owns device lifecycle and the settings UI. This package only
// describes the shapes exchanged with it, so that mixins can be written and
// tested without a running core.
package sdk
