// Package api implements the HTTP API of the extensions plugin.
//
// It exposes the active mixins and their merged settings to admin tools:
//
//	GET  /api/v1/health                 no auth
//	GET  /api/v1/metrics                Prometheus metrics, no auth
//	GET  /api/v1/mixins                 list active mixins
//	GET  /api/v1/mixins/{id}/settings   merged device + mixin settings
//	PUT  /api/v1/mixins/{id}/settings   {"key": "...", "value": ...}
//	GET    /api/v1/storage               native ids holding mixin data
//	DELETE /api/v1/storage/{native_id}   drop a device's mixin data
//
// Protected routes require a bearer JWT (HS256) signed with the secret the
// core uses to issue tokens. Reads need settings:read, writes need
// settings:write and the storage routes need storage:manage (see package
// auth for the role mapping).
//
// Errors are JSON bodies of the form {"status":404,"code":"not_found","message":"..."}.
package api
