// Package auth verifies the access tokens the Gray Logic core issues and
// maps their roles to what the extensions API allows.
//
// The plugin never issues tokens for users. Tokens are HS256 JWTs signed
// with the secret shared with the core, and must carry a subject, a role
// and an expiry. GenerateToken exists for service tokens and tests.
//
// Roles follow the core's tiers (panel, user, admin, owner). Permissions
// are a static mapping:
//
//	settings:read    panel, user, admin, owner
//	settings:write   user, admin, owner
//	storage:manage   admin, owner
package auth
