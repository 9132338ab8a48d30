// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package auth issues and checks the HS256 bearer tokens that guard the
// admin API. There are no user accounts: a token is valid when it is signed
// with the configured secret, carries a known role and has not expired.
//
// RequireAdmin authenticates the token. Authorizer then checks the token's
// role against a casbin RBAC policy of (role, path pattern, method) rules:
//
//	p, operator, /api/v1/admin/status, GET
//	p, admin, /api/v1/admin/*, POST
//	g, admin, operator
//
// The policy is built in; ADMIN_POLICY_PATH replaces it with a casbin CSV
// file using the same model.
package auth
