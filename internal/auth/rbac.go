// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package auth

import (
	_ "embed"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"

	"github.com/tomtom215/cinematch/internal/logging"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// Authorizer decides which token roles may call which admin routes.
type Authorizer struct {
	enforcer *casbin.SyncedEnforcer
}

// NewAuthorizer loads the RBAC model and policy. An empty policyPath uses
// the built-in policy.
func NewAuthorizer(policyPath string) (*Authorizer, error) {
	m, err := model.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	var enforcer *casbin.SyncedEnforcer
	if policyPath != "" {
		if _, statErr := os.Stat(policyPath); statErr != nil {
			return nil, fmt.Errorf("admin policy file: %w", statErr)
		}
		enforcer, err = casbin.NewSyncedEnforcer(m, fileadapter.NewAdapter(policyPath))
	} else {
		enforcer, err = casbin.NewSyncedEnforcer(m)
		if err == nil {
			err = loadPolicyLines(enforcer, embeddedPolicy)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}
	return &Authorizer{enforcer: enforcer}, nil
}

// loadPolicyLines adds "p" and "g" rules from CSV text.
func loadPolicyLines(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		switch {
		case parts[0] == "p" && len(parts) == 4:
			if _, err := enforcer.AddPolicy(parts[1], parts[2], parts[3]); err != nil {
				return fmt.Errorf("failed to add policy %v: %w", parts[1:], err)
			}
		case parts[0] == "g" && len(parts) == 3:
			if _, err := enforcer.AddGroupingPolicy(parts[1], parts[2]); err != nil {
				return fmt.Errorf("failed to add grouping policy %v: %w", parts[1:], err)
			}
		default:
			return fmt.Errorf("malformed policy line %q", line)
		}
	}
	return nil
}

// Allowed reports whether role may perform method on path.
func (a *Authorizer) Allowed(role, path, method string) (bool, error) {
	ok, err := a.enforcer.Enforce(role, path, method)
	if err != nil {
		return false, fmt.Errorf("enforcement failed: %w", err)
	}
	return ok, nil
}

// Authorize checks the role of the claims stored by RequireAdmin against
// the request path and method. It must run after RequireAdmin.
func (a *Authorizer) Authorize(onDenied func(w http.ResponseWriter, r *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				onDenied(w, r)
				return
			}
			allowed, err := a.Allowed(claims.Role, r.URL.Path, r.Method)
			if err != nil {
				logging.Ctx(r.Context()).Error().Err(err).Msg("Authorization check failed")
			}
			if !allowed {
				logging.Ctx(r.Context()).Warn().
					Str("subject", claims.Subject).
					Str("role", claims.Role).
					Str("method", r.Method).
					Msg("Admin request denied by policy")
				onDenied(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
