// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/tomtom215/cinematch/internal/logging"
)

type contextKey int

const claimsKey contextKey = iota

// ClaimsFromContext returns the claims stored by RequireAdmin.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*Claims)
	return c, ok
}

// RequireAdmin rejects requests without a valid bearer token. onFail
// writes the rejection so callers keep their own response format.
func (m *JWTManager) RequireAdmin(onFail func(w http.ResponseWriter, r *http.Request, err error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				onFail(w, r, errMissingToken)
				return
			}
			claims, err := m.ValidateToken(token)
			if err != nil {
				logging.Ctx(r.Context()).Warn().Err(err).Msg("Rejected admin token")
				onFail(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
		})
	}
}

type authError string

func (e authError) Error() string { return string(e) }

const errMissingToken = authError("missing bearer token")

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) string {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
