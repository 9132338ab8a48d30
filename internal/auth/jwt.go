// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/cinematch/internal/config"
)

// Token roles. What each role may call is decided by the Authorizer policy.
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
)

// ValidRole reports whether role can be minted and accepted.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleOperator
}

// ErrAdminDisabled is returned when no JWT secret is configured.
var ErrAdminDisabled = errors.New("admin API is disabled: ADMIN_JWT_SECRET is not set")

// Claims represents JWT claims
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWTManager handles JWT token creation and validation
type JWTManager struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewJWTManager creates a token manager for the admin API. Tokens are signed
// with HS256 using cfg.JWTSecret.
//
// Example:
//
//	manager, err := auth.NewJWTManager(&cfg.Admin)
//	if errors.Is(err, auth.ErrAdminDisabled) {
//	    // leave admin routes unmounted
//	}
func NewJWTManager(cfg *config.AdminConfig) (*JWTManager, error) {
	if !cfg.Enabled() {
		return nil, ErrAdminDisabled
	}
	return &JWTManager{
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.TokenTTL,
		issuer: cfg.Issuer,
		now:    time.Now,
	}, nil
}

// GenerateToken signs an admin token for subject. A ttl <= 0 uses the
// configured token TTL.
func (m *JWTManager) GenerateToken(subject string, ttl time.Duration) (string, error) {
	return m.GenerateRoleToken(subject, RoleAdmin, ttl)
}

// GenerateRoleToken signs a token carrying role.
func (m *JWTManager) GenerateRoleToken(subject, role string, ttl time.Duration) (string, error) {
	if !ValidRole(role) {
		return "", fmt.Errorf("unknown role %q", role)
	}
	if ttl <= 0 {
		ttl = m.ttl
	}
	now := m.now()
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    m.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken checks signature, algorithm, expiry, issuer and role.
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if !ValidRole(claims.Role) {
		return nil, fmt.Errorf("role %q is not allowed", claims.Role)
	}
	return claims, nil
}
