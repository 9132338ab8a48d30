// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/tomtom215/cinematch/internal/cache"
	"github.com/tomtom215/cinematch/internal/events"
	"github.com/tomtom215/cinematch/internal/validation"
)

// Validate checks struct tags first, then the rules that span fields.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}

	validators := []func() error{
		c.validateServer,
		c.validateRecommend,
		c.validateCache,
		c.validateEvents,
		c.validateProduction,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if !c.Server.RateLimitDisabled && c.Server.RateLimitRequests > 0 && c.Server.RateLimitWindow <= 0 {
		return errors.New("server.rate_limit_window must be positive when rate limiting is enabled")
	}
	return nil
}

func (c *Config) validateRecommend() error {
	if err := c.Recommend.ToEngineConfig().Validate(); err != nil {
		return fmt.Errorf("recommend.%w", err)
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.Enabled && c.Cache.Backend == cache.BackendBadger && c.Cache.BadgerDir == "" {
		return errors.New("cache.badger_dir is required for the badger backend")
	}
	return nil
}

func (c *Config) validateEvents() error {
	if c.Events.Backend == events.BackendNATS && !c.Events.NATSEmbedded && c.Events.NATSURL == "" {
		return errors.New("events.nats_url is required for the nats backend unless events.nats_embedded is set")
	}
	return nil
}

// validateProduction rejects settings that are only acceptable during
// development.
func (c *Config) validateProduction() error {
	if c.Server.Environment != "production" {
		return nil
	}
	if c.Server.RateLimitDisabled {
		return errors.New("rate limiting cannot be disabled in production")
	}
	if c.Logging.Format == "console" {
		return errors.New("console log format is not allowed in production")
	}
	return nil
}

// HasWildcardCORS reports whether any origin is allowed.
func (c *Config) HasWildcardCORS() bool {
	return slices.Contains(c.Server.CORSOrigins, "*")
}
