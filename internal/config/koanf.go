// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/cinematch/config.yaml",
	"/etc/cinematch/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DotEnvPathEnvVar overrides the dotenv file read before the environment layer.
const DotEnvPathEnvVar = "DOTENV_PATH"

// LoadWithKoanf loads configuration using Koanf with layered sources:
//
//  1. Defaults: built-in struct defaults
//  2. Config File: optional YAML file (CONFIG_PATH or DefaultConfigPaths)
//  3. Environment Variables: override any mapped setting
//
// A .env file, when present, is merged into the process environment first.
// Variables already set in the environment win over the file.
func LoadWithKoanf() (*Config, error) {
	return LoadFile(findConfigFile())
}

// LoadFile is LoadWithKoanf with an explicit config file. An empty path
// skips the file layer; a non-empty path must exist.
func LoadFile(configPath string) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadDotEnv reads DOTENV_PATH or ./.env into the environment. A missing
// file is not an error.
func loadDotEnv() error {
	path := os.Getenv(DotEnvPathEnvVar)
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
// Unmapped variables are ignored so unrelated environment does not leak
// into the config.
var envMappings = map[string]string{
	// Server
	"http_host":           "server.host",
	"http_port":           "server.port",
	"http_read_timeout":   "server.read_timeout",
	"http_write_timeout":  "server.write_timeout",
	"http_idle_timeout":   "server.idle_timeout",
	"shutdown_timeout":    "server.shutdown_timeout",
	"static_dir":          "server.static_dir",
	"cors_origins":        "server.cors_origins",
	"rate_limit_requests": "server.rate_limit_requests",
	"rate_limit_window":   "server.rate_limit_window",
	"disable_rate_limit":  "server.rate_limit_disabled",
	"environment":         "server.environment",
	"websocket_enabled":   "server.websocket_enabled",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Catalog
	"catalog_driver":  "catalog.driver",
	"movies_path":     "catalog.movies_path",
	"ratings_path":    "catalog.ratings_path",
	"reload_interval": "catalog.reload_interval",

	// Dataset
	"dataset_url":              "dataset.url",
	"data_dir":                 "dataset.data_dir",
	"auto_fetch":               "dataset.auto_fetch",
	"dataset_timeout":          "dataset.timeout",
	"dataset_max_attempts":     "dataset.max_attempts",
	"dataset_retry_per_second": "dataset.retry_per_second",

	// Recommendation engine
	"recommend_content_weight":       "recommend.content_weight",
	"recommend_collaborative_weight": "recommend.collaborative_weight",
	"recommend_min_score":            "recommend.min_score",
	"recommend_fuzzy_cutoff":         "recommend.fuzzy_cutoff",
	"recommend_default_top_n":        "recommend.default_top_n",
	"recommend_max_top_n":            "recommend.max_top_n",
	"recommend_candidate_multiplier": "recommend.candidate_multiplier",
	"recommend_workers":              "recommend.workers",

	// Response cache
	"cache_enabled":    "cache.enabled",
	"cache_backend":    "cache.backend",
	"cache_capacity":   "cache.capacity",
	"cache_ttl":        "cache.ttl",
	"cache_badger_dir": "cache.badger_dir",

	// Event bus
	"events_backend": "events.backend",
	"events_buffer":  "events.buffer",
	"nats_url":       "events.nats_url",
	"nats_embedded":  "events.nats_embedded",
	"nats_host":      "events.nats_host",
	"nats_port":      "events.nats_port",

	// Admin API
	"admin_jwt_secret":  "admin.jwt_secret",
	"admin_token_ttl":   "admin.token_ttl",
	"admin_issuer":      "admin.issuer",
	"admin_policy_path": "admin.policy_path",

	// Supervisor
	"supervisor_failure_threshold": "supervisor.failure_threshold",
	"supervisor_failure_decay":     "supervisor.failure_decay",
	"supervisor_failure_backoff":   "supervisor.failure_backoff",
	"supervisor_shutdown_timeout":  "supervisor.shutdown_timeout",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - MOVIES_PATH -> catalog.movies_path
//   - RECOMMEND_MIN_SCORE -> recommend.min_score
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
