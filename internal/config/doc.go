// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package config provides centralized configuration management for Cinematch.

# Configuration Sources

Configuration is layered with koanf. Later layers override earlier ones:

 1. Built-in defaults (defaultConfig)
 2. A YAML file: CONFIG_PATH, else the first of DefaultConfigPaths that exists
 3. Environment variables, through an explicit name mapping

Before the environment layer is read, a .env file (or DOTENV_PATH) is merged
into the process environment. Variables that are already set are kept.

# Configuration Structure

  - ServerConfig: listen address, timeouts, CORS, rate limits, static files
  - LoggingConfig: zerolog level and format
  - CatalogConfig: snapshot driver, file paths, reload polling
  - DatasetConfig: MovieLens download
  - RecommendConfig: fusion weights, threshold, fuzzy cutoff, limits
  - CacheConfig: response cache backend
  - EventsConfig: event bus backend, gochannel or NATS
  - AdminConfig: JWT secret and role policy for the admin API
  - SupervisorConfig: suture failure handling

# Example config.yaml

	server:
	  port: 8000
	  cors_origins: ["https://movies.example.com"]
	catalog:
	  driver: duckdb
	  reload_interval: 5m
	recommend:
	  min_score: 0.15
	cache:
	  backend: badger

# Validation

Every field is checked with go-playground/validator tags, then cross-field
rules run (for example max_top_n >= default_top_n). Load fails on the first
invalid setting.
*/
package config
