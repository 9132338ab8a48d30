// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package logging provides the process-wide zerolog logger for Cinematch.
//
// JSON output is the default; the console format is for development.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Str("driver", "csv").Int("items", n).Msg("Snapshot loaded")
//	logging.Ctx(ctx).Warn().Err(err).Msg("Reload failed")
//
// Packages that outlive a single call take a zerolog.Logger in their
// constructor and add a component field:
//
//	logger = logger.With().Str("component", "dataset").Logger()
//
// # Configuration
//
//	LOG_LEVEL   - trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  - json, console (default: json)
//	LOG_CALLER  - include caller file:line (default: false)
//
// # Request Context
//
// The request ID middleware stores request and correlation IDs in the
// context. Ctx returns the global logger with both attached, and
// ContextWithNewCorrelationID starts a correlation for work that does not
// come from a request, such as a snapshot reload.
//
// # slog Adapter
//
// Suture logs through sutureslog, which needs a *slog.Logger:
//
//	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), cfg)
//
// # Testing
//
//	var buf bytes.Buffer
//	logger := logging.NewTestLogger(&buf)
package logging
