// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared process-wide. It reports field names
// from query, json or koanf tags, and adds a notblank rule for strings that
// must contain something other than whitespace. Both HTTP request parameters
// and the loaded configuration are checked through ValidateStruct.
//
// Example usage:
//
//	type RecommendRequest struct {
//	    Title string `query:"title" validate:"required,notblank,max=500"`
//	    Limit int    `query:"limit" validate:"gte=0"`
//	}
//
//	if err := validation.ValidateStruct(&req); err != nil {
//	    apiErr := err.ToAPIError()
//	    // respond with apiErr.Code and apiErr.Message
//	}
package validation
