// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Command cinematch is the operator CLI. It reads the same configuration as
// the server and works directly on the snapshot files:
//
//	cinematch fetch [--force]                     download ml-latest-small into dataset.data_dir
//	cinematch recommend <title> [--limit]         build the engine and print recommendations
//	cinematch resolve <title>                     show which catalog title a query maps to
//	cinematch token [--ttl] [--subject] [--role]  mint an admin API bearer token
package main
