/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package defaults provides centralized timeout and limit constants.
//
// # Timeout Categories
//
//   - Catalog timeouts: loading and schema-checking catalog documents
//   - Handler timeouts: for HTTP request processing
//   - Server timeouts: for HTTP server configuration
//
// # Usage
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.ValidationTimeout)
//	defer cancel()
//
// # Timeout Guidelines
//
//   - Catalog loading: 10s, reading local files only
//   - HTTP handlers: 30s per validation
//   - Server shutdown: 30s for graceful shutdown
package defaults
