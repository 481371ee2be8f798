/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package defaults

import "time"

// Catalog timeouts.
const (
	// CatalogLoadTimeout bounds reading and decoding the catalog documents.
	CatalogLoadTimeout = 10 * time.Second
)

// Handler timeouts.
const (
	// ValidationTimeout bounds one validation pass behind an API request.
	ValidationTimeout = 30 * time.Second
)

// Server timeouts.
const (
	ServerReadTimeout     = 10 * time.Second
	ServerWriteTimeout    = 30 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Request limits.
const (
	// MaxRequestBodyBytes caps API request bodies.
	MaxRequestBodyBytes = 1 << 20
)
