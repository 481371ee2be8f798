/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package server hosts the HTTP API.
//
// System endpoints (/, /health, /ready, /metrics) are served directly. API
// handlers registered with WithHandler run behind a middleware chain that
// assigns request ids, negotiates the API version, applies a global token
// bucket rate limit (golang.org/x/time/rate), caps request bodies and records
// Prometheus metrics.
//
// Errors are returned as ErrorResponse bodies. StructuredError codes from
// pkg/errors map to HTTP statuses through HTTPStatusFromCode.
package server
