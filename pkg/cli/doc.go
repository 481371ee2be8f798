/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package cli implements the dcctl command-line interface.
//
// # Commands
//
// validate - Validate a cluster state:
//
//	dcctl validate --state cluster.yaml [--catalog DIR] [--format yaml|json|table] [--output FILE] [--fail-on-error]
//
// Runs the roles, components, network and settings sections and prints a
// ValidationReport. With --fail-on-error the command exits with code 2 when the
// report status is fail.
//
// network - Validate a network configuration:
//
//	dcctl network --config network.yaml
//
// limits - Check one role's node count limits:
//
//	dcctl limits --state cluster.yaml --role controller [--reached=false]
//
// catalog - Summarize the catalog:
//
//	dcctl catalog [--catalog DIR]
//
// # Global Flags
//
//	--log-level   debug, info, warn or error (LOG_LEVEL)
//	--debug, -d   shorthand for --log-level debug
//
// # Catalog
//
// The embedded catalog is used unless --catalog (or DC_CATALOG_DIR) names a
// directory; documents missing from that directory fall back to the embedded
// ones. Every document is checked against its JSON Schema before decoding.
//
// # Input
//
// State and network files may be YAML or JSON. "-" reads standard input.
package cli
