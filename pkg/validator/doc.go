/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package validator checks a cluster state against a constraint catalog.
//
// # Overview
//
// A ClusterState describes nodes and their roles, the selected optional
// components, setting values and the network configuration. The validator
// evaluates it in four independent sections:
//
//   - roles: per-role min and max limits (recommended limits only warn),
//     mutually exclusive roles on one node and disable restrictions on assigned
//     roles
//   - components: the staged pane pass over requirements, incompatibilities and
//     restrictions
//   - network: CIDR, gateway, IP range and segmentation checks (skipped when the
//     state carries no network configuration)
//   - settings: typed value checks of enabled groups
//
// # Expression Bindings
//
// Catalog expressions see three models:
//
//	cluster                 name, mode, status, nodes, nodes_<role> and attributes
//	settings                <group>.<setting>.value and <group>.metadata.enabled
//	networking_parameters   the networking parameters of the state
//
// # Usage
//
//	cat, err := catalog.Default()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	st, err := validator.LoadState(ctx, "cluster.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	report, err := validator.New(validator.WithVersion(version)).Validate(ctx, cat, st)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Status: %s\n", report.Summary.Status)
//
// # Report Structure
//
// Report carries the common header, one entry per section and a Summary with
// passed, failed and skipped section counts. The overall status is fail when a
// section failed, warn when only warnings were raised, and pass otherwise.
//
// References to roles or components the catalog lacks fail their section and
// carry a closest-name suggestion.
package validator
