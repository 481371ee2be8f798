/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package limits checks min/max/recommended cardinality bounds of a countable group,
// typically the nodes assigned a role.
//
// # Bounds
//
// Each bound is a literal number or an expression evaluated against bindings:
//
//	limits:
//	  min: 1
//	  max: "cluster.mode == 'ha' ? 3 : 1"
//	  recommended: settings.storage.replicas.value
//	  overrides:
//	    - condition: "settings.storage.ceph.value"
//	      min: 3
//	      message: "Ceph requires at least three storage nodes."
//
// Overrides are evaluated in declaration order. The first matching override that
// resolves a bound of a type shadows later overrides and the global bound of that
// type, for that evaluation only; the Spec itself is never mutated. An override
// bound that cannot be resolved leaves the type to the next source.
//
// # Comparators
//
// Limits are checked in two modes selected by WithLimitReached:
//
//	bound        reached=true    reached=false
//	min          count <  min    count <= min
//	max          count >  max    count >= max
//	recommended  count <  rec    count <  rec
//
// "reached=true" answers whether the current configuration is valid, "reached=false"
// whether one more unit may still be added or removed.
//
// # Messages
//
// One message is kept per bound type: the largest limit for min and recommended, the
// smallest for max. Messages are joined with a space in bound type order and the
// result is valid iff the joined message is empty.
package limits
