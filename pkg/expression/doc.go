/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package expression is the boundary between the constraint engine and the
// expression language used by restrictions, limits and settings.
//
// # Overview
//
// Conditions such as
//
//	cluster.mode == 'ha'
//	settings.storage.volumes_ceph.value && !settings.storage.volumes_lvm.value
//	size(nodes) > 3
//
// are evaluated against named Bindings. Each binding is a Model exposing an
// attribute tree. The default Evaluator is backed by CEL (cel-go).
//
// # Values
//
// Evaluation yields a tagged Value: either a Scalar (bool, number, string, nil) or a
// Reference to a live model attribute. A bare path like "settings.storage.replicas.value"
// produces a Reference; callers dereference it immediately with Resolve and never pass
// references further.
//
//	v, err := ev.Evaluate("settings.storage.replicas.value", bindings)
//	if err != nil {
//	    return err
//	}
//	n, err := expression.Resolve(v)
package expression
