/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package component models optional deployment components (hypervisor, network
// plugins, storage backends, additional services) and resolves the requirements
// and incompatibilities between them.
//
// Components are grouped into panes that are processed in a fixed order. A
// requirement is evaluated relative to the current pane: items in earlier or
// equal panes are processed, items in later panes are forthcoming. While a
// one_of or any_of requirement has no enabled processed item but at least one
// forthcoming item, it stays provisionally satisfied.
//
// The Catalog is immutable once built. Per-pass state is held in an Overlay
// owned by a Resolver and is recomputed from scratch on each Reset:
//
//	cat, _ := component.NewCatalog(components)
//	r := component.NewResolver(cat, expression.NewCELEvaluator())
//	_ = r.Select("hypervisor:qemu", "network:neutron:ml2:vlan")
//	v, err := r.Run(bindings)
//
// Requirement declarations accept both the legacy flat form
// (component_name/message) and the predicate form (one_of, none_of, any_of,
// all_of). Legacy entries are normalized once into a single all_of requirement.
package component
