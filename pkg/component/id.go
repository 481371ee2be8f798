/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package component

import "strings"

// Separator delimits component id segments, e.g. "network:neutron:ml2:vlan".
const Separator = ":"

// Any matches exactly one segment in a Pattern.
const Any = "*"

// ID is a colon-delimited component identifier whose first segment is its pane.
type ID string

// Segments splits the id at Separator.
func (id ID) Segments() []string {
	return strings.Split(string(id), Separator)
}

// Type returns the first segment, which names the component's pane.
func (id ID) Type() string {
	t, _, _ := strings.Cut(string(id), Separator)
	return t
}

// Pattern is a component id that may contain "*" segments.
type Pattern string

// Match reports whether id matches p. A pattern without wildcards is a plain
// string equality check. Otherwise id must have at least as many segments as the
// pattern and every non-wildcard pattern segment must equal the id segment at the
// same position.
func (p Pattern) Match(id ID) bool {
	if !strings.Contains(string(p), Any) {
		return string(p) == string(id)
	}

	ps := strings.Split(string(p), Separator)
	is := id.Segments()
	if len(is) < len(ps) {
		return false
	}
	for i, seg := range ps {
		if seg == Any {
			continue
		}
		if seg != is[i] {
			return false
		}
	}
	return true
}
