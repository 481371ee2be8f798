/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package role

import (
	"fmt"
	"log/slog"
	"sort"

	"k8s.io/apimachinery/pkg/util/sets"
)

// Catalog is an id-indexed, weight-ordered set of roles with derived, symmetric
// conflict sets.
type Catalog struct {
	roles map[string]*Role
	order []string

	// Unknown lists conflict declarations that name roles missing from the catalog.
	Unknown []UnknownConflict
}

// UnknownConflict records a conflict declaration naming a role that does not exist.
type UnknownConflict struct {
	Role     string `json:"role" yaml:"role"`
	Conflict string `json:"conflict" yaml:"conflict"`
}

// NewCatalog indexes roles and derives their conflict sets. Duplicate names are
// rejected.
func NewCatalog(roles []*Role) (*Catalog, error) {
	c := &Catalog{roles: make(map[string]*Role, len(roles))}
	for _, r := range roles {
		if r == nil {
			continue
		}
		if r.Name == "" {
			return nil, fmt.Errorf("role without a name")
		}
		if _, dup := c.roles[r.Name]; dup {
			return nil, fmt.Errorf("duplicate role %q", r.Name)
		}
		if r.Label == "" {
			r.Label = DefaultLabel(r.Name)
		}
		c.roles[r.Name] = r
	}
	c.Rebuild()
	return c, nil
}

// Rebuild recomputes ordering and conflict sets. It must be called whenever roles
// are added, removed or their declarations change.
//
// Pass one seeds every role with its own declaration (the wildcard expands to every
// other role). Pass two mirrors each declared edge onto its target, so declaring
// "a conflicts with b" also makes b conflict with a.
func (c *Catalog) Rebuild() {
	c.order = c.order[:0]
	for name := range c.roles {
		c.order = append(c.order, name)
	}
	sort.Slice(c.order, func(i, j int) bool {
		a, b := c.roles[c.order[i]], c.roles[c.order[j]]
		if a.Weight != b.Weight {
			return a.Weight < b.Weight
		}
		return a.Name < b.Name
	})

	all := sets.New(c.order...)
	c.Unknown = nil

	for _, name := range c.order {
		r := c.roles[name]
		r.ConflictsSet = sets.New[string]()
		if r.Declared.All {
			r.ConflictsSet = all.Clone().Delete(name)
			continue
		}
		for _, other := range r.Declared.Names {
			if other == name {
				continue
			}
			if !all.Has(other) {
				c.Unknown = append(c.Unknown, UnknownConflict{Role: name, Conflict: other})
				slog.Warn("role conflicts with unknown role", "role", name, "conflict", other)
				continue
			}
			r.ConflictsSet.Insert(other)
		}
	}

	for _, name := range c.order {
		for _, other := range sets.List(c.roles[name].ConflictsSet) {
			c.roles[other].ConflictsSet.Insert(name)
		}
	}
}

// Add inserts or replaces a role and rebuilds derived state.
func (c *Catalog) Add(r *Role) {
	if r.Label == "" {
		r.Label = DefaultLabel(r.Name)
	}
	c.roles[r.Name] = r
	c.Rebuild()
}

// Remove deletes a role and rebuilds derived state.
func (c *Catalog) Remove(name string) {
	delete(c.roles, name)
	c.Rebuild()
}

// Get returns the named role.
func (c *Catalog) Get(name string) (*Role, bool) {
	r, ok := c.roles[name]
	return r, ok
}

// Names returns role names in weight order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.order...)
}

// List returns roles in weight order.
func (c *Catalog) List() []*Role {
	out := make([]*Role, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.roles[name])
	}
	return out
}

// Len returns the number of roles.
func (c *Catalog) Len() int {
	return len(c.roles)
}

// Blocked describes a role that cannot be added to a node because of roles already
// on it.
type Blocked struct {
	Role string   `json:"role" yaml:"role"`
	By   []string `json:"by" yaml:"by"`
}

// ConflictingRoles returns, in weight order, every role not in selected that
// conflicts with at least one selected role.
func (c *Catalog) ConflictingRoles(selected []string) []Blocked {
	sel := sets.New(selected...)
	var out []Blocked
	for _, name := range c.order {
		if sel.Has(name) {
			continue
		}
		by := sets.List(c.roles[name].ConflictsSet.Intersection(sel))
		if len(by) > 0 {
			out = append(out, Blocked{Role: name, By: by})
		}
	}
	return out
}

// ValidateAssignment returns the pairs of selected roles that conflict with each other.
func (c *Catalog) ValidateAssignment(selected []string) [][2]string {
	var out [][2]string
	for i, a := range selected {
		ra, ok := c.roles[a]
		if !ok {
			continue
		}
		for _, b := range selected[i+1:] {
			if ra.ConflictsWith(b) {
				out = append(out, [2]string{a, b})
			}
		}
	}
	return out
}
