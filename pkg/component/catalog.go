/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package component

import (
	"fmt"
	"log/slog"
	"sort"
)

// UnknownReference is a requirement item or relation pattern that resolves to no
// catalog component.
type UnknownReference struct {
	Component ID     `json:"component" yaml:"component"`
	Reference string `json:"reference" yaml:"reference"`
	Kind      string `json:"kind" yaml:"kind"`
}

// Catalog indexes components by id and orders them by pane, weight and id.
// Incompatibilities are expanded through their patterns and made symmetric once,
// at construction.
type Catalog struct {
	panes     []Pane
	paneIndex map[Pane]int
	byID      map[ID]*Component
	order     []ID

	incompatible map[ID]map[ID]string
	compatible   map[ID]map[ID]string

	// Unknown lists references that matched nothing. They are tolerated: unknown
	// requirement items are treated as null during evaluation.
	Unknown []UnknownReference
}

// CatalogOption configures a Catalog.
type CatalogOption func(*Catalog)

// WithPanes overrides the pane processing order.
func WithPanes(panes ...Pane) CatalogOption {
	return func(c *Catalog) {
		c.panes = append([]Pane(nil), panes...)
	}
}

// NewCatalog builds a catalog. Duplicate ids and components whose pane is not part
// of the pane order are rejected.
func NewCatalog(components []*Component, opts ...CatalogOption) (*Catalog, error) {
	c := &Catalog{
		panes:        DefaultPanes,
		byID:         make(map[ID]*Component, len(components)),
		incompatible: make(map[ID]map[ID]string),
		compatible:   make(map[ID]map[ID]string),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.paneIndex = make(map[Pane]int, len(c.panes))
	for i, p := range c.panes {
		c.paneIndex[p] = i
	}

	for _, comp := range components {
		if comp == nil {
			continue
		}
		if comp.ID == "" {
			return nil, fmt.Errorf("component without a name")
		}
		if _, dup := c.byID[comp.ID]; dup {
			return nil, fmt.Errorf("duplicate component %q", comp.ID)
		}
		if _, ok := c.paneIndex[comp.Pane()]; !ok {
			return nil, fmt.Errorf("component %q: unknown pane %q", comp.ID, comp.Pane())
		}
		c.byID[comp.ID] = comp
		c.order = append(c.order, comp.ID)
	}

	sort.Slice(c.order, func(i, j int) bool {
		a, b := c.byID[c.order[i]], c.byID[c.order[j]]
		if pa, pb := c.paneIndex[a.Pane()], c.paneIndex[b.Pane()]; pa != pb {
			return pa < pb
		}
		if a.Weight != b.Weight {
			return a.Weight < b.Weight
		}
		return a.ID < b.ID
	})

	c.expandRelations()
	return c, nil
}

func (c *Catalog) expandRelations() {
	for _, id := range c.order {
		comp := c.byID[id]

		for _, rel := range comp.Incompatible {
			matched := c.Match(rel.Name)
			if len(matched) == 0 {
				c.unknown(id, string(rel.Name), "incompatible")
			}
			for _, other := range matched {
				if other == id {
					continue
				}
				link(c.incompatible, id, other, rel.Message, true)
				link(c.incompatible, other, id, rel.Message, false)
			}
		}

		for _, rel := range comp.Compatible {
			for _, other := range c.Match(rel.Name) {
				if other != id {
					link(c.compatible, id, other, rel.Message, true)
				}
			}
		}

		for _, req := range comp.Requires {
			for _, item := range req.Items {
				if _, ok := c.byID[item]; !ok {
					c.unknown(id, string(item), "requires")
				}
			}
		}
	}
}

func (c *Catalog) unknown(id ID, ref, kind string) {
	c.Unknown = append(c.Unknown, UnknownReference{Component: id, Reference: ref, Kind: kind})
	slog.Warn("component references unknown component", "component", id, "reference", ref, "kind", kind)
}

// link records from→to. A declared edge overwrites a mirrored one, never the reverse.
func link(m map[ID]map[ID]string, from, to ID, message string, declared bool) {
	if m[from] == nil {
		m[from] = make(map[ID]string)
	}
	if _, exists := m[from][to]; exists && !declared {
		return
	}
	m[from][to] = message
}

// Get returns the component with the given id.
func (c *Catalog) Get(id ID) (*Component, bool) {
	comp, ok := c.byID[id]
	return comp, ok
}

// List returns components in processing order.
func (c *Catalog) List() []*Component {
	out := make([]*Component, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// Panes returns the pane processing order.
func (c *Catalog) Panes() []Pane {
	return append([]Pane(nil), c.panes...)
}

// PaneIndex returns the position of p in the processing order, or -1.
func (c *Catalog) PaneIndex(p Pane) int {
	if i, ok := c.paneIndex[p]; ok {
		return i
	}
	return -1
}

// InPane returns the components of pane p in processing order.
func (c *Catalog) InPane(p Pane) []*Component {
	var out []*Component
	for _, id := range c.order {
		if comp := c.byID[id]; comp.Pane() == p {
			out = append(out, comp)
		}
	}
	return out
}

// Match returns the ids matching pattern, in processing order.
func (c *Catalog) Match(p Pattern) []ID {
	var out []ID
	for _, id := range c.order {
		if p.Match(id) {
			out = append(out, id)
		}
	}
	return out
}

// Incompatible returns the message of an incompatibility between a and b.
func (c *Catalog) Incompatible(a, b ID) (string, bool) {
	msg, ok := c.incompatible[a][b]
	return msg, ok
}

// IncompatibleWith returns the ids a is incompatible with, sorted.
func (c *Catalog) IncompatibleWith(a ID) []ID {
	return sortedKeys(c.incompatible[a])
}

// CompatibleWith returns the ids a declares itself compatible with, sorted.
func (c *Catalog) CompatibleWith(a ID) []ID {
	return sortedKeys(c.compatible[a])
}

func sortedKeys(m map[ID]string) []ID {
	out := make([]ID, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IDs returns every component id in processing order.
func (c *Catalog) IDs() []ID {
	return append([]ID(nil), c.order...)
}
