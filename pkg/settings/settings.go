/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package settings

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/NVIDIA/deploy-constraints/pkg/restriction"
)

// Type is the widget type of a setting.
type Type string

const (
	TypeText     Type = "text"
	TypePassword Type = "password"
	TypeTextArea Type = "textarea"
	TypeCheckbox Type = "checkbox"
	TypeRadio    Type = "radio"
	TypeSelect   Type = "select"
	TypeNumber   Type = "number"
	TypeHidden   Type = "hidden"
)

// MetadataKey is the reserved group entry holding group-level state such as
// "enabled" for toggleable groups.
const MetadataKey = "metadata"

// Regex constrains a text value.
type Regex struct {
	Source string `json:"source" yaml:"source"`
	Error  string `json:"error" yaml:"error"`

	re *regexp.Regexp
}

// Option is one choice of a radio or select setting.
type Option struct {
	Data         string           `json:"data" yaml:"data"`
	Label        string           `json:"label,omitempty" yaml:"label,omitempty"`
	Restrictions restriction.List `json:"restrictions,omitempty" yaml:"restrictions,omitempty"`
}

// GetRestrictions implements restriction.Source.
func (o Option) GetRestrictions() []restriction.Restriction {
	return o.Restrictions
}

// Setting is a single configurable value.
type Setting struct {
	Name         string           `json:"name" yaml:"name"`
	Label        string           `json:"label,omitempty" yaml:"label,omitempty"`
	Description  string           `json:"description,omitempty" yaml:"description,omitempty"`
	Type         Type             `json:"type" yaml:"type"`
	Weight       int              `json:"weight" yaml:"weight"`
	Value        any              `json:"value,omitempty" yaml:"value,omitempty"`
	Regex        *Regex           `json:"regex,omitempty" yaml:"regex,omitempty"`
	Min          *float64         `json:"min,omitempty" yaml:"min,omitempty"`
	Max          *float64         `json:"max,omitempty" yaml:"max,omitempty"`
	Values       []Option         `json:"values,omitempty" yaml:"values,omitempty"`
	Restrictions restriction.List `json:"restrictions,omitempty" yaml:"restrictions,omitempty"`
}

// GetRestrictions implements restriction.Source.
func (s *Setting) GetRestrictions() []restriction.Restriction {
	return s.Restrictions
}

// Group is a named set of settings.
type Group struct {
	Name         string           `json:"name" yaml:"name"`
	Label        string           `json:"label,omitempty" yaml:"label,omitempty"`
	Weight       int              `json:"weight" yaml:"weight"`
	Toggleable   bool             `json:"toggleable,omitempty" yaml:"toggleable,omitempty"`
	Enabled      bool             `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Restrictions restriction.List `json:"restrictions,omitempty" yaml:"restrictions,omitempty"`
	Settings     []*Setting       `json:"settings" yaml:"settings"`
}

// GetRestrictions implements restriction.Source.
func (g *Group) GetRestrictions() []restriction.Restriction {
	return g.Restrictions
}

// Catalog is an ordered, immutable set of setting groups.
type Catalog struct {
	groups []*Group
	byName map[string]*Group
}

// NewCatalog indexes groups, compiles regexes and orders groups and settings by
// weight then name.
func NewCatalog(groups []*Group) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]*Group, len(groups))}
	for _, g := range groups {
		if g == nil {
			continue
		}
		if g.Name == "" || g.Name == MetadataKey {
			return nil, fmt.Errorf("invalid settings group name %q", g.Name)
		}
		if _, dup := c.byName[g.Name]; dup {
			return nil, fmt.Errorf("duplicate settings group %q", g.Name)
		}
		seen := make(map[string]bool, len(g.Settings))
		for _, s := range g.Settings {
			if s.Name == "" || s.Name == MetadataKey {
				return nil, fmt.Errorf("group %q: invalid setting name %q", g.Name, s.Name)
			}
			if seen[s.Name] {
				return nil, fmt.Errorf("group %q: duplicate setting %q", g.Name, s.Name)
			}
			seen[s.Name] = true
			if s.Regex != nil {
				re, err := regexp.Compile(s.Regex.Source)
				if err != nil {
					return nil, fmt.Errorf("setting %s.%s: invalid regex: %w", g.Name, s.Name, err)
				}
				s.Regex.re = re
			}
		}
		sort.SliceStable(g.Settings, func(i, j int) bool {
			if g.Settings[i].Weight != g.Settings[j].Weight {
				return g.Settings[i].Weight < g.Settings[j].Weight
			}
			return g.Settings[i].Name < g.Settings[j].Name
		})
		c.byName[g.Name] = g
		c.groups = append(c.groups, g)
	}
	sort.SliceStable(c.groups, func(i, j int) bool {
		if c.groups[i].Weight != c.groups[j].Weight {
			return c.groups[i].Weight < c.groups[j].Weight
		}
		return c.groups[i].Name < c.groups[j].Name
	})
	return c, nil
}

// Groups returns groups in display order.
func (c *Catalog) Groups() []*Group {
	return append([]*Group(nil), c.groups...)
}

// Group returns the group with the given name.
func (c *Catalog) Group(name string) (*Group, bool) {
	g, ok := c.byName[name]
	return g, ok
}

// Setting returns a setting by group and name.
func (c *Catalog) Setting(group, name string) (*Setting, bool) {
	g, ok := c.byName[group]
	if !ok {
		return nil, false
	}
	for _, s := range g.Settings {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// Len returns the number of settings across all groups.
func (c *Catalog) Len() int {
	n := 0
	for _, g := range c.groups {
		n += len(g.Settings)
	}
	return n
}
