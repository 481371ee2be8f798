/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package catalog

import (
	"github.com/NVIDIA/deploy-constraints/pkg/component"
	"github.com/NVIDIA/deploy-constraints/pkg/header"
	"github.com/NVIDIA/deploy-constraints/pkg/limits"
)

// Summary is a read-only view of a catalog for listing.
type Summary struct {
	header.Header `json:",inline" yaml:",inline"`

	Source      string             `json:"source" yaml:"source"`
	Roles       []RoleSummary      `json:"roles" yaml:"roles"`
	Panes       []component.Pane   `json:"panes" yaml:"panes"`
	Components  []ComponentSummary `json:"components" yaml:"components"`
	Settings    []GroupSummary     `json:"settings" yaml:"settings"`
	Diagnostics []Diagnostic       `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// RoleSummary describes one role.
type RoleSummary struct {
	Name      string       `json:"name" yaml:"name"`
	Label     string       `json:"label" yaml:"label"`
	Group     string       `json:"group,omitempty" yaml:"group,omitempty"`
	Conflicts []string     `json:"conflicts,omitempty" yaml:"conflicts,omitempty"`
	Limits    *limits.Spec `json:"limits,omitempty" yaml:"limits,omitempty"`
}

// ComponentSummary describes one component.
type ComponentSummary struct {
	ID           component.ID   `json:"id" yaml:"id"`
	Pane         component.Pane `json:"pane" yaml:"pane"`
	Label        string         `json:"label,omitempty" yaml:"label,omitempty"`
	Default      bool           `json:"default" yaml:"default"`
	Requires     int            `json:"requires,omitempty" yaml:"requires,omitempty"`
	Incompatible []component.ID `json:"incompatible,omitempty" yaml:"incompatible,omitempty"`
}

// GroupSummary describes one settings group.
type GroupSummary struct {
	Name       string   `json:"name" yaml:"name"`
	Label      string   `json:"label,omitempty" yaml:"label,omitempty"`
	Toggleable bool     `json:"toggleable,omitempty" yaml:"toggleable,omitempty"`
	Settings   []string `json:"settings" yaml:"settings"`
}

// Summarize lists roles, components and setting groups in processing order.
func (c *Catalog) Summarize(version string) *Summary {
	s := &Summary{
		Source:      c.Source,
		Panes:       c.Components.Panes(),
		Diagnostics: c.Diagnostics,
	}
	s.Init(header.KindCatalog, header.APIVersionV1Alpha1, version)

	for _, r := range c.Roles.List() {
		s.Roles = append(s.Roles, RoleSummary{
			Name:      r.Name,
			Label:     r.Label,
			Group:     r.Group,
			Conflicts: r.Conflicts(),
			Limits:    r.Limits,
		})
	}

	for _, comp := range c.Components.List() {
		s.Components = append(s.Components, ComponentSummary{
			ID:           comp.ID,
			Pane:         comp.Pane(),
			Label:        comp.Label,
			Default:      comp.Default,
			Requires:     len(comp.Requires),
			Incompatible: c.Components.IncompatibleWith(comp.ID),
		})
	}

	for _, g := range c.Settings.Groups() {
		gs := GroupSummary{Name: g.Name, Label: g.Label, Toggleable: g.Toggleable}
		for _, st := range g.Settings {
			gs.Settings = append(gs.Settings, st.Name)
		}
		s.Settings = append(s.Settings, gs)
	}
	return s
}
