/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package component

import (
	"github.com/NVIDIA/deploy-constraints/pkg/restriction"
)

// Pane is an ordered stage of component selection.
type Pane string

const (
	PaneHypervisor        Pane = "hypervisor"
	PaneNetwork           Pane = "network"
	PaneStorage           Pane = "storage"
	PaneAdditionalService Pane = "additional_service"
)

// DefaultPanes is the processing order of the selection wizard.
var DefaultPanes = []Pane{PaneHypervisor, PaneNetwork, PaneStorage, PaneAdditionalService}

// Relation is a compatible/incompatible declaration against a component pattern.
type Relation struct {
	Name    Pattern `json:"name" yaml:"name"`
	Message string  `json:"message,omitempty" yaml:"message,omitempty"`
}

// Component is a static, immutable catalog entry for an optional component.
// Per-pass selection state lives in the Resolver's Overlay, never here.
type Component struct {
	ID           ID               `json:"name" yaml:"name"`
	Label        string           `json:"label,omitempty" yaml:"label,omitempty"`
	Description  string           `json:"description,omitempty" yaml:"description,omitempty"`
	Weight       int              `json:"weight" yaml:"weight"`
	Default      bool             `json:"default,omitempty" yaml:"default,omitempty"`
	Compatible   []Relation       `json:"compatible,omitempty" yaml:"compatible,omitempty"`
	Incompatible []Relation       `json:"incompatible,omitempty" yaml:"incompatible,omitempty"`
	Requires     Requirements     `json:"requires,omitempty" yaml:"requires,omitempty"`
	Restrictions restriction.List `json:"restrictions,omitempty" yaml:"restrictions,omitempty"`
}

// Pane returns the pane the component belongs to.
func (c *Component) Pane() Pane {
	return Pane(c.ID.Type())
}

// GetRestrictions implements restriction.Source.
func (c *Component) GetRestrictions() []restriction.Restriction {
	return c.Restrictions
}
