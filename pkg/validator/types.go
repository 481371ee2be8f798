/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package validator

import (
	"time"

	"github.com/NVIDIA/deploy-constraints/pkg/catalog"
	"github.com/NVIDIA/deploy-constraints/pkg/component"
	"github.com/NVIDIA/deploy-constraints/pkg/header"
	"github.com/NVIDIA/deploy-constraints/pkg/network"
	"github.com/NVIDIA/deploy-constraints/pkg/role"
	"github.com/NVIDIA/deploy-constraints/pkg/settings"
)

// ValidationStatus is the overall outcome of a report.
type ValidationStatus string

const (
	ValidationStatusPass ValidationStatus = "pass"
	// ValidationStatusWarn means valid, with warnings such as unmet recommended limits.
	ValidationStatusWarn ValidationStatus = "warn"
	ValidationStatusFail ValidationStatus = "fail"
)

// Section names a part of the report.
type Section string

const (
	SectionRoles      Section = "roles"
	SectionComponents Section = "components"
	SectionNetwork    Section = "network"
	SectionSettings   Section = "settings"
)

// Sections lists every section in report order.
var Sections = []Section{SectionRoles, SectionComponents, SectionNetwork, SectionSettings}

// SectionStatus is the outcome of one section.
type SectionStatus string

const (
	SectionStatusPassed  SectionStatus = "passed"
	SectionStatusFailed  SectionStatus = "failed"
	SectionStatusSkipped SectionStatus = "skipped"
)

// NodeConflict is a pair of mutually exclusive roles assigned to one node.
type NodeConflict struct {
	Node  string    `json:"node" yaml:"node"`
	Roles [2]string `json:"roles" yaml:"roles"`
}

// UnknownReference is an id used by the cluster state that the catalog lacks.
type UnknownReference struct {
	Kind       string `json:"kind" yaml:"kind"`
	Name       string `json:"name" yaml:"name"`
	Suggestion string `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
}

// RoleReport is the roles section.
type RoleReport struct {
	Status     SectionStatus      `json:"status" yaml:"status"`
	Counts     map[string]int     `json:"counts" yaml:"counts"`
	Limits     *role.Verdict      `json:"limits" yaml:"limits"`
	Conflicts  []NodeConflict     `json:"conflicts,omitempty" yaml:"conflicts,omitempty"`
	Restricted map[string]string  `json:"restricted,omitempty" yaml:"restricted,omitempty"`
	Unknown    []UnknownReference `json:"unknown,omitempty" yaml:"unknown,omitempty"`
}

// ComponentReport is the components section.
type ComponentReport struct {
	Status     SectionStatus         `json:"status" yaml:"status"`
	Selected   []component.ID        `json:"selected" yaml:"selected"`
	Enabled    []component.ID        `json:"enabled" yaml:"enabled"`
	Validation *component.Validation `json:"validation" yaml:"validation"`
	States     component.Overlay     `json:"states,omitempty" yaml:"states,omitempty"`
	Unknown    []UnknownReference    `json:"unknown,omitempty" yaml:"unknown,omitempty"`
}

// NetworkReport is the network section.
type NetworkReport struct {
	Status SectionStatus   `json:"status" yaml:"status"`
	Errors *network.Errors `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// SettingsReport is the settings section.
type SettingsReport struct {
	Status SectionStatus    `json:"status" yaml:"status"`
	Result *settings.Result `json:"result" yaml:"result"`
}

// Summary aggregates section outcomes.
type Summary struct {
	Status   ValidationStatus `json:"status" yaml:"status"`
	Passed   int              `json:"passed" yaml:"passed"`
	Failed   int              `json:"failed" yaml:"failed"`
	Skipped  int              `json:"skipped" yaml:"skipped"`
	Errors   int              `json:"errors" yaml:"errors"`
	Warnings int              `json:"warnings" yaml:"warnings"`
	Duration time.Duration    `json:"duration" yaml:"duration"`
}

// Report is the result of validating a cluster state against a catalog.
type Report struct {
	header.Header `json:",inline" yaml:",inline"`

	ID          string               `json:"id" yaml:"id"`
	Cluster     string               `json:"cluster,omitempty" yaml:"cluster,omitempty"`
	Catalog     string               `json:"catalog" yaml:"catalog"`
	Roles       *RoleReport          `json:"roles,omitempty" yaml:"roles,omitempty"`
	Components  *ComponentReport     `json:"components,omitempty" yaml:"components,omitempty"`
	Network     *NetworkReport       `json:"network,omitempty" yaml:"network,omitempty"`
	Settings    *SettingsReport      `json:"settings,omitempty" yaml:"settings,omitempty"`
	Diagnostics []catalog.Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
	Summary     Summary              `json:"summary" yaml:"summary"`
}

// Valid reports whether no section failed.
func (r *Report) Valid() bool {
	return r.Summary.Status != ValidationStatusFail
}

func statusOf(ok bool) SectionStatus {
	if ok {
		return SectionStatusPassed
	}
	return SectionStatusFailed
}
