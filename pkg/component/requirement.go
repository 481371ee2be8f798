/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package component

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Predicate is the closed set of requirement predicates.
type Predicate int

const (
	OneOf Predicate = iota + 1
	NoneOf
	AnyOf
	AllOf
)

var predicateNames = map[Predicate]string{
	OneOf:  "one_of",
	NoneOf: "none_of",
	AnyOf:  "any_of",
	AllOf:  "all_of",
}

// String returns the catalog spelling of the predicate.
func (p Predicate) String() string {
	if s, ok := predicateNames[p]; ok {
		return s
	}
	return fmt.Sprintf("Predicate(%d)", int(p))
}

// ParsePredicate parses the catalog spelling of a predicate.
func ParsePredicate(s string) (Predicate, bool) {
	for p, name := range predicateNames {
		if name == s {
			return p, true
		}
	}
	return 0, false
}

// MarshalText implements encoding.TextMarshaler.
func (p Predicate) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Requirement is a normalized dependency of a component on other components.
type Requirement struct {
	Predicate      Predicate `json:"predicate" yaml:"predicate"`
	Items          []ID      `json:"items" yaml:"items"`
	Message        string    `json:"message,omitempty" yaml:"message,omitempty"`
	MessageInvalid string    `json:"messageInvalid,omitempty" yaml:"message_invalid,omitempty"`
}

// FailureMessage returns the message shown when the requirement is not met.
func (r Requirement) FailureMessage(invalid bool) string {
	if invalid && r.MessageInvalid != "" {
		return r.MessageInvalid
	}
	return r.Message
}

// RawGroup is the body of a predicate-keyed requirement declaration.
type RawGroup struct {
	Items          []ID   `yaml:"items"`
	Message        string `yaml:"message,omitempty"`
	MessageInvalid string `yaml:"message_invalid,omitempty"`
}

// RawRequirement is one entry of a `requires` list as written in catalog data.
// Exactly one of the shapes is set:
//
//	requires:
//	- component_name: hypervisor:qemu      # legacy flat form
//	  message: QEMU is required
//	- one_of:                              # predicate form
//	    items: [network:neutron:ml2:vlan, network:neutron:ml2:tun]
//	    message: ...
//	    message_invalid: ...
type RawRequirement struct {
	ComponentName ID        `yaml:"component_name,omitempty"`
	Message       string    `yaml:"message,omitempty"`
	OneOf         *RawGroup `yaml:"one_of,omitempty"`
	NoneOf        *RawGroup `yaml:"none_of,omitempty"`
	AnyOf         *RawGroup `yaml:"any_of,omitempty"`
	AllOf         *RawGroup `yaml:"all_of,omitempty"`
}

func (r RawRequirement) isLegacy() bool {
	return r.ComponentName != ""
}

func (r RawRequirement) group() (Predicate, *RawGroup, error) {
	var found []Predicate
	var g *RawGroup
	for p, cand := range map[Predicate]*RawGroup{OneOf: r.OneOf, NoneOf: r.NoneOf, AnyOf: r.AnyOf, AllOf: r.AllOf} {
		if cand != nil {
			found = append(found, p)
			g = cand
		}
	}
	if len(found) != 1 {
		return 0, nil, fmt.Errorf("requirement must declare exactly one of one_of, none_of, any_of, all_of or component_name")
	}
	return found[0], g, nil
}

// Normalize converts declarations into tagged requirements. All legacy entries are
// folded into a single all_of requirement placed first, with their messages joined.
// Normalize is idempotent: Normalize(Denormalize(Normalize(x))) equals Normalize(x).
func Normalize(raw []RawRequirement) ([]Requirement, error) {
	var legacy *Requirement
	var out []Requirement
	var legacyMessages []string

	for i, r := range raw {
		if r.isLegacy() {
			if r.OneOf != nil || r.NoneOf != nil || r.AnyOf != nil || r.AllOf != nil {
				return nil, fmt.Errorf("requirement %d: component_name cannot be combined with a predicate", i)
			}
			if legacy == nil {
				legacy = &Requirement{Predicate: AllOf}
			}
			legacy.Items = append(legacy.Items, r.ComponentName)
			if r.Message != "" {
				legacyMessages = append(legacyMessages, r.Message)
			}
			continue
		}

		p, g, err := r.group()
		if err != nil {
			return nil, fmt.Errorf("requirement %d: %w", i, err)
		}
		out = append(out, Requirement{
			Predicate:      p,
			Items:          append([]ID(nil), g.Items...),
			Message:        g.Message,
			MessageInvalid: g.MessageInvalid,
		})
	}

	if legacy != nil {
		legacy.Message = strings.Join(legacyMessages, " ")
		out = append([]Requirement{*legacy}, out...)
	}
	return out, nil
}

// Denormalize renders requirements back into predicate-form declarations.
func Denormalize(reqs []Requirement) []RawRequirement {
	out := make([]RawRequirement, 0, len(reqs))
	for _, r := range reqs {
		g := &RawGroup{Items: append([]ID(nil), r.Items...), Message: r.Message, MessageInvalid: r.MessageInvalid}
		var raw RawRequirement
		switch r.Predicate {
		case OneOf:
			raw.OneOf = g
		case NoneOf:
			raw.NoneOf = g
		case AnyOf:
			raw.AnyOf = g
		default:
			raw.AllOf = g
		}
		out = append(out, raw)
	}
	return out
}

// Requirements is a normalized requires list; it decodes both declaration shapes.
type Requirements []Requirement

// UnmarshalYAML implements yaml.Unmarshaler.
func (rs *Requirements) UnmarshalYAML(node *yaml.Node) error {
	var raw []RawRequirement
	if err := node.Decode(&raw); err != nil {
		return err
	}
	reqs, err := Normalize(raw)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*rs = reqs
	return nil
}

// MarshalYAML implements yaml.Marshaler using the predicate form.
func (rs Requirements) MarshalYAML() (any, error) {
	return Denormalize(rs), nil
}
