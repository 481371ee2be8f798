/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package role

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/NVIDIA/deploy-constraints/pkg/limits"
	"github.com/NVIDIA/deploy-constraints/pkg/restriction"
)

// Wildcard in a conflicts declaration means "conflicts with every other role".
const Wildcard = "*"

// Conflicts is the one-sided conflicts declaration of a role: either the wildcard or
// a list of role names.
type Conflicts struct {
	All   bool
	Names []string
}

// UnmarshalYAML accepts `conflicts: "*"` and `conflicts: [a, b]`.
func (c *Conflicts) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Value != Wildcard {
			return fmt.Errorf("line %d: conflicts must be %q or a list of role names", node.Line, Wildcard)
		}
		*c = Conflicts{All: true}
		return nil
	case yaml.SequenceNode:
		var names []string
		if err := node.Decode(&names); err != nil {
			return err
		}
		out := Conflicts{}
		for _, n := range names {
			if n == Wildcard {
				out.All = true
				continue
			}
			out.Names = append(out.Names, n)
		}
		*c = out
		return nil
	default:
		return fmt.Errorf("line %d: unsupported conflicts shape", node.Line)
	}
}

// MarshalYAML implements yaml.Marshaler.
func (c Conflicts) MarshalYAML() (any, error) {
	if c.All {
		return Wildcard, nil
	}
	return c.Names, nil
}

// Role is a static catalog entry describing a node role.
type Role struct {
	Name         string           `json:"name" yaml:"name"`
	Label        string           `json:"label" yaml:"label"`
	Description  string           `json:"description,omitempty" yaml:"description,omitempty"`
	Weight       int              `json:"weight" yaml:"weight"`
	Limits       *limits.Spec     `json:"limits,omitempty" yaml:"limits,omitempty"`
	Declared     Conflicts        `json:"-" yaml:"conflicts,omitempty"`
	Restrictions restriction.List `json:"restrictions,omitempty" yaml:"restrictions,omitempty"`
	Group        string           `json:"group,omitempty" yaml:"group,omitempty"`
	ConflictsSet sets.Set[string] `json:"-" yaml:"-"`
}

// GetRestrictions implements restriction.Source.
func (r *Role) GetRestrictions() []restriction.Restriction {
	return r.Restrictions
}

// Conflicts returns the sorted derived conflict set.
func (r *Role) Conflicts() []string {
	return sets.List(r.ConflictsSet)
}

// ConflictsWith reports whether r may not share a node with other.
func (r *Role) ConflictsWith(other string) bool {
	return r.ConflictsSet.Has(other)
}

// DefaultLabel derives a display label from a role name, e.g. "ceph-osd" -> "Ceph Osd".
func DefaultLabel(name string) string {
	// a Caser is stateful and must not be shared between goroutines
	return cases.Title(language.English).String(strings.NewReplacer("-", " ", "_", " ").Replace(name))
}
