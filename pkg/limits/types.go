/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package limits

import (
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// BoundType names one of the three cardinality bounds.
type BoundType string

const (
	Min         BoundType = "min"
	Max         BoundType = "max"
	Recommended BoundType = "recommended"
)

// AllBoundTypes is the default evaluation (and message) order.
var AllBoundTypes = []BoundType{Min, Max, Recommended}

// Bound is either a literal number or an expression evaluated against bindings.
type Bound struct {
	literal    *int
	expression string
}

// Literal returns a literal bound.
func Literal(n int) *Bound {
	return &Bound{literal: &n}
}

// Expr returns an expression bound.
func Expr(source string) *Bound {
	return &Bound{expression: source}
}

// IsLiteral reports whether b is a literal number.
func (b *Bound) IsLiteral() bool {
	return b != nil && b.literal != nil
}

// String returns the literal or the expression source.
func (b *Bound) String() string {
	if b == nil {
		return ""
	}
	if b.literal != nil {
		return strconv.Itoa(*b.literal)
	}
	return b.expression
}

// UnmarshalYAML decodes integers as literals and strings as expressions.
func (b *Bound) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: limit must be a number or an expression", node.Line)
	}
	switch node.Tag {
	case "!!int", "!!float":
		f, err := strconv.ParseFloat(node.Value, 64)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		n := int(f)
		*b = Bound{literal: &n}
	default:
		*b = Bound{expression: node.Value}
	}
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (b *Bound) MarshalYAML() (any, error) {
	if b.literal != nil {
		return *b.literal, nil
	}
	return b.expression, nil
}

// MarshalJSON implements json.Marshaler.
func (b *Bound) MarshalJSON() ([]byte, error) {
	if b.literal != nil {
		return json.Marshal(*b.literal)
	}
	return json.Marshal(b.expression)
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *Bound) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		i := int(n)
		*b = Bound{literal: &i}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("limit must be a number or an expression: %w", err)
	}
	*b = Bound{expression: s}
	return nil
}

// Override replaces global bounds while its condition holds.
type Override struct {
	Condition   string `json:"condition" yaml:"condition"`
	Min         *Bound `json:"min,omitempty" yaml:"min,omitempty"`
	Max         *Bound `json:"max,omitempty" yaml:"max,omitempty"`
	Recommended *Bound `json:"recommended,omitempty" yaml:"recommended,omitempty"`
	Message     string `json:"message,omitempty" yaml:"message,omitempty"`
}

// Spec holds the min/max/recommended bounds of a countable group.
type Spec struct {
	Min         *Bound     `json:"min,omitempty" yaml:"min,omitempty"`
	Max         *Bound     `json:"max,omitempty" yaml:"max,omitempty"`
	Recommended *Bound     `json:"recommended,omitempty" yaml:"recommended,omitempty"`
	Overrides   []Override `json:"overrides,omitempty" yaml:"overrides,omitempty"`
}

func (s *Spec) bound(t BoundType) *Bound {
	switch t {
	case Min:
		return s.Min
	case Max:
		return s.Max
	case Recommended:
		return s.Recommended
	}
	return nil
}

func (o *Override) bound(t BoundType) *Bound {
	switch t {
	case Min:
		return o.Min
	case Max:
		return o.Max
	case Recommended:
		return o.Recommended
	}
	return nil
}

// Values are the effective (resolved) bounds of one evaluation. Nil means unbounded.
type Values struct {
	Min         *int `json:"min" yaml:"min"`
	Max         *int `json:"max" yaml:"max"`
	Recommended *int `json:"recommended" yaml:"recommended"`
}

func (v *Values) set(t BoundType, n int) {
	switch t {
	case Min:
		v.Min = &n
	case Max:
		v.Max = &n
	case Recommended:
		v.Recommended = &n
	}
}

// Get returns the effective bound of type t.
func (v Values) Get(t BoundType) *int {
	switch t {
	case Min:
		return v.Min
	case Max:
		return v.Max
	case Recommended:
		return v.Recommended
	}
	return nil
}

// Result is the verdict of a limit check.
type Result struct {
	Count   int    `json:"count" yaml:"count"`
	Limits  Values `json:"limits" yaml:"limits"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
	Valid   bool   `json:"valid" yaml:"valid"`
}

// Countable is an element of a counted group, typically a node.
type Countable interface {
	// HasRole reports whether the element carries (or is scheduled to carry) role.
	HasRole(role string) bool
	// PendingDeletion reports whether the element is scheduled for removal.
	PendingDeletion() bool
}

// Count returns how many elements carry role and are not pending deletion.
func Count[N Countable](nodes []N, role string) int {
	n := 0
	for _, node := range nodes {
		if node.HasRole(role) && !node.PendingDeletion() {
			n++
		}
	}
	return n
}
