/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package restriction implements conditional rules that disable, hide or otherwise
// gate a setting, role or component.
package restriction

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/deploy-constraints/pkg/expression"
)

// Action is what a fired restriction does to its owner.
type Action string

const (
	ActionDisable Action = "disable"
	ActionHide    Action = "hide"
	ActionNone    Action = "none"
)

// DefaultAction is applied to restrictions declared without an action.
const DefaultAction = ActionDisable

// Restriction is an expanded {condition, action, message} triple.
type Restriction struct {
	Condition string `json:"condition" yaml:"condition"`
	Action    Action `json:"action" yaml:"action"`
	Message   string `json:"message,omitempty" yaml:"message,omitempty"`
}

// UnmarshalYAML accepts the three declaration shapes found in catalog data:
//
//	restrictions:
//	- "cluster.mode == 'ha'"                            # bare condition
//	- "cluster.mode == 'ha'": "Not available in HA"     # condition: message
//	- {condition: "...", action: hide, message: "..."}  # full form
func (r *Restriction) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*r = Restriction{Condition: node.Value, Action: DefaultAction}
		return nil
	case yaml.MappingNode:
		if isShortForm(node) {
			*r = Restriction{
				Condition: node.Content[0].Value,
				Message:   node.Content[1].Value,
				Action:    DefaultAction,
			}
			return nil
		}
		type plain Restriction
		var p plain
		if err := node.Decode(&p); err != nil {
			return err
		}
		if p.Condition == "" {
			return fmt.Errorf("line %d: restriction has no condition", node.Line)
		}
		if p.Action == "" {
			p.Action = DefaultAction
		}
		*r = Restriction(p)
		return nil
	default:
		return fmt.Errorf("line %d: unsupported restriction shape", node.Line)
	}
}

// isShortForm reports whether a mapping is the single-key {condition: message} form.
func isShortForm(node *yaml.Node) bool {
	if len(node.Content) != 2 {
		return false
	}
	switch node.Content[0].Value {
	case "condition", "action", "message":
		return false
	}
	return node.Content[1].Kind == yaml.ScalarNode
}

// Source is anything that carries restrictions.
type Source interface {
	GetRestrictions() []Restriction
}

// List is a Source over a plain slice.
type List []Restriction

// GetRestrictions implements Source.
func (l List) GetRestrictions() []Restriction {
	return l
}

// Result is the outcome of checking a restriction source.
type Result struct {
	// Result is true when at least one applicable restriction fired.
	Result bool `json:"result" yaml:"result"`
	// Message joins the non-empty messages of fired restrictions in declaration order.
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// Check evaluates the restrictions of source against bindings. When actions is
// empty every restriction participates, otherwise only those whose action is listed.
// Check is a pure function of its inputs.
func Check(ev expression.Evaluator, bindings expression.Bindings, source Source, actions ...Action) Result {
	if source == nil {
		return Result{}
	}

	var fired bool
	var messages []string
	for _, r := range source.GetRestrictions() {
		if len(actions) > 0 && !slices.Contains(actions, r.Action) {
			continue
		}
		if !expression.EvaluateBool(ev, r.Condition, bindings) {
			continue
		}
		slog.Debug("restriction fired", "condition", r.Condition, "action", r.Action)
		fired = true
		if r.Message != "" {
			messages = append(messages, r.Message)
		}
	}

	return Result{Result: fired, Message: strings.Join(messages, " ")}
}
