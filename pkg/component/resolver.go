/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package component

import (
	"fmt"
	"log/slog"
	"strings"

	cerrors "github.com/NVIDIA/deploy-constraints/pkg/errors"
	"github.com/NVIDIA/deploy-constraints/pkg/expression"
	"github.com/NVIDIA/deploy-constraints/pkg/restriction"
)

// State is the per-pass validation state of one component.
type State struct {
	Enabled     bool     `json:"enabled" yaml:"enabled"`
	Disabled    bool     `json:"disabled" yaml:"disabled"`
	Hidden      bool     `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	Warnings    string   `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Reasons     []string `json:"reasons,omitempty" yaml:"reasons,omitempty"`
	RequireFail bool     `json:"requireFail,omitempty" yaml:"requireFail,omitempty"`
	Invalid     bool     `json:"invalid,omitempty" yaml:"invalid,omitempty"`
}

func (s *State) clone() *State {
	c := *s
	c.Reasons = append([]string(nil), s.Reasons...)
	return &c
}

// Overlay maps component ids to their state for one validation pass.
type Overlay map[ID]*State

// Resolver evaluates requirements, incompatibilities and restrictions of a catalog
// pane by pane. The catalog is never mutated; all results live in the overlay,
// which Reset recomputes from scratch.
//
// A Resolver is not safe for concurrent use: successive passes over the same
// overlay must be serialized by the caller.
type Resolver struct {
	catalog *Catalog
	ev      expression.Evaluator
	state   Overlay
}

// NewResolver returns a Resolver with catalog defaults selected.
func NewResolver(catalog *Catalog, ev expression.Evaluator) *Resolver {
	r := &Resolver{catalog: catalog, ev: ev}
	r.Reset()
	return r
}

// Reset discards the overlay and re-seeds it from catalog defaults.
func (r *Resolver) Reset() {
	r.state = make(Overlay, len(r.catalog.order))
	for _, id := range r.catalog.order {
		r.state[id] = &State{Enabled: r.catalog.byID[id].Default}
	}
}

// Select resets the overlay and enables exactly the given components.
func (r *Resolver) Select(ids ...ID) error {
	r.Reset()
	for _, st := range r.state {
		st.Enabled = false
	}
	for _, id := range ids {
		if err := r.SetEnabled(id, true); err != nil {
			return err
		}
	}
	return nil
}

// SetEnabled toggles one component in the overlay.
func (r *Resolver) SetEnabled(id ID, enabled bool) error {
	st, ok := r.state[id]
	if !ok {
		return cerrors.New(cerrors.ErrCodeNotFound, fmt.Sprintf("unknown component %q", id))
	}
	st.Enabled = enabled
	return nil
}

// State returns a copy of the state of id.
func (r *Resolver) State(id ID) (State, bool) {
	st, ok := r.state[id]
	if !ok {
		return State{}, false
	}
	return *st.clone(), true
}

// Overlay returns a deep copy of the current overlay.
func (r *Resolver) Overlay() Overlay {
	out := make(Overlay, len(r.state))
	for id, st := range r.state {
		out[id] = st.clone()
	}
	return out
}

// Enabled returns the enabled component ids in processing order.
func (r *Resolver) Enabled() []ID {
	var out []ID
	for _, id := range r.catalog.order {
		if r.state[id].Enabled {
			out = append(out, id)
		}
	}
	return out
}

func (r *Resolver) paneIndex(id ID) int {
	return r.catalog.PaneIndex(Pane(id.Type()))
}

func (r *Resolver) mustPane(p Pane) (int, error) {
	i := r.catalog.PaneIndex(p)
	if i < 0 {
		return 0, cerrors.New(cerrors.ErrCodeInvalidRequest, fmt.Sprintf("unknown pane %q", p))
	}
	return i, nil
}

func (r *Resolver) disable(st *State, reason string) {
	st.Enabled = false
	st.Disabled = true
	if reason != "" {
		st.Reasons = append(st.Reasons, reason)
	}
}

// ProcessPaneRestrictions evaluates the restrictions of every component in pane p.
// Components whose disable restrictions fire are disabled; hide restrictions set
// Hidden.
func (r *Resolver) ProcessPaneRestrictions(bindings expression.Bindings, p Pane) error {
	if _, err := r.mustPane(p); err != nil {
		return err
	}
	for _, comp := range r.catalog.InPane(p) {
		st := r.state[comp.ID]
		st.Reasons = nil
		st.Disabled = false
		st.Hidden = restriction.Check(r.ev, bindings, comp, restriction.ActionHide).Result
		if res := restriction.Check(r.ev, bindings, comp, restriction.ActionDisable); res.Result {
			r.disable(st, res.Message)
		}
	}
	return nil
}

// ProcessPaneIncompatibles disables components of pane p that are incompatible with
// an enabled component of an earlier pane, or with an enabled component of the same
// pane that precedes it in processing order.
func (r *Resolver) ProcessPaneIncompatibles(p Pane) error {
	cur, err := r.mustPane(p)
	if err != nil {
		return err
	}

	for _, comp := range r.catalog.InPane(p) {
		st := r.state[comp.ID]
		for _, other := range r.catalog.order {
			if other == comp.ID {
				break
			}
			if r.paneIndex(other) > cur || !r.state[other].Enabled {
				continue
			}
			if msg, ok := r.catalog.Incompatible(comp.ID, other); ok {
				slog.Debug("component incompatible", "component", comp.ID, "with", other)
				r.disable(st, msg)
			}
		}
	}
	return nil
}

// Outcome is the evaluation of one requirement relative to a pane.
type Outcome struct {
	Matched     bool `json:"matched" yaml:"matched"`
	Invalid     bool `json:"invalid" yaml:"invalid"`
	Processed   int  `json:"processed" yaml:"processed"`
	Forthcoming int  `json:"forthcoming" yaml:"forthcoming"`
	Null        int  `json:"null" yaml:"null"`
}

// Failed reports whether the requirement is unmet: either unmatched or impossible.
func (o Outcome) Failed() bool {
	return !o.Matched || o.Invalid
}

// EvaluateRequirement splits req's items into processed (pane index <= current),
// forthcoming (pane index > current) and null (unknown to the catalog), then applies
// the predicate. While no processed item is enabled but a forthcoming one exists,
// one_of and any_of stay provisionally satisfied: later panes re-validate them.
func (r *Resolver) EvaluateRequirement(req Requirement, p Pane) (Outcome, error) {
	cur, err := r.mustPane(p)
	if err != nil {
		return Outcome{}, err
	}
	return r.evaluate(req, cur), nil
}

func (r *Resolver) evaluate(req Requirement, cur int) Outcome {
	var o Outcome
	enabled := 0
	for _, item := range req.Items {
		st, ok := r.state[item]
		if !ok {
			o.Null++
			continue
		}
		if r.paneIndex(item) > cur {
			o.Forthcoming++
			continue
		}
		o.Processed++
		if st.Enabled {
			enabled++
		}
	}

	empty := o.Processed == 0 && o.Forthcoming == 0
	pending := enabled == 0 && o.Forthcoming > 0

	switch req.Predicate {
	case OneOf:
		o.Matched = pending || enabled == 1
		o.Invalid = empty
	case NoneOf:
		o.Matched = enabled == 0
	case AnyOf:
		o.Matched = pending || enabled >= 1
		o.Invalid = empty
	case AllOf:
		o.Matched = enabled == o.Processed
		o.Invalid = empty
	}
	return o
}

// ProcessPaneRequires evaluates the requirements of every component up to and
// including pane p. Components of pane p that fail a requirement are disabled and
// carry the joined failure messages; components of earlier panes only get their
// warnings refreshed because their pane has already been committed.
func (r *Resolver) ProcessPaneRequires(p Pane) error {
	cur, err := r.mustPane(p)
	if err != nil {
		return err
	}

	for _, id := range r.catalog.order {
		idx := r.paneIndex(id)
		if idx > cur {
			continue
		}
		comp := r.catalog.byID[id]
		st := r.state[id]

		var warnings []string
		requireFail, invalid := false, false
		for _, req := range comp.Requires {
			o := r.evaluate(req, cur)
			if !o.Failed() {
				continue
			}
			requireFail = true
			invalid = invalid || o.Invalid
			if msg := req.FailureMessage(o.Invalid); msg != "" {
				warnings = append(warnings, msg)
			}
		}

		st.RequireFail = requireFail
		st.Invalid = invalid
		st.Warnings = strings.Join(warnings, " ")

		if idx == cur {
			st.Disabled = requireFail || len(st.Reasons) > 0
			if requireFail {
				st.Enabled = false
				slog.Debug("component requirement failed", "component", id, "pane", p, "invalid", invalid)
			}
		}
	}
	return nil
}

// Issue is a validation failure of a committed component.
type Issue struct {
	Component ID     `json:"component" yaml:"component"`
	Pane      Pane   `json:"pane" yaml:"pane"`
	Message   string `json:"message,omitempty" yaml:"message,omitempty"`
	// Invalid marks a requirement that can never be satisfied, as opposed to one
	// that is currently unsatisfied.
	Invalid bool `json:"invalid" yaml:"invalid"`
}

// Validation is the result of validating committed panes.
type Validation struct {
	Valid  bool    `json:"valid" yaml:"valid"`
	Issues []Issue `json:"issues,omitempty" yaml:"issues,omitempty"`
}

// Validate inspects every pane before p and fails if an enabled component there has
// an unmet requirement.
func (r *Resolver) Validate(p Pane) (*Validation, error) {
	cur, err := r.mustPane(p)
	if err != nil {
		return nil, err
	}
	return r.validateThrough(cur - 1), nil
}

// ValidateAll inspects every pane.
func (r *Resolver) ValidateAll() *Validation {
	return r.validateThrough(len(r.catalog.panes) - 1)
}

func (r *Resolver) validateThrough(last int) *Validation {
	v := &Validation{Valid: true}
	for _, id := range r.catalog.order {
		if r.paneIndex(id) > last {
			continue
		}
		st := r.state[id]
		if !st.Enabled || !st.RequireFail {
			continue
		}
		v.Valid = false
		v.Issues = append(v.Issues, Issue{
			Component: id,
			Pane:      Pane(id.Type()),
			Message:   st.Warnings,
			Invalid:   st.Invalid,
		})
	}
	return v
}

// Run performs a complete staged pass over every pane in order (restrictions,
// incompatibilities, requirements) and validates the result.
func (r *Resolver) Run(bindings expression.Bindings) (*Validation, error) {
	for _, p := range r.catalog.panes {
		if err := r.ProcessPaneRestrictions(bindings, p); err != nil {
			return nil, err
		}
		if err := r.ProcessPaneIncompatibles(p); err != nil {
			return nil, err
		}
		if err := r.ProcessPaneRequires(p); err != nil {
			return nil, err
		}
	}
	return r.ValidateAll(), nil
}
