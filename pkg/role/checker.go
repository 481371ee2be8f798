/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package role

import (
	"fmt"
	"log/slog"
	"strings"

	cerrors "github.com/NVIDIA/deploy-constraints/pkg/errors"
	"github.com/NVIDIA/deploy-constraints/pkg/expression"
	"github.com/NVIDIA/deploy-constraints/pkg/limits"
	"github.com/NVIDIA/deploy-constraints/pkg/restriction"
)

// Checker evaluates role limits and restrictions against bindings.
type Checker struct {
	catalog *Catalog
	ev      expression.Evaluator
	limits  *limits.Checker
}

// NewChecker returns a Checker over catalog.
func NewChecker(catalog *Catalog, ev expression.Evaluator) *Checker {
	return &Checker{catalog: catalog, ev: ev, limits: limits.NewChecker(ev)}
}

// Counts returns, for every catalog role, how many nodes carry it and are not
// pending deletion.
func Counts[N limits.Countable](catalog *Catalog, nodes []N) map[string]int {
	out := make(map[string]int, catalog.Len())
	for _, name := range catalog.Names() {
		out[name] = limits.Count(nodes, name)
	}
	return out
}

// CheckLimits checks the limits of the named role given its current node count.
// It fails for unknown roles and for roles without a limit spec.
func (c *Checker) CheckLimits(bindings expression.Bindings, name string, count int, opts ...limits.Option) (*limits.Result, error) {
	r, ok := c.catalog.Get(name)
	if !ok {
		return nil, cerrors.New(cerrors.ErrCodeNotFound, fmt.Sprintf("unknown role %q", name))
	}
	return c.limits.Check(bindings, r.Limits, r.Label, count, opts...)
}

// Restrictions evaluates the restrictions of the named role.
func (c *Checker) Restrictions(bindings expression.Bindings, name string, actions ...restriction.Action) (restriction.Result, error) {
	r, ok := c.catalog.Get(name)
	if !ok {
		return restriction.Result{}, cerrors.New(cerrors.ErrCodeNotFound, fmt.Sprintf("unknown role %q", name))
	}
	return restriction.Check(c.ev, bindings, r, actions...), nil
}

// Assignability tells whether a role may be added to or removed from one more node.
type Assignability struct {
	Role      string `json:"role" yaml:"role"`
	CanAdd    bool   `json:"canAdd" yaml:"canAdd"`
	CanRemove bool   `json:"canRemove" yaml:"canRemove"`
	Hidden    bool   `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	Message   string `json:"message,omitempty" yaml:"message,omitempty"`
}

// Assignable evaluates whether one more node may take the role (max not yet reached,
// not disabled by restrictions) and whether one node may drop it (min not yet reached).
func (c *Checker) Assignable(bindings expression.Bindings, name string, count int) (*Assignability, error) {
	r, ok := c.catalog.Get(name)
	if !ok {
		return nil, cerrors.New(cerrors.ErrCodeNotFound, fmt.Sprintf("unknown role %q", name))
	}

	a := &Assignability{Role: name, CanAdd: true, CanRemove: true}
	var messages []string

	if disabled := restriction.Check(c.ev, bindings, r, restriction.ActionDisable); disabled.Result {
		a.CanAdd = false
		messages = append(messages, disabled.Message)
	}
	a.Hidden = restriction.Check(c.ev, bindings, r, restriction.ActionHide).Result

	if r.Limits != nil {
		add, err := c.limits.Check(bindings, r.Limits, r.Label, count, limits.WithLimitReached(false), limits.WithBoundTypes(limits.Max))
		if err != nil {
			return nil, err
		}
		if !add.Valid {
			a.CanAdd = false
			messages = append(messages, add.Message)
		}
		remove, err := c.limits.Check(bindings, r.Limits, r.Label, count, limits.WithLimitReached(false), limits.WithBoundTypes(limits.Min))
		if err != nil {
			return nil, err
		}
		a.CanRemove = remove.Valid
	}

	a.Message = strings.TrimSpace(strings.Join(messages, " "))
	return a, nil
}

// Verdict is the cluster-wide outcome of checking every role's limits.
type Verdict struct {
	Valid    bool          `json:"valid" yaml:"valid"`
	Roles    []RoleVerdict `json:"roles" yaml:"roles"`
	Errors   []string      `json:"errors,omitempty" yaml:"errors,omitempty"`
	Warnings []string      `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// RoleVerdict is the limit check of one role.
type RoleVerdict struct {
	Name    string         `json:"name" yaml:"name"`
	Label   string         `json:"label" yaml:"label"`
	Result  *limits.Result `json:"result" yaml:"result"`
	Warning string         `json:"warning,omitempty" yaml:"warning,omitempty"`
}

// Validate checks min and max limits of every role that declares limits; violated
// recommended bounds are reported as warnings and do not affect validity.
func (c *Checker) Validate(bindings expression.Bindings, counts map[string]int) *Verdict {
	v := &Verdict{Valid: true}
	for _, r := range c.catalog.List() {
		if r.Limits == nil {
			continue
		}
		count := counts[r.Name]

		res, err := c.limits.Check(bindings, r.Limits, r.Label, count, limits.WithBoundTypes(limits.Min, limits.Max))
		if err != nil {
			slog.Error("role limit check failed", "role", r.Name, "error", err)
			continue
		}
		rv := RoleVerdict{Name: r.Name, Label: r.Label, Result: res}
		if !res.Valid {
			v.Valid = false
			v.Errors = append(v.Errors, res.Message)
		}

		if rv.Warning = c.recommendedWarning(bindings, r, count); rv.Warning != "" {
			v.Warnings = append(v.Warnings, rv.Warning)
		}
		v.Roles = append(v.Roles, rv)

		slog.Debug("role limits checked", "role", r.Name, "count", count, "valid", res.Valid)
	}
	return v
}

// recommendedWarning returns the message of a violated recommended bound of r.
func (c *Checker) recommendedWarning(bindings expression.Bindings, r *Role, count int) string {
	rec, err := c.limits.Check(bindings, r.Limits, r.Label, count, limits.WithBoundTypes(limits.Recommended))
	if err != nil {
		slog.Error("role recommended limit check failed", "role", r.Name, "error", err)
		return ""
	}
	if rec.Valid {
		return ""
	}
	return rec.Message
}
