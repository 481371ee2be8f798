/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package limits

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	cerrors "github.com/NVIDIA/deploy-constraints/pkg/errors"
	"github.com/NVIDIA/deploy-constraints/pkg/expression"
)

// Checker resolves limit specs and compares them against observed counts.
type Checker struct {
	ev expression.Evaluator
}

// NewChecker returns a Checker that evaluates bound expressions with ev.
func NewChecker(ev expression.Evaluator) *Checker {
	return &Checker{ev: ev}
}

type checkOptions struct {
	limitReached bool
	boundTypes   []BoundType
}

// Option configures a single Check call.
type Option func(*checkOptions)

// WithLimitReached selects the comparator set. True (the default) asks "is the
// current configuration valid"; false asks "may one more unit be added or removed".
func WithLimitReached(reached bool) Option {
	return func(o *checkOptions) {
		o.limitReached = reached
	}
}

// WithBoundTypes restricts the check to the given bound types, in message order.
func WithBoundTypes(types ...BoundType) Option {
	return func(o *checkOptions) {
		if len(types) > 0 {
			o.boundTypes = types
		}
	}
}

type violation struct {
	boundType BoundType
	value     int
	message   string
}

// Check evaluates spec for a group named label currently holding count elements.
// Overrides whose condition holds are applied first, in declaration order. The
// first one that resolves a bound of a type shadows later overrides and the global
// bound of that type. A nil spec is a programming error.
func (c *Checker) Check(bindings expression.Bindings, spec *Spec, label string, count int, opts ...Option) (*Result, error) {
	if spec == nil {
		return nil, cerrors.New(cerrors.ErrCodeInvalidRequest, fmt.Sprintf("%s has no limit spec", label))
	}

	o := checkOptions{limitReached: true, boundTypes: AllBoundTypes}
	for _, opt := range opts {
		opt(&o)
	}

	res := &Result{Count: count}
	for _, t := range AllBoundTypes {
		if v, ok := c.resolve(spec.bound(t), bindings); ok {
			res.Limits.set(t, v)
		}
	}

	checked := make(map[BoundType]bool, len(o.boundTypes))
	var violations []violation

	checkOne := func(b *Bound, t BoundType, message string) {
		if b == nil || checked[t] {
			return
		}
		value, ok := c.resolve(b, bindings)
		if !ok {
			return
		}
		checked[t] = true
		res.Limits.set(t, value)
		if !violates(t, count, value, o.limitReached) {
			return
		}
		if message == "" {
			message = defaultMessage(t, label, value, count)
		}
		violations = append(violations, violation{boundType: t, value: value, message: message})
	}

	for i := range spec.Overrides {
		ov := &spec.Overrides[i]
		if !expression.EvaluateBool(c.ev, ov.Condition, bindings) {
			continue
		}
		slog.Debug("limit override applies", "group", label, "condition", ov.Condition)
		for _, t := range o.boundTypes {
			checkOne(ov.bound(t), t, ov.Message)
		}
	}

	for _, t := range o.boundTypes {
		checkOne(spec.bound(t), t, "")
	}

	res.Message = worstMessages(violations, o.boundTypes)
	res.Valid = res.Message == ""
	return res, nil
}

// resolve turns a bound into an integer, dereferencing attribute references.
func (c *Checker) resolve(b *Bound, bindings expression.Bindings) (int, bool) {
	if b == nil {
		return 0, false
	}
	if b.literal != nil {
		return *b.literal, true
	}

	v, err := c.ev.Evaluate(b.expression, bindings)
	if err != nil {
		slog.Warn("limit expression evaluation failed", "expression", b.expression, "error", err)
		return 0, false
	}
	raw, err := expression.Resolve(v)
	if err != nil {
		slog.Warn("limit expression reference unresolved", "expression", b.expression, "error", err)
		return 0, false
	}
	n, ok := expression.ToNumber(raw)
	if !ok {
		slog.Warn("limit expression is not numeric", "expression", b.expression, "value", raw)
		return 0, false
	}
	return int(math.Trunc(n)), true
}

func violates(t BoundType, count, limit int, reached bool) bool {
	switch t {
	case Min:
		if reached {
			return count < limit
		}
		return count <= limit
	case Max:
		if reached {
			return count > limit
		}
		return count >= limit
	default:
		return count < limit
	}
}

// worstMessages keeps one message per bound type: the largest limit for min and
// recommended, the smallest for max. Messages are joined in order.
func worstMessages(violations []violation, order []BoundType) string {
	if len(violations) == 0 {
		return ""
	}

	byType := make(map[BoundType][]violation)
	for _, v := range violations {
		byType[v.boundType] = append(byType[v.boundType], v)
	}

	var out []string
	for _, t := range order {
		group := byType[t]
		if len(group) == 0 {
			continue
		}
		sort.SliceStable(group, func(i, j int) bool {
			if t == Max {
				return group[i].value < group[j].value
			}
			return group[i].value > group[j].value
		})
		out = append(out, group[0].message)
	}
	return strings.Join(out, " ")
}

func defaultMessage(t BoundType, label string, limit, count int) string {
	switch t {
	case Min:
		return fmt.Sprintf("At least %d %s node(s) required, %d assigned.", limit, label, count)
	case Max:
		return fmt.Sprintf("No more than %d %s node(s) allowed, %d assigned.", limit, label, count)
	default:
		return fmt.Sprintf("%d or more %s node(s) recommended, %d assigned.", limit, label, count)
	}
}
