/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package validator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/deploy-constraints/pkg/catalog"
	"github.com/NVIDIA/deploy-constraints/pkg/component"
	cerrors "github.com/NVIDIA/deploy-constraints/pkg/errors"
	"github.com/NVIDIA/deploy-constraints/pkg/expression"
	"github.com/NVIDIA/deploy-constraints/pkg/header"
	"github.com/NVIDIA/deploy-constraints/pkg/network"
	"github.com/NVIDIA/deploy-constraints/pkg/restriction"
	"github.com/NVIDIA/deploy-constraints/pkg/role"
	"github.com/NVIDIA/deploy-constraints/pkg/settings"
)

// Validator checks cluster states against a catalog.
type Validator struct {
	// Version is the validator version (typically the CLI version).
	Version string

	ev expression.Evaluator
}

// Option is a functional option for configuring Validator instances.
type Option func(*Validator)

// WithVersion returns an Option that sets the Validator version string.
func WithVersion(version string) Option {
	return func(v *Validator) {
		v.Version = version
	}
}

// WithEvaluator replaces the expression evaluator. The evaluator must be safe for
// concurrent use because sections are validated in parallel.
func WithEvaluator(ev expression.Evaluator) Option {
	return func(v *Validator) {
		v.ev = ev
	}
}

// New creates a new Validator with the provided options.
func New(opts ...Option) *Validator {
	v := &Validator{}
	for _, opt := range opts {
		opt(v)
	}
	if v.ev == nil {
		v.ev = expression.NewCELEvaluator()
	}
	return v
}

// Evaluator returns the expression evaluator in use.
func (v *Validator) Evaluator() expression.Evaluator {
	return v.ev
}

// Bindings builds the expression bindings of st: cluster, settings and
// networking_parameters.
func (v *Validator) Bindings(cat *catalog.Catalog, st *ClusterState) expression.Bindings {
	counts := role.Counts(cat.Roles, st.Nodes)
	return expression.Bindings{
		BindingCluster:              st.ClusterModel(counts),
		settings.BindingName:        cat.Settings.Model(st.Settings),
		BindingNetworkingParameters: st.NetworkingModel(),
	}
}

// Validate checks st against cat. Sections read disjoint data and run
// concurrently; each owns any mutable state it needs.
func (v *Validator) Validate(ctx context.Context, cat *catalog.Catalog, st *ClusterState) (*Report, error) {
	start := time.Now()

	if cat == nil {
		return nil, cerrors.New(cerrors.ErrCodeInvalidRequest, "catalog cannot be nil")
	}
	if st == nil {
		return nil, cerrors.New(cerrors.ErrCodeInvalidRequest, "cluster state cannot be nil")
	}

	report := &Report{
		ID:          uuid.NewString(),
		Cluster:     st.Name,
		Catalog:     cat.Source,
		Diagnostics: cat.Diagnostics,
	}
	report.Init(header.KindValidationReport, header.APIVersionV1Alpha1, v.Version)

	bindings := v.Bindings(cat, st)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		report.Roles = v.validateRoles(cat, st, bindings)
		return nil
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		cr, err := v.validateComponents(cat, st, bindings)
		if err != nil {
			return err
		}
		report.Components = cr
		return nil
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		report.Network = validateNetwork(st)
		return nil
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		res := cat.Settings.Validate(v.ev, bindings, st.Settings)
		report.Settings = &SettingsReport{Status: statusOf(res.Valid), Result: res}
		return nil
	})
	if err := g.Wait(); err != nil {
		validationTotal.WithLabelValues("error").Inc()
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, cerrors.Wrap(cerrors.ErrCodeTimeout, "validation timed out", err)
		}
		return nil, err
	}

	summarize(report)
	report.Summary.Duration = time.Since(start)

	validationTotal.WithLabelValues(string(report.Summary.Status)).Inc()
	validationDuration.Observe(report.Summary.Duration.Seconds())

	slog.Debug("validation completed",
		"id", report.ID,
		"cluster", report.Cluster,
		"passed", report.Summary.Passed,
		"failed", report.Summary.Failed,
		"skipped", report.Summary.Skipped,
		"status", report.Summary.Status,
		"duration", report.Summary.Duration)

	return report, nil
}

func (v *Validator) validateRoles(cat *catalog.Catalog, st *ClusterState, bindings expression.Bindings) *RoleReport {
	rr := &RoleReport{Counts: role.Counts(cat.Roles, st.Nodes)}
	checker := role.NewChecker(cat.Roles, v.ev)
	rr.Limits = checker.Validate(bindings, rr.Counts)

	names := cat.Roles.Names()
	unknown := map[string]bool{}
	for _, n := range st.Nodes {
		if n.Deleting {
			continue
		}
		assigned := n.AllRoles()
		for _, r := range assigned {
			if _, ok := cat.Roles.Get(r); !ok && !unknown[r] {
				unknown[r] = true
				rr.Unknown = append(rr.Unknown, UnknownReference{Kind: "role", Name: r, Suggestion: catalog.Suggest(r, names)})
			}
		}
		for _, pair := range cat.Roles.ValidateAssignment(assigned) {
			rr.Conflicts = append(rr.Conflicts, NodeConflict{Node: n.Name, Roles: pair})
		}
	}

	for _, name := range names {
		if rr.Counts[name] == 0 {
			continue
		}
		res, err := checker.Restrictions(bindings, name, restriction.ActionDisable)
		if err != nil || !res.Result {
			continue
		}
		if rr.Restricted == nil {
			rr.Restricted = make(map[string]string)
		}
		rr.Restricted[name] = res.Message
	}

	rr.Status = statusOf(rr.Limits.Valid && len(rr.Conflicts) == 0 && len(rr.Restricted) == 0 && len(rr.Unknown) == 0)
	return rr
}

func (v *Validator) validateComponents(cat *catalog.Catalog, st *ClusterState, bindings expression.Bindings) (*ComponentReport, error) {
	cr := &ComponentReport{}
	r := component.NewResolver(cat.Components, v.ev)

	selected := st.Components
	if selected == nil {
		selected = r.Enabled()
	}
	ids := cat.Components.IDs()
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = string(id)
	}
	var known []component.ID
	for _, id := range selected {
		if _, ok := cat.Components.Get(id); !ok {
			cr.Unknown = append(cr.Unknown, UnknownReference{
				Kind: "component", Name: string(id), Suggestion: catalog.Suggest(string(id), names),
			})
			continue
		}
		known = append(known, id)
	}
	cr.Selected = known

	if err := r.Select(known...); err != nil {
		return nil, err
	}
	val, err := r.Run(bindings)
	if err != nil {
		return nil, err
	}

	// Selected components that the pass switched off are failures too.
	enabled := r.Enabled()
	for _, id := range known {
		cs, _ := r.State(id)
		if cs.Enabled {
			continue
		}
		msg := cs.Warnings
		if len(cs.Reasons) > 0 {
			msg = joinNonEmpty(append(append([]string(nil), cs.Reasons...), cs.Warnings)...)
		}
		val.Valid = false
		val.Issues = append(val.Issues, component.Issue{
			Component: id, Pane: component.Pane(id.Type()), Message: msg, Invalid: cs.Invalid,
		})
	}
	sort.SliceStable(val.Issues, func(i, j int) bool {
		return cat.Components.PaneIndex(val.Issues[i].Pane) < cat.Components.PaneIndex(val.Issues[j].Pane)
	})

	cr.Enabled = enabled
	cr.Validation = val
	cr.States = r.Overlay()
	cr.Status = statusOf(val.Valid && len(cr.Unknown) == 0)
	return cr, nil
}

func validateNetwork(st *ClusterState) *NetworkReport {
	if st.Network == nil {
		return &NetworkReport{Status: SectionStatusSkipped}
	}
	errs := network.Validate(st.Network, st.NodeGroups)
	return &NetworkReport{Status: statusOf(errs == nil), Errors: errs}
}

func summarize(r *Report) {
	s := &r.Summary
	count := func(status SectionStatus) {
		switch status {
		case SectionStatusPassed:
			s.Passed++
		case SectionStatusFailed:
			s.Failed++
		case SectionStatusSkipped:
			s.Skipped++
		}
	}

	if r.Roles != nil {
		count(r.Roles.Status)
		s.Errors += len(r.Roles.Limits.Errors) + len(r.Roles.Conflicts) + len(r.Roles.Restricted) + len(r.Roles.Unknown)
		s.Warnings += len(r.Roles.Limits.Warnings)
	}
	if r.Components != nil {
		count(r.Components.Status)
		s.Errors += len(r.Components.Validation.Issues) + len(r.Components.Unknown)
	}
	if r.Network != nil {
		count(r.Network.Status)
		s.Errors += r.Network.Errors.Count()
	}
	if r.Settings != nil {
		count(r.Settings.Status)
		s.Errors += len(r.Settings.Result.Errors)
		s.Warnings += len(r.Settings.Result.Unknown)
	}
	s.Warnings += len(r.Diagnostics)

	switch {
	case s.Failed > 0:
		s.Status = ValidationStatusFail
	case s.Warnings > 0:
		s.Status = ValidationStatusWarn
	default:
		s.Status = ValidationStatusPass
	}
}

func joinNonEmpty(parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += " "
		}
		out += p
	}
	return out
}

// CheckRoleLimits checks one role's limits against the node count of st. With
// reached false it answers whether one more node may be added or removed.
func (v *Validator) CheckRoleLimits(cat *catalog.Catalog, st *ClusterState, name string, reached bool) (*LimitsReport, error) {
	if _, ok := cat.Roles.Get(name); !ok {
		return nil, cerrors.New(cerrors.ErrCodeNotFound,
			fmt.Sprintf("unknown role %q%s", name, didYouMean(catalog.Suggest(name, cat.Roles.Names()))))
	}
	bindings := v.Bindings(cat, st)
	counts := role.Counts(cat.Roles, st.Nodes)
	checker := role.NewChecker(cat.Roles, v.ev)

	lr := &LimitsReport{Role: name, Reached: reached}
	lr.Init(header.KindLimitsReport, header.APIVersionV1Alpha1, v.Version)

	res, err := checker.CheckLimits(bindings, name, counts[name], limitsOptions(reached)...)
	if err != nil {
		return nil, err
	}
	lr.Result = res
	if lr.Assignability, err = checker.Assignable(bindings, name, counts[name]); err != nil {
		return nil, err
	}
	return lr, nil
}

func didYouMean(s string) string {
	if s == "" {
		return ""
	}
	return fmt.Sprintf(" (did you mean %q?)", s)
}
