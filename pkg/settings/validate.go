/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package settings

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"github.com/NVIDIA/deploy-constraints/pkg/expression"
	"github.com/NVIDIA/deploy-constraints/pkg/restriction"
)

// BindingName is the name settings are bound to in expressions, e.g.
// "settings.storage.ceph.value".
const BindingName = "settings"

// Values holds submitted values by group then setting name. The reserved
// MetadataKey entry of a group may hold {"enabled": bool}.
type Values map[string]map[string]any

// Get returns the submitted value of group.name.
func (v Values) Get(group, name string) (any, bool) {
	g, ok := v[group]
	if !ok {
		return nil, false
	}
	val, ok := g[name]
	return val, ok
}

// Enabled returns the submitted enabled flag of a group.
func (v Values) Enabled(group string) (bool, bool) {
	meta, ok := v.Get(group, MetadataKey)
	if !ok {
		return false, false
	}
	m, ok := meta.(map[string]any)
	if !ok {
		return false, false
	}
	e, ok := m["enabled"].(bool)
	return e, ok
}

// Value returns the effective value of s in group: the submitted value, or the
// catalog default.
func (c *Catalog) Value(values Values, group string, s *Setting) any {
	if v, ok := values.Get(group, s.Name); ok {
		return v
	}
	return s.Value
}

// GroupEnabled returns the effective enabled flag of g.
func (c *Catalog) GroupEnabled(values Values, g *Group) bool {
	if !g.Toggleable {
		return true
	}
	if e, ok := values.Enabled(g.Name); ok {
		return e
	}
	return g.Enabled
}

// Model returns the expression model of the effective settings:
//
//	{group: {metadata: {enabled: bool}, setting: {value: any}}}
func (c *Catalog) Model(values Values) expression.Map {
	m := make(expression.Map, len(c.groups))
	for _, g := range c.groups {
		gm := map[string]any{
			MetadataKey: map[string]any{"enabled": c.GroupEnabled(values, g)},
		}
		for _, s := range g.Settings {
			gm[s.Name] = map[string]any{"value": c.Value(values, g.Name, s)}
		}
		m[g.Name] = gm
	}
	return m
}

// Result is the outcome of settings validation.
type Result struct {
	Valid bool `json:"valid" yaml:"valid"`
	// Errors maps "group.setting" to the error message.
	Errors map[string]string `json:"errors,omitempty" yaml:"errors,omitempty"`
	// Unknown lists submitted "group.setting" paths absent from the catalog.
	Unknown []string `json:"unknown,omitempty" yaml:"unknown,omitempty"`
	Checked int      `json:"checked" yaml:"checked"`
	Skipped int      `json:"skipped" yaml:"skipped"`
}

// Path joins a group and setting name.
func Path(group, name string) string {
	return group + "." + name
}

// Validate checks every effective value. Settings of disabled toggleable groups
// and settings hidden or disabled by restrictions are skipped. The settings model
// is bound under BindingName on top of bindings.
func (c *Catalog) Validate(ev expression.Evaluator, bindings expression.Bindings, values Values) *Result {
	b := bindings.With(BindingName, c.Model(values))
	res := &Result{Valid: true}

	for _, g := range c.groups {
		groupOff := !c.GroupEnabled(values, g) ||
			restriction.Check(ev, b, g, restriction.ActionDisable, restriction.ActionHide).Result
		for _, s := range g.Settings {
			if groupOff || restriction.Check(ev, b, s, restriction.ActionDisable, restriction.ActionHide).Result {
				res.Skipped++
				continue
			}
			res.Checked++
			if msg := c.check(ev, b, s, c.Value(values, g.Name, s)); msg != "" {
				slog.Debug("setting invalid", "setting", Path(g.Name, s.Name), "error", msg)
				if res.Errors == nil {
					res.Errors = make(map[string]string)
				}
				res.Errors[Path(g.Name, s.Name)] = msg
			}
		}
	}

	for group, entries := range values {
		for name := range entries {
			if name == MetadataKey {
				if _, ok := c.byName[group]; ok {
					continue
				}
			}
			if _, ok := c.Setting(group, name); !ok {
				res.Unknown = append(res.Unknown, Path(group, name))
			}
		}
	}
	sort.Strings(res.Unknown)

	res.Valid = len(res.Errors) == 0
	return res
}

func (c *Catalog) check(ev expression.Evaluator, b expression.Bindings, s *Setting, value any) string {
	switch s.Type {
	case TypeCheckbox:
		if _, ok := value.(bool); !ok {
			return "Value must be a boolean"
		}
	case TypeNumber:
		n, ok := number(value)
		if !ok {
			return "Value must be a number"
		}
		if s.Min != nil && n < *s.Min {
			return fmt.Sprintf("Value must be at least %s", strconv.FormatFloat(*s.Min, 'f', -1, 64))
		}
		if s.Max != nil && n > *s.Max {
			return fmt.Sprintf("Value must be at most %s", strconv.FormatFloat(*s.Max, 'f', -1, 64))
		}
	case TypeRadio, TypeSelect:
		return checkOption(ev, b, s, value)
	}

	if s.Regex != nil && s.Regex.re != nil {
		str, ok := value.(string)
		if !ok {
			str = fmt.Sprint(value)
		}
		if !s.Regex.re.MatchString(str) {
			if s.Regex.Error != "" {
				return s.Regex.Error
			}
			return "Invalid value"
		}
	}
	return ""
}

func number(v any) (float64, bool) {
	switch v.(type) {
	case string, bool, nil:
		return 0, false
	}
	return expression.ToNumber(v)
}

func checkOption(ev expression.Evaluator, b expression.Bindings, s *Setting, value any) string {
	str, _ := value.(string)
	for _, opt := range s.Values {
		if opt.Data != str {
			continue
		}
		if res := restriction.Check(ev, b, opt, restriction.ActionDisable); res.Result {
			if res.Message != "" {
				return res.Message
			}
			return fmt.Sprintf("Option %q is not available", str)
		}
		return ""
	}
	return fmt.Sprintf("Invalid option %q", str)
}
