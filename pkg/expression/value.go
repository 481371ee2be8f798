/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package expression

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Model is a named domain object exposed to expressions.
type Model interface {
	// Attributes returns the object's attribute tree. Nested maps are addressed
	// with dotted paths.
	Attributes() map[string]any
}

// Map is the simplest Model: a plain attribute map.
type Map map[string]any

// Attributes implements Model.
func (m Map) Attributes() map[string]any {
	return m
}

// Bindings maps binding names (e.g. "cluster", "settings") to models.
type Bindings map[string]Model

// With returns a copy of b with name bound to m.
func (b Bindings) With(name string, m Model) Bindings {
	out := make(Bindings, len(b)+1)
	for k, v := range b {
		out[k] = v
	}
	out[name] = m
	return out
}

func (b Bindings) activation() map[string]any {
	act := make(map[string]any, len(b))
	for name, m := range b {
		if m == nil {
			act[name] = map[string]any{}
			continue
		}
		act[name] = m.Attributes()
	}
	return act
}

// Kind discriminates Value variants.
type Kind int

const (
	// KindScalar holds a literal bool, number, string or nil.
	KindScalar Kind = iota
	// KindReference points at a live model attribute.
	KindReference
)

// Reference identifies an attribute of a bound model.
type Reference struct {
	Binding   string
	Model     Model
	Attribute string
}

// String returns the binding-qualified attribute path.
func (r Reference) String() string {
	return r.Binding + "." + r.Attribute
}

// Value is the result of evaluating an expression.
type Value struct {
	kind   Kind
	scalar any
	ref    Reference
}

// Scalar wraps a literal value.
func Scalar(v any) Value {
	return Value{kind: KindScalar, scalar: v}
}

// Ref wraps an attribute reference.
func Ref(binding string, m Model, attribute string) Value {
	return Value{kind: KindReference, ref: Reference{Binding: binding, Model: m, Attribute: attribute}}
}

// Kind returns the variant of v.
func (v Value) Kind() Kind {
	return v.kind
}

// Reference returns the referenced attribute when v is a reference.
func (v Value) Reference() (Reference, bool) {
	return v.ref, v.kind == KindReference
}

// String implements fmt.Stringer.
func (v Value) String() string {
	if v.kind == KindReference {
		return "ref(" + v.ref.String() + ")"
	}
	return fmt.Sprintf("%v", v.scalar)
}

// Resolve returns the underlying value of v, dereferencing attribute references.
func Resolve(v Value) (any, error) {
	if v.kind != KindReference {
		return v.scalar, nil
	}
	if v.ref.Model == nil {
		return nil, fmt.Errorf("reference %s: binding is nil", v.ref)
	}
	return Lookup(v.ref.Model.Attributes(), v.ref.Attribute)
}

// Lookup walks a dotted attribute path through nested maps.
func Lookup(attrs map[string]any, path string) (any, error) {
	var cur any = attrs
	for _, seg := range strings.Split(path, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil, fmt.Errorf("attribute %q: %q is not an object", path, seg)
		}
		next, ok := m[seg]
		if !ok {
			return nil, fmt.Errorf("attribute %q: key %q not found", path, seg)
		}
		cur = next
	}
	return cur, nil
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Map:
		return m, true
	case Model:
		return m.Attributes(), true
	default:
		return nil, false
	}
}

// Truthy reports whether x counts as true in a condition.
func Truthy(x any) bool {
	switch t := x.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	}
	if n, ok := ToNumber(x); ok {
		return n != 0
	}
	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

// ToNumber converts numeric values (and numeric strings) to float64.
func ToNumber(x any) (float64, bool) {
	switch n := x.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		if math.IsNaN(n) {
			return 0, false
		}
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
