/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package limits

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	cerrors "github.com/NVIDIA/deploy-constraints/pkg/errors"
	"github.com/NVIDIA/deploy-constraints/pkg/expression"
)

func intp(n int) *int { return &n }

func testBindings() expression.Bindings {
	return expression.Bindings{
		"cluster": expression.Map{"mode": "ha"},
		"settings": expression.Map{
			"storage": map[string]any{
				"replicas": map[string]any{"value": 2},
				"ceph":     map[string]any{"value": true},
			},
		},
	}
}

func TestCheck_Comparators(t *testing.T) {
	c := NewChecker(expression.NewCELEvaluator())
	spec := &Spec{Min: Literal(2), Max: Literal(2)}

	res, err := c.Check(testBindings(), spec, "controller", 2)
	require.NoError(t, err)
	assert.True(t, res.Valid, res.Message)
	assert.Empty(t, res.Message)

	res, err = c.Check(testBindings(), spec, "controller", 2, WithLimitReached(false))
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Message, "No more than 2")
	assert.Contains(t, res.Message, "At least 2")

	res, err = c.Check(testBindings(), spec, "controller", 2, WithLimitReached(false), WithBoundTypes(Max))
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.NotContains(t, res.Message, "At least")
}

func TestCheck_Table(t *testing.T) {
	c := NewChecker(expression.NewCELEvaluator())

	tests := []struct {
		name      string
		spec      *Spec
		count     int
		reached   bool
		wantValid bool
	}{
		{"min satisfied", &Spec{Min: Literal(1)}, 1, true, true},
		{"min violated", &Spec{Min: Literal(1)}, 0, true, false},
		{"min at edge when adding", &Spec{Min: Literal(1)}, 1, false, false},
		{"max satisfied", &Spec{Max: Literal(3)}, 3, true, true},
		{"max exceeded", &Spec{Max: Literal(3)}, 4, true, false},
		{"max reached when adding", &Spec{Max: Literal(3)}, 3, false, false},
		{"recommended below", &Spec{Recommended: Literal(3)}, 2, true, false},
		{"recommended ignores reached", &Spec{Recommended: Literal(3)}, 3, false, true},
		{"unbounded", &Spec{}, 100, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := c.Check(testBindings(), tt.spec, "node", tt.count, WithLimitReached(tt.reached))
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, res.Valid, res.Message)
			assert.Equal(t, tt.count, res.Count)
		})
	}
}

func TestCheck_OverridePrecedence(t *testing.T) {
	c := NewChecker(expression.NewCELEvaluator())
	spec := &Spec{
		Max:       Literal(5),
		Overrides: []Override{{Condition: "true", Max: Literal(1)}},
	}

	for _, count := range []int{0, 1, 2, 5, 6} {
		res, err := c.Check(testBindings(), spec, "compute", count)
		require.NoError(t, err)
		require.NotNil(t, res.Limits.Max)
		assert.Equal(t, 1, *res.Limits.Max)
		assert.Equal(t, count <= 1, res.Valid)
	}

	// the limit spec is not mutated by evaluation
	assert.Equal(t, "5", spec.Max.String())
}

func TestCheck_OverrideMessageAndFallback(t *testing.T) {
	c := NewChecker(expression.NewCELEvaluator())
	spec := &Spec{
		Min: Literal(1),
		Max: Literal(10),
		Overrides: []Override{
			{Condition: "cluster.mode == 'multinode'", Min: Literal(5), Message: "never"},
			{Condition: "settings.storage.ceph.value", Min: Literal(3), Message: "Ceph needs three."},
		},
	}

	res, err := c.Check(testBindings(), spec, "storage", 2)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, "Ceph needs three.", res.Message)
	assert.Equal(t, Values{Min: intp(3), Max: intp(10)}, res.Limits)
}

func TestCheck_FirstMatchingOverrideWins(t *testing.T) {
	c := NewChecker(expression.NewCELEvaluator())
	spec := &Spec{
		Max: Literal(5),
		Overrides: []Override{
			{Condition: "true", Max: Literal(1), Message: "max one"},
			{Condition: "true", Max: Literal(3), Message: "max three"},
		},
	}

	res, err := c.Check(testBindings(), spec, "x", 2)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, "max one", res.Message)
	require.NotNil(t, res.Limits.Max)
	assert.Equal(t, 1, *res.Limits.Max)

	// a later override still supplies bound types the earlier one leaves open
	spec.Overrides[1].Min = Literal(4)
	res, err = c.Check(testBindings(), spec, "x", 2)
	require.NoError(t, err)
	assert.Equal(t, "max three max one", res.Message)
	assert.Equal(t, Values{Min: intp(4), Max: intp(1)}, res.Limits)
}

func TestCheck_UnresolvableOverrideFallsBackToGlobal(t *testing.T) {
	c := NewChecker(expression.NewCELEvaluator())
	spec := &Spec{
		Max:       Literal(1),
		Overrides: []Override{{Condition: "true", Max: Expr("nosuch.attr"), Message: "never"}},
	}

	res, err := c.Check(testBindings(), spec, "compute", 4)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, "No more than 1 compute node(s) allowed, 4 assigned.", res.Message)
	assert.Equal(t, intp(1), res.Limits.Max)
}

func TestWorstMessages(t *testing.T) {
	violations := []violation{
		{boundType: Min, value: 2, message: "min two"},
		{boundType: Max, value: 1, message: "max one"},
		{boundType: Min, value: 4, message: "min four"},
		{boundType: Max, value: 0, message: "max zero"},
		{boundType: Recommended, value: 3, message: "rec three"},
	}

	assert.Equal(t, "min four", worstMessages(violations, []BoundType{Min}), "largest min wins")
	assert.Equal(t, "max zero", worstMessages(violations, []BoundType{Max}), "smallest max wins")
	assert.Equal(t, "max zero min four rec three", worstMessages(violations, []BoundType{Max, Min, Recommended}))
	assert.Empty(t, worstMessages(nil, AllBoundTypes))
}

func TestCheck_ExpressionBounds(t *testing.T) {
	c := NewChecker(expression.NewCELEvaluator())
	spec := &Spec{
		Min:         Expr("cluster.mode == 'ha' ? 3 : 1"),
		Recommended: Expr("settings.storage.replicas.value"),
	}

	res, err := c.Check(testBindings(), spec, "controller", 2)
	require.NoError(t, err)
	assert.Equal(t, Values{Min: intp(3), Recommended: intp(2)}, res.Limits)
	assert.False(t, res.Valid)
	assert.Equal(t, "At least 3 controller node(s) required, 2 assigned.", res.Message)
}

func TestCheck_UnresolvableBoundIsSkipped(t *testing.T) {
	c := NewChecker(expression.NewCELEvaluator())
	spec := &Spec{Min: Expr("settings.missing.value")}

	res, err := c.Check(testBindings(), spec, "x", 0)
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Nil(t, res.Limits.Min)
}

func TestCheck_NilSpec(t *testing.T) {
	_, err := NewChecker(expression.NewCELEvaluator()).Check(testBindings(), nil, "x", 0)
	require.Error(t, err)

	var se *cerrors.StructuredError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, cerrors.ErrCodeInvalidRequest, se.Code)
}

func TestSpec_UnmarshalYAML(t *testing.T) {
	data := `
min: 1
max: "cluster.mode == 'ha' ? 3 : 1"
recommended: settings.storage.replicas.value
overrides:
  - condition: "settings.storage.ceph.value"
    min: 3
    message: needs three
`
	var spec Spec
	require.NoError(t, yaml.Unmarshal([]byte(data), &spec))

	assert.True(t, spec.Min.IsLiteral())
	assert.Equal(t, "1", spec.Min.String())
	assert.False(t, spec.Max.IsLiteral())
	assert.Equal(t, "cluster.mode == 'ha' ? 3 : 1", spec.Max.String())
	assert.Equal(t, "settings.storage.replicas.value", spec.Recommended.String())
	require.Len(t, spec.Overrides, 1)
	assert.Equal(t, "3", spec.Overrides[0].Min.String())
	assert.Nil(t, spec.Overrides[0].Max)
}

func TestBound_JSON(t *testing.T) {
	b, err := json.Marshal(&Spec{Min: Literal(2), Max: Expr("cluster.size")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"min":2,"max":"cluster.size"}`, string(b))

	var spec Spec
	require.NoError(t, json.Unmarshal(b, &spec))
	assert.True(t, spec.Min.IsLiteral())
	assert.Equal(t, "cluster.size", spec.Max.String())
}

type node struct {
	roles    []string
	deleting bool
}

func (n node) HasRole(role string) bool {
	for _, r := range n.roles {
		if r == role {
			return true
		}
	}
	return false
}

func (n node) PendingDeletion() bool { return n.deleting }

func TestCount(t *testing.T) {
	nodes := []node{
		{roles: []string{"controller"}},
		{roles: []string{"controller", "storage"}},
		{roles: []string{"controller"}, deleting: true},
		{roles: []string{"compute"}},
	}
	assert.Equal(t, 2, Count(nodes, "controller"))
	assert.Equal(t, 1, Count(nodes, "storage"))
	assert.Equal(t, 0, Count(nodes, "ironic"))
}
