/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package component

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/deploy-constraints/pkg/expression"
)

const componentsYAML = `
- name: hypervisor:qemu
  weight: 10
  default: true
- name: hypervisor:vmware
  weight: 20
  incompatible:
    - name: "network:*:ml2"
      message: "vCenter does not support ML2."
- name: network:neutron:ml2:vlan
  weight: 10
  default: true
  requires:
    - one_of:
        items: [hypervisor:qemu, hypervisor:vmware]
        message: "Select a hypervisor."
- name: network:neutron:ml2:tun
  weight: 20
  incompatible:
    - name: network:neutron:ml2:vlan
      message: "Only one segmentation type."
- name: storage:ceph
  weight: 10
  requires:
    - component_name: network:neutron:ml2:vlan
      message: "Ceph needs VLAN."
  restrictions:
    - "cluster.nodes < 3": "Ceph needs three nodes."
- name: additional_service:sahara
  weight: 10
  requires:
    - any_of:
        items: [storage:ceph, storage:missing]
        message: "Sahara needs Ceph."
        message_invalid: "Sahara can never be enabled."
  restrictions:
    - condition: "cluster.mode != 'ha'"
      action: hide
`

func loadCatalog(t *testing.T) *Catalog {
	t.Helper()
	var comps []*Component
	require.NoError(t, yaml.Unmarshal([]byte(componentsYAML), &comps))
	c, err := NewCatalog(comps)
	require.NoError(t, err)
	return c
}

func bindings(nodes int) expression.Bindings {
	return expression.Bindings{
		"cluster": expression.Map{"nodes": nodes, "mode": "ha"},
	}
}

func TestPattern_Match(t *testing.T) {
	tests := []struct {
		pattern Pattern
		id      ID
		want    bool
	}{
		{"network:*:ml2", "network:openvswitch:ml2", true},
		{"network:*:ml2", "network:neutron:ml2:vlan", true},
		{"network:*:ml2", "network:ml2", false},
		{"network:*:ml2", "storage:openvswitch:ml2", false},
		{"network:*", "network:neutron:ml2:tun", true},
		{"network:neutron", "network:neutron:ml2", false},
		{"network:neutron", "network:neutron", true},
	}
	for _, tt := range tests {
		t.Run(string(tt.pattern)+"/"+string(tt.id), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pattern.Match(tt.id))
		})
	}
}

func TestID_Type(t *testing.T) {
	assert.Equal(t, "network", ID("network:neutron:ml2").Type())
	assert.Equal(t, "storage", ID("storage").Type())
	assert.Equal(t, []string{"a", "b"}, ID("a:b").Segments())
}

func TestPredicate_Parse(t *testing.T) {
	for _, p := range []Predicate{OneOf, NoneOf, AnyOf, AllOf} {
		got, ok := ParsePredicate(p.String())
		require.True(t, ok)
		assert.Equal(t, p, got)
	}
	_, ok := ParsePredicate("some_of")
	assert.False(t, ok)
	assert.Equal(t, "Predicate(9)", Predicate(9).String())
}

func TestNormalize_LegacyFolded(t *testing.T) {
	raw := []RawRequirement{
		{NoneOf: &RawGroup{Items: []ID{"storage:x"}, Message: "no x"}},
		{ComponentName: "hypervisor:qemu", Message: "needs qemu."},
		{ComponentName: "network:neutron", Message: "needs neutron."},
	}
	reqs, err := Normalize(raw)
	require.NoError(t, err)
	require.Len(t, reqs, 2)

	assert.Equal(t, AllOf, reqs[0].Predicate)
	assert.Equal(t, []ID{"hypervisor:qemu", "network:neutron"}, reqs[0].Items)
	assert.Equal(t, "needs qemu. needs neutron.", reqs[0].Message)
	assert.Equal(t, NoneOf, reqs[1].Predicate)

	again, err := Normalize(Denormalize(reqs))
	require.NoError(t, err)
	assert.Equal(t, reqs, again)
}

func TestNormalize_Errors(t *testing.T) {
	_, err := Normalize([]RawRequirement{{}})
	assert.Error(t, err)

	_, err = Normalize([]RawRequirement{{
		OneOf: &RawGroup{Items: []ID{"a:b"}},
		AnyOf: &RawGroup{Items: []ID{"a:c"}},
	}})
	assert.Error(t, err)

	_, err = Normalize([]RawRequirement{{ComponentName: "a:b", AllOf: &RawGroup{}}})
	assert.Error(t, err)
}

func TestRequirements_YAMLRoundTrip(t *testing.T) {
	var comps []*Component
	require.NoError(t, yaml.Unmarshal([]byte(componentsYAML), &comps))

	out, err := yaml.Marshal(comps[4].Requires)
	require.NoError(t, err)
	assert.Contains(t, string(out), "all_of:")
	assert.NotContains(t, string(out), "component_name")

	var back Requirements
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, comps[4].Requires, back)
}

func TestCatalog_OrderAndUnknown(t *testing.T) {
	c := loadCatalog(t)

	assert.Equal(t, []ID{
		"hypervisor:qemu",
		"hypervisor:vmware",
		"network:neutron:ml2:vlan",
		"network:neutron:ml2:tun",
		"storage:ceph",
		"additional_service:sahara",
	}, c.IDs())

	require.Len(t, c.Unknown, 1)
	assert.Equal(t, "storage:missing", c.Unknown[0].Reference)
	assert.Equal(t, "requires", c.Unknown[0].Kind)
}

func TestCatalog_Rejects(t *testing.T) {
	_, err := NewCatalog([]*Component{{ID: "network:a"}, {ID: "network:a"}})
	assert.Error(t, err)

	_, err = NewCatalog([]*Component{{ID: "gpu:a"}})
	assert.Error(t, err)

	c, err := NewCatalog([]*Component{{ID: "gpu:a"}}, WithPanes("gpu"))
	require.NoError(t, err)
	assert.Equal(t, []Pane{"gpu"}, c.Panes())
}

func TestCatalog_IncompatibleSymmetric(t *testing.T) {
	c := loadCatalog(t)

	msg, ok := c.Incompatible("network:neutron:ml2:vlan", "network:neutron:ml2:tun")
	require.True(t, ok)
	assert.Equal(t, "Only one segmentation type.", msg)

	_, ok = c.Incompatible("network:neutron:ml2:tun", "network:neutron:ml2:vlan")
	assert.True(t, ok)

	// Longer ids match as long as the fixed segments line up.
	assert.Equal(t, []ID{"network:neutron:ml2:tun", "network:neutron:ml2:vlan"}, c.IncompatibleWith("hypervisor:vmware"))
	assert.Contains(t, c.IncompatibleWith("network:neutron:ml2:tun"), ID("hypervisor:vmware"))
}

func TestEvaluateRequirement(t *testing.T) {
	c := loadCatalog(t)
	r := NewResolver(c, expression.NewCELEvaluator())
	require.NoError(t, r.Select())

	forthcoming := []ID{"storage:ceph"}
	none := []ID{"storage:missing"}

	tests := []struct {
		name    string
		req     Requirement
		pane    Pane
		enable  []ID
		matched bool
		invalid bool
	}{
		{"one_of forthcoming only", Requirement{Predicate: OneOf, Items: forthcoming}, PaneNetwork, nil, true, false},
		{"one_of nothing", Requirement{Predicate: OneOf, Items: none}, PaneNetwork, nil, false, true},
		{"one_of exactly one", Requirement{Predicate: OneOf, Items: []ID{"hypervisor:qemu", "hypervisor:vmware"}}, PaneNetwork, []ID{"hypervisor:qemu"}, true, false},
		{"one_of two", Requirement{Predicate: OneOf, Items: []ID{"hypervisor:qemu", "hypervisor:vmware"}}, PaneNetwork, []ID{"hypervisor:qemu", "hypervisor:vmware"}, false, false},
		{"one_of processed none enabled", Requirement{Predicate: OneOf, Items: []ID{"hypervisor:qemu"}}, PaneNetwork, nil, false, false},
		{"none_of clean", Requirement{Predicate: NoneOf, Items: []ID{"hypervisor:vmware"}}, PaneNetwork, nil, true, false},
		{"none_of enabled", Requirement{Predicate: NoneOf, Items: []ID{"hypervisor:vmware"}}, PaneNetwork, []ID{"hypervisor:vmware"}, false, false},
		{"none_of empty never invalid", Requirement{Predicate: NoneOf, Items: none}, PaneNetwork, nil, true, false},
		{"any_of two", Requirement{Predicate: AnyOf, Items: []ID{"hypervisor:qemu", "hypervisor:vmware"}}, PaneNetwork, []ID{"hypervisor:qemu", "hypervisor:vmware"}, true, false},
		{"any_of forthcoming", Requirement{Predicate: AnyOf, Items: forthcoming}, PaneHypervisor, nil, true, false},
		{"any_of empty", Requirement{Predicate: AnyOf}, PaneHypervisor, nil, false, true},
		{"all_of vacuous", Requirement{Predicate: AllOf, Items: forthcoming}, PaneNetwork, nil, true, false},
		{"all_of partial", Requirement{Predicate: AllOf, Items: []ID{"hypervisor:qemu", "hypervisor:vmware"}}, PaneNetwork, []ID{"hypervisor:qemu"}, false, false},
		{"all_of empty", Requirement{Predicate: AllOf, Items: none}, PaneNetwork, nil, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, r.Select(tt.enable...))
			o, err := r.EvaluateRequirement(tt.req, tt.pane)
			require.NoError(t, err)
			assert.Equal(t, tt.matched, o.Matched, "matched")
			assert.Equal(t, tt.invalid, o.Invalid, "invalid")
		})
	}

	_, err := r.EvaluateRequirement(Requirement{Predicate: OneOf}, "gpu")
	assert.Error(t, err)
}

func TestEvaluateRequirement_NullItemsExcluded(t *testing.T) {
	r := NewResolver(loadCatalog(t), expression.NewCELEvaluator())
	require.NoError(t, r.Select("hypervisor:qemu"))

	o, err := r.EvaluateRequirement(Requirement{
		Predicate: OneOf,
		Items:     []ID{"hypervisor:qemu", "hypervisor:gone"},
	}, PaneHypervisor)
	require.NoError(t, err)
	assert.True(t, o.Matched)
	assert.Equal(t, 1, o.Processed)
	assert.Equal(t, 0, o.Forthcoming)
	assert.Equal(t, 1, o.Null)
}

func TestProcessPaneRequires_CurrentPaneDisabled(t *testing.T) {
	r := NewResolver(loadCatalog(t), expression.NewCELEvaluator())
	require.NoError(t, r.Select("network:neutron:ml2:vlan"))

	require.NoError(t, r.ProcessPaneRequires(PaneNetwork))

	st, ok := r.State("network:neutron:ml2:vlan")
	require.True(t, ok)
	assert.False(t, st.Enabled)
	assert.True(t, st.Disabled)
	assert.True(t, st.RequireFail)
	assert.False(t, st.Invalid)
	assert.Equal(t, "Select a hypervisor.", st.Warnings)
}

func TestProcessPaneRequires_EarlierPaneOnlyWarned(t *testing.T) {
	r := NewResolver(loadCatalog(t), expression.NewCELEvaluator())
	require.NoError(t, r.Select("hypervisor:qemu", "network:neutron:ml2:vlan", "storage:ceph"))
	require.NoError(t, r.ProcessPaneRequires(PaneStorage))

	st, _ := r.State("storage:ceph")
	assert.True(t, st.Enabled)
	assert.False(t, st.RequireFail)

	// Drop the hypervisor after the network pane has been committed.
	require.NoError(t, r.SetEnabled("hypervisor:qemu", false))
	require.NoError(t, r.ProcessPaneRequires(PaneStorage))

	st, _ = r.State("network:neutron:ml2:vlan")
	assert.True(t, st.Enabled, "committed pane is not retroactively disabled")
	assert.True(t, st.RequireFail)
	assert.Equal(t, "Select a hypervisor.", st.Warnings)

	v, err := r.Validate(PaneStorage)
	require.NoError(t, err)
	assert.False(t, v.Valid)
	require.Len(t, v.Issues, 1)
	assert.Equal(t, ID("network:neutron:ml2:vlan"), v.Issues[0].Component)
	assert.Equal(t, PaneNetwork, v.Issues[0].Pane)
	assert.False(t, v.Issues[0].Invalid)

	v, err = r.Validate(PaneNetwork)
	require.NoError(t, err)
	assert.True(t, v.Valid, "the network pane itself is not yet committed")
}

func TestProcessPaneIncompatibles(t *testing.T) {
	r := NewResolver(loadCatalog(t), expression.NewCELEvaluator())
	require.NoError(t, r.Select("hypervisor:vmware", "network:neutron:ml2:vlan", "network:neutron:ml2:tun"))

	require.NoError(t, r.ProcessPaneIncompatibles(PaneNetwork))

	vlan, _ := r.State("network:neutron:ml2:vlan")
	assert.False(t, vlan.Enabled)
	assert.Equal(t, []string{"vCenter does not support ML2."}, vlan.Reasons)

	// vlan was disabled before tun was checked, so only vmware blocks tun.
	tun, _ := r.State("network:neutron:ml2:tun")
	assert.False(t, tun.Enabled)
	assert.Equal(t, []string{"vCenter does not support ML2."}, tun.Reasons)
}

func TestProcessPaneRestrictions(t *testing.T) {
	r := NewResolver(loadCatalog(t), expression.NewCELEvaluator())
	require.NoError(t, r.Select("storage:ceph"))

	require.NoError(t, r.ProcessPaneRestrictions(bindings(1), PaneStorage))
	st, _ := r.State("storage:ceph")
	assert.False(t, st.Enabled)
	assert.True(t, st.Disabled)
	assert.Equal(t, []string{"Ceph needs three nodes."}, st.Reasons)

	require.NoError(t, r.Select("storage:ceph"))
	require.NoError(t, r.ProcessPaneRestrictions(bindings(5), PaneStorage))
	st, _ = r.State("storage:ceph")
	assert.True(t, st.Enabled)
	assert.Empty(t, st.Reasons)
}

func TestRun(t *testing.T) {
	r := NewResolver(loadCatalog(t), expression.NewCELEvaluator())

	require.NoError(t, r.Select("hypervisor:qemu", "network:neutron:ml2:vlan", "storage:ceph", "additional_service:sahara"))
	v, err := r.Run(bindings(5))
	require.NoError(t, err)
	assert.True(t, v.Valid, "%+v", v.Issues)
	assert.Equal(t, []ID{"hypervisor:qemu", "network:neutron:ml2:vlan", "storage:ceph", "additional_service:sahara"}, r.Enabled())

	require.NoError(t, r.Select("hypervisor:qemu", "network:neutron:ml2:vlan", "additional_service:sahara"))
	_, err = r.Run(bindings(5))
	require.NoError(t, err)
	st, _ := r.State("additional_service:sahara")
	assert.False(t, st.Enabled)
	assert.Equal(t, "Sahara needs Ceph.", st.Warnings)
}

func TestRun_OverlayIsolated(t *testing.T) {
	c := loadCatalog(t)
	r := NewResolver(c, expression.NewCELEvaluator())
	require.NoError(t, r.Select("storage:ceph"))
	_, err := r.Run(bindings(1))
	require.NoError(t, err)

	snap := r.Overlay()
	snap["storage:ceph"].Enabled = true
	st, _ := r.State("storage:ceph")
	assert.False(t, st.Enabled, "overlay snapshots are copies")

	comp, ok := c.Get("storage:ceph")
	require.True(t, ok)
	assert.False(t, comp.Default, "catalog is never mutated")

	r.Reset()
	st, _ = r.State("hypervisor:qemu")
	assert.True(t, st.Enabled, "defaults re-seeded")
}
