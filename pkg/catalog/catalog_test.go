/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/deploy-constraints/pkg/component"
	cerrors "github.com/NVIDIA/deploy-constraints/pkg/errors"
	"github.com/NVIDIA/deploy-constraints/pkg/header"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, SourceEmbedded, c.Source)
	assert.Equal(t, 8, c.Roles.Len())
	assert.Len(t, c.Components.IDs(), 14)
	assert.Positive(t, c.Settings.Len())

	again, err := Default()
	require.NoError(t, err)
	assert.Same(t, c, again)

	controller, ok := c.Roles.Get("controller")
	require.True(t, ok)
	assert.True(t, controller.ConflictsWith("compute"))

	base, ok := c.Roles.Get("base-os")
	require.True(t, ok)
	assert.Len(t, base.Conflicts(), 7)

	require.Len(t, c.Diagnostics, 1)
	d := c.Diagnostics[0]
	assert.Equal(t, KindComponents, d.Kind)
	assert.Equal(t, "additional_service:sahara", d.Subject)
	assert.Equal(t, "additional_service:swift", d.Reference)
	assert.Equal(t, "requires", d.Relation)
	assert.Contains(t, d.String(), "unknown")
}

func TestSuggest(t *testing.T) {
	candidates := []string{"compute", "controller", "cinder"}
	assert.Equal(t, "controller", Suggest("controler", candidates))
	assert.Equal(t, "cinder", Suggest("cindr", candidates))
	assert.Equal(t, "", Suggest("zzzzzzzz", candidates))
	assert.Equal(t, "", Suggest("compute", []string{"compute"}))
	assert.Equal(t, "", Suggest("x", nil))
}

func TestValidateDocument(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		doc     string
		wantErr bool
	}{
		{"roles ok", KindRoles, "- name: compute\n  limits: {min: 1, max: \"cluster.nodes\"}\n", false},
		{"roles unknown field", KindRoles, "- name: compute\n  conflict_with: [a]\n", true},
		{"roles bad conflicts", KindRoles, "- name: compute\n  conflicts: all\n", true},
		{"roles not a list", KindRoles, "name: compute\n", true},
		{"components ok", KindComponents, "- name: network:a\n  requires:\n    - one_of: {items: [network:b]}\n    - component_name: network:c\n", false},
		{"components two predicates", KindComponents, "- name: network:a\n  requires:\n    - {one_of: {items: []}, any_of: {items: []}}\n", true},
		{"components bad id", KindComponents, "- name: network\n", true},
		{"settings ok", KindSettings, "- name: common\n  settings:\n    - {name: debug, type: checkbox, value: false}\n", false},
		{"settings bad type", KindSettings, "- name: common\n  settings:\n    - {name: debug, type: toggle}\n", true},
		{"unknown kind", Kind("plugins"), "[]", true},
		{"bad yaml", KindRoles, "- name: [\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocument(tt.kind, []byte(tt.doc))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestParse_RejectsSemanticErrors(t *testing.T) {
	settingsDoc := []byte("- name: common\n  settings: []\n")
	components := []byte("- name: network:a\n")

	_, err := Parse([]byte("- name: a\n- name: a\n"), components, settingsDoc)
	require.Error(t, err)
	assert.Equal(t, cerrors.ErrCodeInvalidRequest, cerrors.CodeOf(err))

	_, err = Parse([]byte("- name: a\n"), []byte("- name: gpu:a\n"), settingsDoc)
	assert.Error(t, err, "gpu is not a known pane")
}

func TestLoad_FS(t *testing.T) {
	fsys := fstest.MapFS{
		"roles.yaml":      {Data: []byte("- name: controller\n  conflicts: [compte]\n- name: compute\n")},
		"components.yaml": {Data: []byte("- name: hypervisor:qemu\n  default: true\n")},
		"settings.yaml":   {Data: []byte("- name: common\n  settings: []\n")},
	}
	c, err := Load(context.Background(), fsys, "test")
	require.NoError(t, err)
	assert.Equal(t, "test", c.Source)
	require.Len(t, c.Diagnostics, 1)
	assert.Equal(t, "compute", c.Diagnostics[0].Suggestion)

	_, err = Load(context.Background(), fstest.MapFS{}, "empty")
	require.Error(t, err)
	assert.Equal(t, cerrors.ErrCodeNotFound, cerrors.CodeOf(err))
}

func TestLoadDir_FallsBackToEmbedded(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, KindRoles.File()), []byte("- name: worker\n"), 0o600))

	c, err := LoadDir(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, dir, c.Source)
	assert.Equal(t, []string{"worker"}, c.Roles.Names())
	assert.Len(t, c.Components.IDs(), 14)

	_, err = LoadDir(context.Background(), filepath.Join(dir, "missing"))
	require.Error(t, err)
	assert.Equal(t, cerrors.ErrCodeNotFound, cerrors.CodeOf(err))

	_, err = LoadDir(context.Background(), filepath.Join(dir, KindRoles.File()))
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	s := c.Summarize("v0.1.0")
	assert.Equal(t, header.KindCatalog, s.Kind)
	assert.Equal(t, "v0.1.0", s.Metadata[header.MetadataVersion])
	assert.Len(t, s.Roles, 8)
	assert.Len(t, s.Components, 14)
	assert.Equal(t, "controller", s.Roles[0].Name)
	assert.Equal(t, component.PaneHypervisor, s.Components[0].Pane)

	var vmware ComponentSummary
	for _, cs := range s.Components {
		if cs.ID == "hypervisor:vmware" {
			vmware = cs
		}
	}
	assert.Contains(t, vmware.Incompatible, component.ID("storage:block:ceph"))

	require.NotEmpty(t, s.Settings)
	assert.Equal(t, "common", s.Settings[0].Name)
	assert.Contains(t, s.Settings[0].Settings, "libvirt_type")
	assert.Len(t, s.Diagnostics, 1)
}

func TestOpen(t *testing.T) {
	c, err := Open(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, SourceEmbedded, c.Source)

	_, err = Open(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Equal(t, cerrors.ErrCodeNotFound, cerrors.CodeOf(err))
}
