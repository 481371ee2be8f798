/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/deploy-constraints/pkg/expression"
)

const settingsYAML = `
- name: common
  weight: 10
  settings:
    - name: hostname
      type: text
      value: node
      regex:
        source: '^[a-z][a-z0-9-]*$'
        error: "Invalid hostname"
    - name: debug
      type: checkbox
      value: false
    - name: workers
      type: number
      value: 4
      min: 1
      max: 64
    - name: proxy
      type: text
      value: ""
      regex:
        source: '^https?://'
        error: "Invalid proxy URL"
      restrictions:
        - condition: "!settings.common.use_proxy.value"
          action: hide
    - name: use_proxy
      type: checkbox
      value: false
- name: storage
  weight: 20
  settings:
    - name: backend
      type: radio
      value: lvm
      values:
        - data: lvm
        - data: ceph
          restrictions:
            - "cluster.nodes < 3": "Ceph needs three nodes."
- name: logging
  weight: 30
  toggleable: true
  enabled: false
  settings:
    - name: server
      type: text
      value: ""
      regex:
        source: '^\S+$'
        error: "Server is required"
`

func loadSettings(t *testing.T) *Catalog {
	t.Helper()
	var groups []*Group
	require.NoError(t, yaml.Unmarshal([]byte(settingsYAML), &groups))
	c, err := NewCatalog(groups)
	require.NoError(t, err)
	return c
}

func clusterBindings(nodes int) expression.Bindings {
	return expression.Bindings{"cluster": expression.Map{"nodes": nodes}}
}

func TestNewCatalog(t *testing.T) {
	c := loadSettings(t)
	assert.Equal(t, 7, c.Len())

	common, ok := c.Group("common")
	require.True(t, ok)
	assert.Equal(t, "debug", common.Settings[0].Name, "equal weights sort by name")

	_, ok = c.Setting("storage", "backend")
	assert.True(t, ok)
	_, ok = c.Setting("storage", "missing")
	assert.False(t, ok)
	_, ok = c.Setting("missing", "backend")
	assert.False(t, ok)
}

func TestNewCatalog_Rejects(t *testing.T) {
	_, err := NewCatalog([]*Group{{Name: "a"}, {Name: "a"}})
	assert.Error(t, err)

	_, err = NewCatalog([]*Group{{Name: MetadataKey}})
	assert.Error(t, err)

	_, err = NewCatalog([]*Group{{Name: "a", Settings: []*Setting{{Name: "x"}, {Name: "x"}}}})
	assert.Error(t, err)

	_, err = NewCatalog([]*Group{{Name: "a", Settings: []*Setting{{Name: "x", Regex: &Regex{Source: "("}}}}})
	assert.Error(t, err)
}

func TestValidate_Defaults(t *testing.T) {
	c := loadSettings(t)
	res := c.Validate(expression.NewCELEvaluator(), clusterBindings(1), nil)

	assert.True(t, res.Valid, "%v", res.Errors)
	assert.Equal(t, 5, res.Checked)
	assert.Equal(t, 2, res.Skipped, "hidden proxy and the disabled logging group")
}

func TestValidate_Errors(t *testing.T) {
	c := loadSettings(t)
	values := Values{
		"common": {
			"hostname":  "Node_1",
			"debug":     "yes",
			"workers":   100,
			"use_proxy": true,
			"proxy":     "ftp://proxy",
		},
		"storage": {"backend": "ceph"},
		"logging": {MetadataKey: map[string]any{"enabled": true}},
		"bogus":   {"x": 1},
	}

	res := c.Validate(expression.NewCELEvaluator(), clusterBindings(1), values)
	assert.False(t, res.Valid)
	assert.Equal(t, map[string]string{
		"common.hostname": "Invalid hostname",
		"common.debug":    "Value must be a boolean",
		"common.workers":  "Value must be at most 64",
		"common.proxy":    "Invalid proxy URL",
		"storage.backend": "Ceph needs three nodes.",
		"logging.server":  "Server is required",
	}, res.Errors)
	assert.Equal(t, []string{"bogus.x"}, res.Unknown)
	assert.Equal(t, 0, res.Skipped)
}

func TestValidate_OptionAvailableWithEnoughNodes(t *testing.T) {
	c := loadSettings(t)
	values := Values{"storage": {"backend": "ceph"}}

	res := c.Validate(expression.NewCELEvaluator(), clusterBindings(3), values)
	assert.True(t, res.Valid, "%v", res.Errors)

	values["storage"]["backend"] = "nfs"
	res = c.Validate(expression.NewCELEvaluator(), clusterBindings(3), values)
	assert.Equal(t, `Invalid option "nfs"`, res.Errors["storage.backend"])
}

func TestModel(t *testing.T) {
	c := loadSettings(t)
	m := c.Model(Values{"common": {"debug": true}})

	v, err := expression.Lookup(m, "common.debug.value")
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = expression.Lookup(m, "logging.metadata.enabled")
	require.NoError(t, err)
	assert.Equal(t, false, v)

	v, err = expression.Lookup(m, "common.workers.value")
	require.NoError(t, err)
	assert.Equal(t, 4, v)
}
