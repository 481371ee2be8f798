/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/deploy-constraints/pkg/validator"
)

const goodState = `
name: lab
mode: ha_compact
status: new
nodes:
  - {name: node-1, roles: [controller]}
  - {name: node-2, roles: [compute]}
`

const badState = `
name: lab
nodes:
  - {name: node-1, roles: [compute]}
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	return newRootCmd().Run(context.Background(), append([]string{name}, args...))
}

func hasName(flag cli.Flag, name string) bool {
	for _, n := range flag.Names() {
		if n == name {
			return true
		}
	}
	return false
}

func TestCommandStructure(t *testing.T) {
	tests := []struct {
		cmd   *cli.Command
		name  string
		flags []string
	}{
		{validateCmd(), "validate", []string{"state", "catalog", "fail-on-error", "output", "format"}},
		{networkCmd(), "network", []string{"config", "fail-on-error", "output", "format"}},
		{limitsCmd(), "limits", []string{"state", "role", "reached", "catalog", "output", "format"}},
		{catalogCmd(), "catalog", []string{"catalog", "output", "format"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.cmd.Name)
			assert.NotEmpty(t, tt.cmd.Usage)
			assert.NotEmpty(t, tt.cmd.Description)
			assert.NotNil(t, tt.cmd.Action)
			for _, want := range tt.flags {
				found := false
				for _, f := range tt.cmd.Flags {
					if hasName(f, want) {
						found = true
						break
					}
				}
				assert.True(t, found, "flag %q", want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	state := writeFile(t, "state.yaml", goodState)
	out := filepath.Join(t.TempDir(), "report.json")

	require.NoError(t, run(t, "validate", "--state", state, "--format", "json", "--output", out, "--fail-on-error"))

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	var report validator.Report
	require.NoError(t, json.Unmarshal(b, &report))
	assert.Equal(t, "lab", report.Cluster)
	assert.True(t, report.Valid())
}

func TestValidate_FailOnError(t *testing.T) {
	state := writeFile(t, "state.yaml", badState)
	out := filepath.Join(t.TempDir(), "report.yaml")

	// Without the flag a failing verdict is still a successful run.
	require.NoError(t, run(t, "validate", "--state", state, "--output", out))

	err := run(t, "validate", "--state", state, "--output", out, "--fail-on-error")
	require.Error(t, err)
	var ec cli.ExitCoder
	require.ErrorAs(t, err, &ec)
	assert.Equal(t, ExitCodeFailed, ec.ExitCode())

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	var report map[string]any
	require.NoError(t, yaml.Unmarshal(b, &report))
	assert.Equal(t, "ValidationReport", report["kind"])
}

func TestValidate_Errors(t *testing.T) {
	state := writeFile(t, "state.yaml", goodState)

	assert.ErrorContains(t, run(t, "validate", "--state", state, "--format", "xml"), "unknown output format")
	assert.ErrorContains(t, run(t, "validate", "--state", filepath.Join(t.TempDir(), "missing.yaml")), "failed to load cluster state")
	assert.ErrorContains(t, run(t, "validate", "--state", state, "--catalog", filepath.Join(t.TempDir(), "none")), "failed to load catalog")
	assert.Error(t, run(t, "validate"), "state is required")
}

func TestNetwork(t *testing.T) {
	cfg := writeFile(t, "network.yaml", `
networks:
  - id: 1
    name: management
    group_id: 1
    cidr: 192.168.0.0/24
    vlan_start: 5000
    meta: {configurable: true, notation: cidr}
`)
	out := filepath.Join(t.TempDir(), "network.json")

	require.NoError(t, run(t, "network", "--config", cfg, "--format", "json", "--output", out))
	b, err := os.ReadFile(out)
	require.NoError(t, err)
	var res validator.NetworkResult
	require.NoError(t, json.Unmarshal(b, &res))
	assert.False(t, res.Valid)

	err = run(t, "net", "--config", cfg, "--output", out, "--fail-on-error")
	var ec cli.ExitCoder
	require.ErrorAs(t, err, &ec)
}

func TestLimits(t *testing.T) {
	state := writeFile(t, "state.yaml", goodState)
	out := filepath.Join(t.TempDir(), "limits.json")

	require.NoError(t, run(t, "limits", "--state", state, "--role", "controller", "--reached=false",
		"--format", "json", "--output", out))

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	var lr validator.LimitsReport
	require.NoError(t, json.Unmarshal(b, &lr))
	assert.Equal(t, "controller", lr.Role)
	assert.False(t, lr.Reached)
	assert.Equal(t, 1, lr.Result.Count)

	assert.ErrorContains(t, run(t, "limits", "--state", state, "--role", "controler", "--output", out), "controller")
}

func TestCatalog(t *testing.T) {
	out := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, run(t, "catalog", "--output", out))

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(b), "kind: Catalog")
	assert.Contains(t, string(b), "hypervisor:qemu")
}

func TestCommandLister(_ *testing.T) {
	commandLister(context.Background(), nil)
	commandLister(context.Background(), &cli.Command{Name: "test"})
	commandLister(context.Background(), &cli.Command{
		Name: "root",
		Commands: []*cli.Command{
			{Name: "visible1"},
			{Name: "hidden", Hidden: true},
		},
	})
}
