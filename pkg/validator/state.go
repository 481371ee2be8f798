/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package validator

import (
	"context"
	"encoding/json"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/deploy-constraints/pkg/component"
	cerrors "github.com/NVIDIA/deploy-constraints/pkg/errors"
	"github.com/NVIDIA/deploy-constraints/pkg/expression"
	"github.com/NVIDIA/deploy-constraints/pkg/network"
	"github.com/NVIDIA/deploy-constraints/pkg/settings"
)

// Binding names available to catalog expressions.
const (
	BindingCluster              = "cluster"
	BindingNetworkingParameters = "networking_parameters"
)

// StdinPath reads the state from standard input.
const StdinPath = "-"

// Node is a cluster node and its role assignment.
type Node struct {
	Name         string   `json:"name" yaml:"name"`
	Roles        []string `json:"roles,omitempty" yaml:"roles,omitempty"`
	PendingRoles []string `json:"pending_roles,omitempty" yaml:"pending_roles,omitempty"`
	Deleting     bool     `json:"pending_deletion,omitempty" yaml:"pending_deletion,omitempty"`
	Group        int      `json:"group_id,omitempty" yaml:"group_id,omitempty"`
}

// HasRole reports whether the node has or is about to get role.
func (n Node) HasRole(role string) bool {
	return slices.Contains(n.Roles, role) || slices.Contains(n.PendingRoles, role)
}

// PendingDeletion reports whether the node is scheduled for removal.
func (n Node) PendingDeletion() bool {
	return n.Deleting
}

// AllRoles returns assigned and pending roles, deduplicated, in order.
func (n Node) AllRoles() []string {
	out := make([]string, 0, len(n.Roles)+len(n.PendingRoles))
	for _, r := range append(append([]string(nil), n.Roles...), n.PendingRoles...) {
		if !slices.Contains(out, r) {
			out = append(out, r)
		}
	}
	return out
}

// ClusterState is a snapshot of everything the validators look at.
type ClusterState struct {
	Name   string `json:"name" yaml:"name"`
	Mode   string `json:"mode,omitempty" yaml:"mode,omitempty"`
	Status string `json:"status,omitempty" yaml:"status,omitempty"`
	// Attributes are extra cluster attributes exposed to expressions.
	Attributes map[string]any             `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Nodes      []Node                     `json:"nodes,omitempty" yaml:"nodes,omitempty"`
	NodeGroups []network.NodeNetworkGroup `json:"node_network_groups,omitempty" yaml:"node_network_groups,omitempty"`
	// Components selects optional components. Nil means the catalog defaults.
	Components []component.ID         `json:"components,omitempty" yaml:"components,omitempty"`
	Settings   settings.Values        `json:"settings,omitempty" yaml:"settings,omitempty"`
	Network    *network.Configuration `json:"network,omitempty" yaml:"network,omitempty"`
}

// ActiveNodes returns nodes that are not pending deletion.
func (s *ClusterState) ActiveNodes() []Node {
	var out []Node
	for _, n := range s.Nodes {
		if !n.Deleting {
			out = append(out, n)
		}
	}
	return out
}

// ClusterModel returns the "cluster" expression model: name, mode, status, the
// number of active nodes, nodes_<role> counts and any extra attributes.
func (s *ClusterState) ClusterModel(counts map[string]int) expression.Map {
	m := expression.Map{}
	for k, v := range s.Attributes {
		m[k] = v
	}
	m["name"] = s.Name
	m["mode"] = s.Mode
	m["status"] = s.Status
	m["nodes"] = len(s.ActiveNodes())
	for role, n := range counts {
		m["nodes_"+role] = n
	}
	return m
}

// NetworkingModel returns the "networking_parameters" expression model.
func (s *ClusterState) NetworkingModel() expression.Map {
	m := expression.Map{}
	if s.Network == nil {
		return m
	}
	b, err := json.Marshal(s.Network.NetworkingParameters)
	if err != nil {
		return m
	}
	if err := json.Unmarshal(b, &m); err != nil {
		return expression.Map{}
	}
	return m
}

// ParseState decodes a YAML or JSON cluster state.
func ParseState(data []byte) (*ClusterState, error) {
	var st ClusterState
	if err := yaml.Unmarshal(data, &st); err != nil {
		return nil, cerrors.Wrap(cerrors.ErrCodeInvalidRequest, "invalid cluster state", err)
	}
	return &st, nil
}

// LoadState reads a cluster state from path, or from stdin when path is StdinPath.
func LoadState(ctx context.Context, path string) (*ClusterState, error) {
	data, err := readInput(ctx, path)
	if err != nil {
		return nil, err
	}
	return ParseState(data)
}
