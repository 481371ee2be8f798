/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package validator

import (
	"context"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	cerrors "github.com/NVIDIA/deploy-constraints/pkg/errors"
	"github.com/NVIDIA/deploy-constraints/pkg/header"
	"github.com/NVIDIA/deploy-constraints/pkg/network"
)

// NetworkInput is a standalone network configuration with its node groups.
type NetworkInput struct {
	network.Configuration `json:",inline" yaml:",inline"`

	NodeGroups []network.NodeNetworkGroup `json:"node_network_groups,omitempty" yaml:"node_network_groups,omitempty"`
}

// NetworkResult is the outcome of a standalone network check.
type NetworkResult struct {
	header.Header `json:",inline" yaml:",inline"`

	Valid  bool            `json:"valid" yaml:"valid"`
	Errors *network.Errors `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// CheckNetwork validates a network configuration outside of a cluster state.
func (v *Validator) CheckNetwork(in *NetworkInput) (*NetworkResult, error) {
	if in == nil {
		return nil, cerrors.New(cerrors.ErrCodeInvalidRequest, "network configuration cannot be nil")
	}
	res := &NetworkResult{}
	res.Init(header.KindNetworkReport, header.APIVersionV1Alpha1, v.Version)
	res.Errors = network.Validate(&in.Configuration, in.NodeGroups)
	res.Valid = res.Errors == nil
	return res, nil
}

// ParseNetworkInput decodes a YAML or JSON network configuration.
func ParseNetworkInput(data []byte) (*NetworkInput, error) {
	var in NetworkInput
	if err := yaml.Unmarshal(data, &in); err != nil {
		return nil, cerrors.Wrap(cerrors.ErrCodeInvalidRequest, "invalid network configuration", err)
	}
	return &in, nil
}

// LoadNetworkInput reads a network configuration from path, or from stdin when
// path is StdinPath.
func LoadNetworkInput(ctx context.Context, path string) (*NetworkInput, error) {
	data, err := readInput(ctx, path)
	if err != nil {
		return nil, err
	}
	return ParseNetworkInput(data)
}

func readInput(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var (
		data []byte
		err  error
	)
	if path == StdinPath {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, cerrors.Wrap(cerrors.ErrCodeNotFound, fmt.Sprintf("failed to read %q", path), err)
	}
	return data, nil
}
