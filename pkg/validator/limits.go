/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package validator

import (
	"github.com/NVIDIA/deploy-constraints/pkg/header"
	"github.com/NVIDIA/deploy-constraints/pkg/limits"
	"github.com/NVIDIA/deploy-constraints/pkg/role"
)

// LimitsReport is the limit check of a single role.
type LimitsReport struct {
	header.Header `json:",inline" yaml:",inline"`

	Role          string              `json:"role" yaml:"role"`
	Reached       bool                `json:"reached" yaml:"reached"`
	Result        *limits.Result      `json:"result" yaml:"result"`
	Assignability *role.Assignability `json:"assignability" yaml:"assignability"`
}

func limitsOptions(reached bool) []limits.Option {
	return []limits.Option{limits.WithLimitReached(reached)}
}
