/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/deploy-constraints/pkg/validator"
)

func networkCmd() *cli.Command {
	return &cli.Command{
		Name:                  "network",
		Aliases:               []string{"net"},
		EnableShellCompletion: true,
		Usage:                 "Validate a network configuration",
		Description: `Validates networks and networking parameters without a cluster state:
CIDR notation, gateways, IP ranges, floating ranges, VLAN and GRE/tunnel id ranges,
baremetal and internal networks, and DNS nameservers.

# Examples

  dcctl network --config network.yaml
  dcctl network --config network.yaml --format table`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"f"},
				Required: true,
				Usage:    "network configuration file path (- for stdin)",
			},
			failOnErrorFlag(),
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if _, err := parseOutputFormat(cmd); err != nil {
				return err
			}

			path := cmd.String("config")
			in, err := validator.LoadNetworkInput(ctx, path)
			if err != nil {
				return fmt.Errorf("failed to load network configuration from %q: %w", path, err)
			}

			res, err := validator.New(validator.WithVersion(version)).CheckNetwork(in)
			if err != nil {
				return err
			}

			if err := writeResult(ctx, cmd, res); err != nil {
				return err
			}
			return failed(cmd, res.Valid, "network validation")
		},
	}
}
