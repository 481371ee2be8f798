/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/deploy-constraints/pkg/validator"
)

func validateCmd() *cli.Command {
	return &cli.Command{
		Name:                  "validate",
		EnableShellCompletion: true,
		Usage:                 "Validate a cluster state against the constraint catalog",
		Description: `Validates a cluster state (YAML or JSON) in four sections:
  - roles: node counts per role against min/max limits, conflicting roles on a node
  - components: requirements, incompatibilities and restrictions pane by pane
  - network: CIDRs, gateways, IP ranges, VLAN and tunnel id ranges
  - settings: typed setting values of enabled groups

Recommended role counts only produce warnings.

# Examples

  dcctl validate --state cluster.yaml
  dcctl validate --state - --format json < cluster.json
  dcctl validate --state cluster.yaml --catalog ./catalog --fail-on-error`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "state",
				Aliases:  []string{"s"},
				Required: true,
				Usage:    "cluster state file path (- for stdin)",
			},
			catalogFlag(),
			failOnErrorFlag(),
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if _, err := parseOutputFormat(cmd); err != nil {
				return err
			}

			cat, err := openCatalog(ctx, cmd)
			if err != nil {
				return err
			}

			statePath := cmd.String("state")
			st, err := validator.LoadState(ctx, statePath)
			if err != nil {
				return fmt.Errorf("failed to load cluster state from %q: %w", statePath, err)
			}

			report, err := validator.New(validator.WithVersion(version)).Validate(ctx, cat, st)
			if err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}

			slog.Info("validation completed",
				"cluster", report.Cluster,
				"status", report.Summary.Status,
				"errors", report.Summary.Errors,
				"warnings", report.Summary.Warnings)

			if err := writeResult(ctx, cmd, report); err != nil {
				return err
			}
			return failed(cmd, report.Valid(), "validation")
		},
	}
}
