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

func limitsCmd() *cli.Command {
	return &cli.Command{
		Name:                  "limits",
		EnableShellCompletion: true,
		Usage:                 "Check the node count limits of one role",
		Description: `Checks one role's min, max and recommended limits against the cluster state
and reports whether a node may take or drop the role.

With --reached=false the check answers "may one more node be added": a count equal
to max already violates it.

# Examples

  dcctl limits --state cluster.yaml --role controller
  dcctl limits --state cluster.yaml --role ceph-osd --reached=false`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "state",
				Aliases:  []string{"s"},
				Required: true,
				Usage:    "cluster state file path (- for stdin)",
			},
			&cli.StringFlag{
				Name:     "role",
				Aliases:  []string{"r"},
				Required: true,
				Usage:    "role name",
			},
			&cli.BoolFlag{
				Name:  "reached",
				Value: true,
				Usage: "treat a count equal to a limit as within it",
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

			res, err := validator.New(validator.WithVersion(version)).
				CheckRoleLimits(cat, st, cmd.String("role"), cmd.Bool("reached"))
			if err != nil {
				return err
			}

			if err := writeResult(ctx, cmd, res); err != nil {
				return err
			}
			return failed(cmd, res.Result.Valid, "limit check")
		},
	}
}
