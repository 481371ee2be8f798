/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"context"

	"github.com/urfave/cli/v3"
)

func catalogCmd() *cli.Command {
	return &cli.Command{
		Name:                  "catalog",
		EnableShellCompletion: true,
		Usage:                 "Show the roles, components and settings of the catalog",
		Description: `Loads and schema-checks the catalog, then prints a summary. Dangling
references (for example a requirement naming an unknown component) are listed as
diagnostics.

# Examples

  dcctl catalog
  dcctl catalog --catalog ./my-catalog --format json`,
		Flags: []cli.Flag{
			catalogFlag(),
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
			return writeResult(ctx, cmd, cat.Summarize(version))
		},
	}
}
