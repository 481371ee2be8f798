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

	"github.com/NVIDIA/deploy-constraints/pkg/catalog"
	"github.com/NVIDIA/deploy-constraints/pkg/serializer"
)

// parseOutputFormat extracts and validates the output format from CLI flags.
// Returns the validated format or an error if the format is unknown.
func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	outFormat := serializer.ParseFormat(cmd.String("format"))
	if outFormat.IsUnknown() {
		return "", fmt.Errorf("unknown output format: %q, valid formats are: %v", outFormat, serializer.SupportedFormats())
	}
	return outFormat, nil
}

// writeResult serializes data to the --output destination.
func writeResult(ctx context.Context, cmd *cli.Command, data any) error {
	outFormat, err := parseOutputFormat(cmd)
	if err != nil {
		return err
	}

	ser, err := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
	if err != nil {
		return err
	}
	if closer, ok := ser.(serializer.Closer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				slog.Warn("failed to close serializer", "error", err)
			}
		}()
	}

	return ser.Serialize(ctx, data)
}

// openCatalog loads the --catalog directory or the embedded catalog and logs
// its diagnostics.
func openCatalog(ctx context.Context, cmd *cli.Command) (*catalog.Catalog, error) {
	cat, err := catalog.Open(ctx, cmd.String("catalog"))
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	for _, d := range cat.Diagnostics {
		slog.Warn("catalog diagnostic", "detail", d.String())
	}
	return cat, nil
}

// failed maps a failing verdict to an exit code when --fail-on-error is set.
func failed(cmd *cli.Command, ok bool, what string) error {
	if ok || !cmd.Bool("fail-on-error") {
		return nil
	}
	return cli.Exit(fmt.Sprintf("%s failed", what), ExitCodeFailed)
}
