/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package api

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/NVIDIA/deploy-constraints/pkg/catalog"
	"github.com/NVIDIA/deploy-constraints/pkg/logging"
	"github.com/NVIDIA/deploy-constraints/pkg/server"
	"github.com/NVIDIA/deploy-constraints/pkg/validator"
)

const (
	name           = "dc-api-server"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags to reflect actual version info
	// e.g., -X "github.com/NVIDIA/deploy-constraints/pkg/api.version=1.0.0"
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// CatalogDirEnv names a directory overriding the embedded catalog files.
const CatalogDirEnv = "DC_CATALOG_DIR"

// Serve starts the API server and blocks until SIGINT or SIGTERM.
// It configures logging, loads the catalog and handles graceful shutdown.
func Serve() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.SetDefaultStructuredLogger(name, version)
	slog.Info("starting",
		"name", name,
		"version", version,
		"commit", commit,
		"date", date,
	)

	cat, err := catalog.Open(ctx, os.Getenv(CatalogDirEnv))
	if err != nil {
		slog.Error("failed to load catalog", "error", err)
		return err
	}
	for _, d := range cat.Diagnostics {
		slog.Warn("catalog diagnostic", "detail", d.String())
	}

	h := NewHandler(cat, validator.New(validator.WithVersion(version)))

	s := server.New(
		server.WithName(name),
		server.WithVersion(version),
		server.WithHandlers(h.Routes()),
	)

	if err := s.Run(ctx); err != nil {
		slog.Error("server exited with error", "error", err)
		return err
	}

	return nil
}
