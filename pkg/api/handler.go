/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/NVIDIA/deploy-constraints/pkg/catalog"
	"github.com/NVIDIA/deploy-constraints/pkg/defaults"
	cerrors "github.com/NVIDIA/deploy-constraints/pkg/errors"
	"github.com/NVIDIA/deploy-constraints/pkg/serializer"
	"github.com/NVIDIA/deploy-constraints/pkg/server"
	"github.com/NVIDIA/deploy-constraints/pkg/validator"
)

// Handler serves validation requests against one catalog.
type Handler struct {
	catalog   *catalog.Catalog
	validator *validator.Validator
}

// NewHandler returns a Handler for cat.
func NewHandler(cat *catalog.Catalog, v *validator.Validator) *Handler {
	return &Handler{catalog: cat, validator: v}
}

// Routes returns the API routes for server.WithHandlers.
func (h *Handler) Routes() map[string]http.HandlerFunc {
	return map[string]http.HandlerFunc{
		"POST /v1/validate": h.HandleValidate,
		"POST /v1/network":  h.HandleNetwork,
		"POST /v1/limits":   h.HandleLimits,
		"GET /v1/catalog":   h.HandleCatalog,
	}
}

func readBody(r *http.Request) ([]byte, error) {
	b, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, cerrors.WrapWithContext(cerrors.ErrCodeInvalidRequest, "request body too large", err,
				map[string]any{"limit": tooLarge.Limit})
		}
		return nil, cerrors.Wrap(cerrors.ErrCodeInvalidRequest, "failed to read request body", err)
	}
	if len(b) == 0 {
		return nil, cerrors.New(cerrors.ErrCodeInvalidRequest, "request body is empty")
	}
	return b, nil
}

// HandleValidate handles POST /v1/validate. The body is a cluster state in YAML
// or JSON; the response is a validation report whatever its verdict.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "failed to read cluster state", nil)
		return
	}
	st, err := validator.ParseState(body)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "invalid cluster state", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaults.ValidationTimeout)
	defer cancel()

	report, err := h.validator.Validate(ctx, h.catalog, st)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "validation failed", nil)
		return
	}

	slog.Debug("cluster validated", "request_id", server.RequestID(r), "report", report.ID, "status", report.Summary.Status)
	serializer.Respond(w, r, http.StatusOK, report)
}

// HandleNetwork handles POST /v1/network.
func (h *Handler) HandleNetwork(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "failed to read network configuration", nil)
		return
	}
	in, err := validator.ParseNetworkInput(body)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "invalid network configuration", nil)
		return
	}
	res, err := h.validator.CheckNetwork(in)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "network validation failed", nil)
		return
	}
	serializer.Respond(w, r, http.StatusOK, res)
}

// HandleLimits handles POST /v1/limits?role=NAME[&reached=false]. The body is a
// cluster state.
func (h *Handler) HandleLimits(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name := q.Get("role")
	if name == "" {
		server.WriteError(w, r, http.StatusBadRequest, cerrors.ErrCodeInvalidRequest,
			"query parameter role is required", false, nil)
		return
	}
	reached := true
	if s := q.Get("reached"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			server.WriteError(w, r, http.StatusBadRequest, cerrors.ErrCodeInvalidRequest,
				fmt.Sprintf("invalid reached value %q", s), false, nil)
			return
		}
		reached = b
	}

	body, err := readBody(r)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "failed to read cluster state", nil)
		return
	}
	st, err := validator.ParseState(body)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "invalid cluster state", nil)
		return
	}

	res, err := h.validator.CheckRoleLimits(h.catalog, st, name, reached)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "limit check failed", map[string]any{"role": name})
		return
	}
	serializer.Respond(w, r, http.StatusOK, res)
}

// HandleCatalog handles GET /v1/catalog.
func (h *Handler) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	serializer.Respond(w, r, http.StatusOK, h.catalog.Summarize(h.validator.Version))
}
