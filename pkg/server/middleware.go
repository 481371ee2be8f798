/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	cerrors "github.com/NVIDIA/deploy-constraints/pkg/errors"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-Id"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// withMiddleware wraps an API handler: request id, API version, panic recovery,
// rate limiting, body size limit, then metrics and access logging.
func (s *Server) withMiddleware(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.New().String()
		}
		r = r.WithContext(context.WithValue(r.Context(), contextKeyRequestID, requestID))
		w.Header().Set(RequestIDHeader, requestID)
		w.Header().Set(APIVersionHeader, negotiateAPIVersion(r))

		rec := &statusRecorder{ResponseWriter: w}
		defer func() {
			if p := recover(); p != nil {
				slog.Error("handler panic", "route", route, "request_id", requestID, "panic", p)
				if rec.status == 0 {
					WriteError(rec, r, http.StatusInternalServerError, cerrors.ErrCodeInternal,
						"internal server error", true, map[string]any{"panic": fmt.Sprint(p)})
				}
			}
			observe(route, r.Method, rec.status, time.Since(start))
			slog.Debug("request handled",
				"route", route,
				"method", r.Method,
				"status", rec.status,
				"request_id", requestID,
				"remote_addr", r.RemoteAddr,
				"duration", time.Since(start))
		}()

		if !s.limiter.Allow() {
			rateLimited.Inc()
			rec.Header().Set("Retry-After", "1")
			WriteError(rec, r, http.StatusTooManyRequests, cerrors.ErrCodeRateLimitExceeded,
				"rate limit exceeded", true, map[string]any{
					"limit": float64(s.limiter.Limit()),
					"burst": s.limiter.Burst(),
				})
			return
		}

		if s.config.MaxBodyBytes > 0 && r.Body != nil {
			r.Body = http.MaxBytesReader(rec, r.Body, s.config.MaxBodyBytes)
		}

		next(rec, r)
	}
}

func observe(route, method string, status int, d time.Duration) {
	if status == 0 {
		status = http.StatusOK
	}
	requestTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	requestDuration.WithLabelValues(route).Observe(d.Seconds())
}
