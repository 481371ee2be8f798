/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package catalog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	catalogLoadTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dc_catalog_load_total",
			Help: "Total number of catalog load attempts",
		},
		[]string{"status"}, // success or error
	)

	catalogLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dc_catalog_load_duration_seconds",
			Help:    "Duration of catalog loading and parsing in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)
