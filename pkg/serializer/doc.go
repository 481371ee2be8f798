/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package serializer writes reports as JSON, YAML or a flattened FIELD/VALUE
// table, to files, standard output or HTTP responses.
package serializer
