/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package serializer

// StdoutURI is the special output path selecting standard output.
const StdoutURI = "-"
