/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package catalog loads the static role, component and settings definitions.
//
// A catalog is made of three YAML documents, roles.yaml, components.yaml and
// settings.yaml. Each is validated against an embedded JSON Schema before it is
// decoded. A default catalog is embedded in the binary and parsed once:
//
//	cat, err := catalog.Default()
//
// LoadDir reads the documents from a directory; documents missing there fall
// back to the embedded ones, so a deployment can override only its roles.
//
// References to unknown roles or components do not fail loading. They are
// reported as Diagnostics, with the closest known id as a suggestion, and
// evaluate as null.
package catalog
