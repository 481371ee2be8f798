/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package api wires the validator into the HTTP server.
//
// Routes:
//
//	POST /v1/validate                    cluster state -> ValidationReport
//	POST /v1/network                     network configuration -> NetworkReport
//	POST /v1/limits?role=NAME&reached=B  cluster state -> LimitsReport
//	GET  /v1/catalog                     catalog summary
//
// Request bodies may be YAML or JSON. Responses are JSON unless the client
// accepts application/yaml. A failing verdict is still a 200: only malformed
// input and internal failures produce error responses.
package api
