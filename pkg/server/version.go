/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package server

import (
	"net/http"
	"regexp"
)

// DefaultAPIVersion is served when the client does not ask for one.
const DefaultAPIVersion = "v1"

// APIVersionHeader carries the negotiated version in responses.
const APIVersionHeader = "X-API-Version"

var (
	supportedAPIVersions = map[string]bool{"v1": true}

	vendorMediaType = regexp.MustCompile(`application/vnd\.nvidia\.dc\.(v[0-9]+)\+(json|yaml)`)
)

// negotiateAPIVersion reads the version from a vendor Accept header such as
// application/vnd.nvidia.dc.v1+json.
func negotiateAPIVersion(r *http.Request) string {
	m := vendorMediaType.FindStringSubmatch(r.Header.Get("Accept"))
	if m == nil || !isValidAPIVersion(m[1]) {
		return DefaultAPIVersion
	}
	return m[1]
}

func isValidAPIVersion(v string) bool {
	return supportedAPIVersions[v]
}
