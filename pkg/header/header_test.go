/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package header

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	h := New(WithKind(KindCatalog), WithAPIVersion(APIVersionV1Alpha1), WithMetadata("source", "embedded"))
	assert.Equal(t, KindCatalog, h.Kind)
	assert.Equal(t, "constraints.nvidia.com/v1alpha1", h.APIVersion)
	assert.Equal(t, "embedded", h.Metadata["source"])
}

func TestInit(t *testing.T) {
	var h Header
	h.Init(KindValidationReport, APIVersionV1Alpha1, "v1.2.3")

	assert.Equal(t, KindValidationReport, h.Kind)
	assert.Equal(t, "v1.2.3", h.Metadata[MetadataVersion])
	_, err := time.Parse(time.RFC3339, h.Metadata[MetadataTimestamp])
	require.NoError(t, err)

	h2 := New(WithMetadata("keep", "me"))
	h2.Init(KindNetworkReport, APIVersionV1Alpha1, "")
	assert.Equal(t, "me", h2.Metadata["keep"])
	_, ok := h2.Metadata[MetadataVersion]
	assert.False(t, ok)
}
