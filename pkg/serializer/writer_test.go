/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package serializer

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var verdicts = []verdict{{Role: "controller", Count: 1}, {Role: "compute", Count: 2}}

func TestWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(FormatJSON, &buf).Serialize(context.Background(), verdicts))

	var got []verdict
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, verdicts, got)
}

func TestWriter_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(FormatYAML, &buf).Serialize(context.Background(), verdicts))

	var got []verdict
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, verdicts, got)
}

func TestWriter_Table(t *testing.T) {
	var buf bytes.Buffer
	data := map[string]any{
		"summary": map[string]any{"status": "fail", "failed": 1},
		"roles":   verdicts,
		"empty":   []string{},
		"missing": nil,
	}
	require.NoError(t, NewWriter(FormatTable, &buf).Serialize(context.Background(), data))

	out := buf.String()
	assert.Contains(t, out, "FIELD")
	assert.Contains(t, out, "VALUE")
	assert.Contains(t, out, "roles[0].role")
	assert.Contains(t, out, "roles[1].count")
	assert.Contains(t, out, "summary.status")
	assert.Contains(t, out, "[]")
	assert.Contains(t, out, "<nil>")
}

func TestWriter_UnknownFormatFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter("xml", &buf)
	assert.Equal(t, FormatJSON, w.Format())

	require.NoError(t, w.Serialize(context.Background(), verdicts[0]))
	var got verdict
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
}

func TestWriter_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	assert.ErrorIs(t, NewWriter(FormatJSON, &buf).Serialize(ctx, verdicts), context.Canceled)
	assert.Zero(t, buf.Len())
}

func TestWriter_Close(t *testing.T) {
	w := NewStdoutWriter(FormatJSON)
	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}

func TestNewFileWriterOrStdout(t *testing.T) {
	for _, path := range []string{"", StdoutURI, "  "} {
		s, err := NewFileWriterOrStdout(FormatJSON, path)
		require.NoError(t, err)
		assert.IsType(t, &Writer{}, s)
	}

	path := filepath.Join(t.TempDir(), "report.yaml")
	s, err := NewFileWriterOrStdout(FormatYAML, path)
	require.NoError(t, err)
	require.NoError(t, s.Serialize(context.Background(), verdicts))
	closer, ok := s.(Closer)
	require.True(t, ok)
	require.NoError(t, closer.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "role: controller")

	_, err = NewFileWriterOrStdout(FormatJSON, "/nonexistent/dir/report.json")
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	assert.False(t, FormatJSON.IsUnknown())
	assert.False(t, FormatTable.IsUnknown())
	assert.True(t, Format("").IsUnknown())
	assert.Equal(t, FormatYAML, ParseFormat(" YAML "))
	assert.Equal(t, []string{"json", "yaml", "table"}, SupportedFormats())
}
