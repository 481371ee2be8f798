/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStructuredError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *StructuredError
		want string
	}{
		{"no cause", New(ErrCodeNotFound, "role not found"), "[NOT_FOUND] role not found"},
		{"with cause", Wrap(ErrCodeInternal, "load failed", errors.New("eof")), "[INTERNAL_ERROR] load failed: eof"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestStructuredError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("outer: %w", WrapWithContext(ErrCodeUnavailable, "write", cause, map[string]any{"path": "/tmp"}))

	assert.ErrorIs(t, err, cause)

	var se *StructuredError
	if assert.ErrorAs(t, err, &se) {
		assert.Equal(t, ErrCodeUnavailable, se.Code)
		assert.Equal(t, "/tmp", se.Context["path"])
	}
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrCodeInvalidRequest, CodeOf(fmt.Errorf("x: %w", New(ErrCodeInvalidRequest, "bad"))))
	assert.Equal(t, ErrCodeInternal, CodeOf(errors.New("plain")))
}
