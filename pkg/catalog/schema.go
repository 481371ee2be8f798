/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package catalog

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	cerrors "github.com/NVIDIA/deploy-constraints/pkg/errors"
)

var (
	//go:embed schema/*.json
	schemaFS embed.FS

	schemaOnce sync.Once
	schemas    map[Kind]*jsonschema.Schema
	schemaErr  error
)

func schemaURL(kind Kind) string {
	return fmt.Sprintf("catalog://schema/%s.json", kind)
}

func compileSchemas() (map[Kind]*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		for _, kind := range Kinds {
			data, err := schemaFS.ReadFile(fmt.Sprintf("schema/%s.json", kind))
			if err != nil {
				schemaErr = err
				return
			}
			if err := compiler.AddResource(schemaURL(kind), bytes.NewReader(data)); err != nil {
				schemaErr = fmt.Errorf("add %s schema: %w", kind, err)
				return
			}
		}
		out := make(map[Kind]*jsonschema.Schema, len(Kinds))
		for _, kind := range Kinds {
			s, err := compiler.Compile(schemaURL(kind))
			if err != nil {
				schemaErr = fmt.Errorf("compile %s schema: %w", kind, err)
				return
			}
			out[kind] = s
		}
		schemas = out
	})
	return schemas, schemaErr
}

// ValidateDocument checks a YAML catalog document against the schema of kind.
func ValidateDocument(kind Kind, data []byte) error {
	all, err := compileSchemas()
	if err != nil {
		return cerrors.Wrap(cerrors.ErrCodeInternal, "catalog schemas", err)
	}
	s, ok := all[kind]
	if !ok {
		return cerrors.New(cerrors.ErrCodeInvalidRequest, fmt.Sprintf("unknown catalog document kind %q", kind))
	}

	doc, err := toJSONValue(data)
	if err != nil {
		return decodeError(kind, err)
	}
	if err := s.Validate(doc); err != nil {
		return cerrors.WrapWithContext(cerrors.ErrCodeInvalidRequest,
			fmt.Sprintf("%s document does not match schema", kind), err,
			map[string]any{"kind": string(kind)})
	}
	return nil
}

// toJSONValue converts YAML into the value shapes produced by encoding/json,
// which is what the schema validator expects.
func toJSONValue(data []byte) (any, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
