/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package expression

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
)

// Evaluator evaluates a condition string against named model bindings.
type Evaluator interface {
	Evaluate(source string, bindings Bindings) (Value, error)
}

// attributePath matches a bare dotted path such as "settings.storage.replicas.value".
var attributePath = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)+$`)

// CELEvaluator evaluates expressions written in the Common Expression Language.
// Every binding is declared as a dynamically typed variable. A source that is a bare
// attribute path rooted at a binding evaluates to a Reference instead of a scalar.
//
// Compiled programs are cached per (binding names, source); the evaluator is safe
// for concurrent use.
type CELEvaluator struct {
	mu       sync.Mutex
	programs map[string]cel.Program
}

// NewCELEvaluator returns an evaluator with an empty program cache.
func NewCELEvaluator() *CELEvaluator {
	return &CELEvaluator{programs: make(map[string]cel.Program)}
}

// Evaluate implements Evaluator.
func (e *CELEvaluator) Evaluate(source string, bindings Bindings) (Value, error) {
	src := strings.TrimSpace(source)
	if src == "" {
		return Value{}, fmt.Errorf("empty expression")
	}

	if attributePath.MatchString(src) {
		root, attr, _ := strings.Cut(src, ".")
		if m, ok := bindings[root]; ok {
			return Ref(root, m, attr), nil
		}
	}

	prg, err := e.program(src, bindings)
	if err != nil {
		return Value{}, err
	}

	out, _, err := prg.Eval(bindings.activation())
	if err != nil {
		return Value{}, fmt.Errorf("evaluating %q: %w", src, err)
	}
	if out.Type() == types.NullType {
		return Scalar(nil), nil
	}
	return Scalar(out.Value()), nil
}

func (e *CELEvaluator) program(src string, bindings Bindings) (cel.Program, error) {
	names := make([]string, 0, len(bindings))
	for name := range bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	key := strings.Join(names, ",") + "|" + src

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.programs == nil {
		e.programs = make(map[string]cel.Program)
	}
	if prg, ok := e.programs[key]; ok {
		return prg, nil
	}

	opts := make([]cel.EnvOption, 0, len(names))
	for _, name := range names {
		opts = append(opts, cel.Variable(name, cel.DynType))
	}
	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating expression environment: %w", err)
	}

	ast, iss := env.Compile(src)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("compiling %q: %w", src, iss.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("building program for %q: %w", src, err)
	}
	e.programs[key] = prg
	return prg, nil
}

// EvaluateBool evaluates source and reports whether the (resolved) result is truthy.
// Evaluation failures are logged and count as false, so a partially populated binding
// set never aborts a validation pass.
func EvaluateBool(ev Evaluator, source string, bindings Bindings) bool {
	v, err := ev.Evaluate(source, bindings)
	if err != nil {
		slog.Warn("expression evaluation failed", "expression", source, "error", err)
		return false
	}
	resolved, err := Resolve(v)
	if err != nil {
		slog.Warn("expression reference unresolved", "expression", source, "error", err)
		return false
	}
	return Truthy(resolved)
}
