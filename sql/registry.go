// Copyright 2020-2021 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sql

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ScalarFn is the eager implementation of one overload: given already
// null-checked (unless NullSafe), already-coerced argument values, produce
// a result. Operators ("+", "=", "~", ...) and named functions share this
// shape and this registry (spec.md §4.1, component C).
type ScalarFn func(ctx *Context, args []Value) (Value, error)

// Signature is one registered overload of an operator or function name.
type Signature struct {
	Name string
	// Args declares each positional slot's accepted DType. If Variadic,
	// the last entry is repeated for any arguments beyond len(Args)-1
	// (spec.md §4.1 "Vararg expands to the trailing type").
	Args     []DType
	Variadic bool
	Result   DType
	// NullSafe signatures receive null arguments as-is rather than
	// short-circuiting the whole call to Null. Among the built-in
	// overloads only isnull is registered this way.
	NullSafe bool
	Fn       ScalarFn
}

func (s *Signature) String() string {
	parts := make([]string, len(s.Args))
	for i, a := range s.Args {
		parts[i] = a.String()
	}
	if s.Variadic && len(parts) > 0 {
		parts[len(parts)-1] += "..."
	}
	return fmt.Sprintf("%s(%s) -> %s", s.Name, strings.Join(parts, ", "), s.Result)
}

func (s *Signature) matches(argTypes []DType) bool {
	if s.Variadic {
		if len(argTypes) < len(s.Args)-1 {
			return false
		}
	} else if len(argTypes) != len(s.Args) {
		return false
	}
	for i, at := range argTypes {
		want := s.slotType(i)
		if at == Null {
			continue // null short-circuits at the call site for non-NullSafe signatures
		}
		if !at.Extends(want) {
			return false
		}
	}
	return true
}

func (s *Signature) slotType(i int) DType {
	if i < len(s.Args) {
		return s.Args[i]
	}
	return s.Args[len(s.Args)-1]
}

func (s *Signature) specificity(argTypes []DType) int {
	total := 0
	for i := range argTypes {
		total += s.slotType(i).Specificity()
	}
	if s.Variadic {
		total += 1 // a fixed-arity overload beats a variadic one on ties
	}
	return total
}

// FunctionRegistry is the process-wide table of registered operator and
// function overloads plus aggregator factories, spec.md §4.1/component C.
type FunctionRegistry struct {
	mu         sync.RWMutex
	overloads  map[string][]*Signature
	aggregates map[string]AggregatorFactory
}

// AggregatorFactory builds a fresh Aggregator instance for one call site;
// invoked once per compiled aggregate expression (spec.md §4.4, "Aggregator
// handle").
type AggregatorFactory func(argType DType) Aggregator

// Aggregator is the runtime contract an aggregate/window function
// implements, addressed through a stable per-group slot handle rather than
// mutable node fields (spec.md §9 "Aggregator state slots").
type Aggregator interface {
	// NewBuffer allocates a fresh, zeroed accumulator for one group.
	NewBuffer() AggregatorBuffer
}

// AggregatorBuffer is one group's (or one window frame's) running state.
type AggregatorBuffer interface {
	Update(ctx *Context, args []Value) error
	Eval(ctx *Context) (Value, error)
	Dispose()
}

// WindowState is the per-invocation parameter the window driver installs on
// a WindowAware buffer immediately before Eval, rather than as a persistent
// field (spec.md §9 "Window state injection": "treat this as a
// thread-local-like per-invocation parameter").
type WindowState struct {
	// Partition is the full ordered partition the current frame was cut
	// from; Frame is the [Start, End) slice within it the aggregator
	// should consider; Index is the current row's position in Partition.
	Partition []Row
	Frame     WindowInterval
	Index     int
}

// WindowAware is implemented by AggregatorBuffer values that need direct
// access to the partition and frame bounds rather than (or in addition to)
// a stream of Update calls — row_number, rank, lead/lag, nth_value, and the
// like (spec.md §4.6 "Window-only").
type WindowAware interface {
	InstallWindowState(s WindowState)
}

func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{
		overloads:  map[string][]*Signature{},
		aggregates: map[string]AggregatorFactory{},
	}
}

// builtinRegistrars is populated by RegisterBuiltins, called from the
// init() of each package that defines built-in overloads
// (sql/expression/function, sql/expression/function/aggregation), the way
// database/sql drivers register themselves without the sql package
// importing them directly.
var builtinRegistrars []func(*FunctionRegistry)

// RegisterBuiltins adds f to the set of registrars DefaultFunctionRegistry
// replays into every new registry. Called from package init().
func RegisterBuiltins(f func(*FunctionRegistry)) {
	builtinRegistrars = append(builtinRegistrars, f)
}

// DefaultFunctionRegistry builds a fresh registry and replays every
// builtin registrar into it.
func DefaultFunctionRegistry() *FunctionRegistry {
	r := NewFunctionRegistry()
	for _, reg := range builtinRegistrars {
		reg(r)
	}
	return r
}

func (r *FunctionRegistry) Register(sig *Signature) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(sig.Name)
	r.overloads[key] = append(r.overloads[key], sig)
}

func (r *FunctionRegistry) RegisterAggregate(name string, f AggregatorFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aggregates[strings.ToLower(name)] = f
}

func (r *FunctionRegistry) Aggregate(name string) (AggregatorFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.aggregates[strings.ToLower(name)]
	return f, ok
}

func (r *FunctionRegistry) HasAggregate(name string) bool {
	_, ok := r.Aggregate(name)
	return ok
}

// Resolve performs the dispatch algorithm of spec.md §4.1: filter
// signatures whose slots accept argTypes, then pick the lowest-specificity
// (most specific) match. Ties keep registration order.
func (r *FunctionRegistry) Resolve(name string, argTypes []DType) (*Signature, error) {
	r.mu.RLock()
	candidates := append([]*Signature(nil), r.overloads[strings.ToLower(name)]...)
	r.mu.RUnlock()

	var matched []*Signature
	for _, c := range candidates {
		if c.matches(argTypes) {
			matched = append(matched, c)
		}
	}
	if len(matched) == 0 {
		parts := make([]string, len(argTypes))
		for i, t := range argTypes {
			parts[i] = t.String()
		}
		return nil, ErrNotSupported.New(name, strings.Join(parts, ", "))
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].specificity(argTypes) < matched[j].specificity(argTypes)
	})
	return matched[0], nil
}

// Call resolves and invokes name against args, applying the null
// short-circuit rule of spec.md §4.1 before dispatch.
func (r *FunctionRegistry) Call(ctx *Context, name string, args []Value) (Value, error) {
	argTypes := make([]DType, len(args))
	for i, a := range args {
		argTypes[i] = a.Type
	}
	sig, err := r.Resolve(name, argTypes)
	if err != nil {
		return NullValue, err
	}
	if !sig.NullSafe {
		for _, a := range args {
			if a.IsNull() {
				return NullValue, nil
			}
		}
	}
	return sig.Fn(ctx, args)
}
