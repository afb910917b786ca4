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

// Package expression holds the typed plan-node representation of compiled
// scalar expressions: constants, column references, placeholders,
// operator/function calls (casts included), CASE/COALESCE/BETWEEN/IN,
// collections and subquery adapters. Every node implements Expression; the compiler
// (sql/compiler) builds a tree of these from the AST, and the evaluator
// (sql/plan) calls Eval against a concrete Row.
package expression

import "github.com/peaql/peaql/sql"

// Expression is one compiled scalar expression node. Eval resolves it
// against a single row; Type is its statically resolved DType (spec.md §3
// invariant (iii): a reported DType classifier must hold for every Value
// Eval can produce for it, coercion only happening through explicit casts).
type Expression interface {
	Eval(ctx *sql.Context, row sql.Row) (sql.Value, error)
	Type() sql.DType
	Children() []Expression
	String() string
}

// WithChildren rebuilds an Expression with new children through the node's
// own WithChildren method, returning e unchanged for a node without one.
// len(children) must equal len(e.Children()).
func WithChildren(e Expression, children ...Expression) (Expression, error) {
	type withChildren interface {
		WithChildren(...Expression) (Expression, error)
	}
	if wc, ok := e.(withChildren); ok {
		return wc.WithChildren(children...)
	}
	return e, nil
}

// IsConstant reports whether e is a *Literal or a node with at least one
// child whose leaves are all *Literal, making it eligible for constant
// folding (spec.md §4.3 step 4).
func IsConstant(e Expression) bool {
	if _, ok := e.(*Literal); ok {
		return true
	}
	if _, ok := e.(*Literal); !ok && len(e.Children()) == 0 {
		return false
	}
	for _, c := range e.Children() {
		if !IsConstant(c) {
			return false
		}
	}
	return len(e.Children()) > 0
}

// Aggregating describes an expression node that carries (or wraps) an
// aggregate call. No node in this package implements it; sql/compiler
// finds aggregates and rejects nested ones by inspecting the AST.
type Aggregating interface {
	Expression
	IsAggregate() bool
}
