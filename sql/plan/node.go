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

// Package plan holds the compiled, executable node tree: the output of
// sql/compiler and the input to Engine.Execute. Every node materializes
// its child's rows before transforming them (spec.md §1's in-memory
// scope), following the teacher's RowIter pull contract at each node
// boundary rather than a fully-streaming iterator chain.
package plan

import "github.com/peaql/peaql/sql"

// Node is one step of a compiled query plan.
type Node interface {
	Schema() sql.Schema
	RowIter(ctx *sql.Context) (sql.RowIter, error)
	Children() []Node
	String() string
}

// rows is a small helper every node uses to pull and materialize a
// child's full output, since every node here operates batch-at-a-time.
func rows(ctx *sql.Context, n Node) ([]sql.Row, error) {
	iter, err := n.RowIter(ctx)
	if err != nil {
		return nil, err
	}
	return sql.CollectRows(ctx, iter)
}

// SubqueryAdapter exposes a Node to sql/expression's scalar/list subquery
// wrappers, pushing the outer row onto the Context's scope stack before
// running the inner plan (spec.md §9 "Subquery correlation": "implement
// as a stack of scope frames").
type SubqueryAdapter struct {
	Node Node
}

func (s *SubqueryAdapter) Schema() sql.Schema { return s.Node.Schema() }

func (s *SubqueryAdapter) RowIter(ctx *sql.Context, outerRow sql.Row, outerSchema sql.Schema, outerTable string) (sql.RowIter, error) {
	child := ctx.WithScope(outerTable, outerSchema, outerRow)
	return s.Node.RowIter(child)
}
