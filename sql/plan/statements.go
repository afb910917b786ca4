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

package plan

import "github.com/peaql/peaql/sql"

// Statements executes its Children in order and returns the last one's
// result, spec.md §4.4 "A Statements root executes its children
// sequentially and returns the last result" (the "DDL + INSERT + SELECT
// chained in one statement block" scenario of spec.md §7).
type Statements struct {
	Stmts []Node
}

func NewStatements(stmts []Node) *Statements { return &Statements{Stmts: stmts} }

func (s *Statements) Schema() sql.Schema {
	if len(s.Stmts) == 0 {
		return nil
	}
	return s.Stmts[len(s.Stmts)-1].Schema()
}

func (s *Statements) Children() []Node { return s.Stmts }
func (s *Statements) String() string   { return "Statements" }

func (s *Statements) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	var last sql.RowIter
	for _, stmt := range s.Stmts {
		if err := ctx.CheckCancelled(); err != nil {
			return nil, err
		}
		iter, err := stmt.RowIter(ctx)
		if err != nil {
			return nil, err
		}
		collected, err := sql.CollectRows(ctx, iter)
		if err != nil {
			return nil, err
		}
		last = sql.RowsToRowIter(collected...)
	}
	if last == nil {
		return sql.RowsToRowIter(), nil
	}
	return last, nil
}
