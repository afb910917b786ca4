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

import (
	"github.com/peaql/peaql/sql"
	"github.com/peaql/peaql/sql/expression"
)

// Filter keeps rows for which Cond evaluates to TRUE, treating NULL and
// FALSE identically (spec.md §4.3 step 2 "WHERE").
type Filter struct {
	Child Node
	Cond  expression.Expression
}

func NewFilter(child Node, cond expression.Expression) *Filter {
	return &Filter{Child: child, Cond: cond}
}

func (f *Filter) Schema() sql.Schema { return f.Child.Schema() }

func (f *Filter) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	in, err := rows(ctx, f.Child)
	if err != nil {
		return nil, err
	}
	out := make([]sql.Row, 0, len(in))
	for _, r := range in {
		if err := ctx.CheckCancelled(); err != nil {
			return nil, err
		}
		v, err := f.Cond.Eval(ctx, r)
		if err != nil {
			return nil, err
		}
		if !v.IsNull() && v.AsBoolean() {
			out = append(out, r)
		}
	}
	return sql.RowsToRowIter(out...), nil
}

func (f *Filter) Children() []Node { return []Node{f.Child} }
func (f *Filter) String() string   { return "Filter(" + f.Cond.String() + ")" }
