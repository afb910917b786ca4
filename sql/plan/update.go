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

// Assignment is one compiled `col = expr` of an UPDATE's SET list.
type Assignment struct {
	ColumnIndex int
	Expr        expression.Expression
}

// Update scans Table through Child (a Filter over a Scan of Table, or a
// bare Scan when there is no WHERE), applies Assignments to each matching
// row, checks constraints against the new row, and writes it back in
// place via Table.UpdateAt (spec.md §4.3 "UPDATE": "each col = expr
// assignment validates that col exists; WHERE is compiled as a boolean
// filter", and §9 "Update mutates matching rows in place").
type Update struct {
	Table       *sql.Table
	Child       Node
	Assignments []Assignment
	Returning   []expression.Expression
	retSchema   sql.Schema
}

func NewUpdate(table *sql.Table, child Node, assignments []Assignment, returning []expression.Expression, retSchema sql.Schema) *Update {
	return &Update{Table: table, Child: child, Assignments: assignments, Returning: returning, retSchema: retSchema}
}

func (u *Update) Schema() sql.Schema {
	if u.Returning != nil {
		return u.retSchema
	}
	return affectedSchema
}

func (u *Update) Children() []Node { return []Node{u.Child} }
func (u *Update) String() string   { return "Update" }

// Update's Child must scan Table's own backing rows by position: RowIter
// re-derives each matching row's position in Table.Source by matching
// against the freshly scanned vector, since Child (Filter-over-Scan) only
// yields row values, not positions.
func (u *Update) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	base, err := u.Table.Source.Rows(ctx)
	if err != nil {
		return nil, err
	}
	matched, err := rows(ctx, u.Child)
	if err != nil {
		return nil, err
	}
	matchSet := rowMultiset(matched)

	var out []sql.Row
	var count int64
	for i, r := range base {
		if err := ctx.CheckCancelled(); err != nil {
			return nil, err
		}
		h := argHash([]sql.Value(r))
		rc := findRowCount(matchSet[h], []sql.Value(r))
		if rc == nil || rc.count <= 0 {
			continue
		}
		rc.count--

		updated := make(sql.Row, len(r))
		copy(updated, r)
		for _, a := range u.Assignments {
			v, err := a.Expr.Eval(ctx, r)
			if err != nil {
				return nil, err
			}
			updated[a.ColumnIndex] = v
		}
		if err := checkConstraints(ctx, u.Table, updated); err != nil {
			return nil, err
		}
		u.Table.UpdateAt(i, updated)
		count++
		if u.Returning != nil {
			rr, err := evalTargets(ctx, u.Returning, updated)
			if err != nil {
				return nil, err
			}
			out = append(out, rr)
		}
	}

	if u.Returning != nil {
		return sql.RowsToRowIter(out...), nil
	}
	return sql.RowsToRowIter(sql.Row{sql.NewInteger(count)}), nil
}
