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
	"fmt"
	"strings"

	"github.com/peaql/peaql/sql"
	"github.com/peaql/peaql/sql/expression"
)

// affectedSchema is the single-column result ("rows_affected") an
// Insert/Update without RETURNING reports, spec.md §6.1 "returning either
// an affected-row count or a RETURNING result set".
var affectedSchema = sql.Schema{{Name: "rows_affected", Type: sql.Integer}}

// Insert appends Source's rows, already compiled to the table's column
// order with column casts applied by the compiler (castValue in
// sql/compiler/ddl.go, which leaves a value uncast when no cast overload
// accepts its type), to Table after checking every constraint of every
// row. Returning, when non-nil, is evaluated per inserted row in place of
// the rows_affected count (spec.md §4.3 "RETURNING is treated as a SELECT
// target list evaluated over the inserted row").
type Insert struct {
	Table     *sql.Table
	Source    Node
	Returning []expression.Expression
	retSchema sql.Schema
}

func NewInsert(table *sql.Table, source Node, returning []expression.Expression, retSchema sql.Schema) *Insert {
	return &Insert{Table: table, Source: source, Returning: returning, retSchema: retSchema}
}

func (i *Insert) Schema() sql.Schema {
	if i.Returning != nil {
		return i.retSchema
	}
	return affectedSchema
}

func (i *Insert) Children() []Node { return []Node{i.Source} }
func (i *Insert) String() string   { return "Insert" }

func (i *Insert) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	in, err := rows(ctx, i.Source)
	if err != nil {
		return nil, err
	}

	for _, r := range in {
		if err := checkConstraints(ctx, i.Table, r); err != nil {
			return nil, err
		}
	}

	var out []sql.Row
	var count int64
	for _, r := range in {
		if err := ctx.CheckCancelled(); err != nil {
			return nil, err
		}
		i.Table.Append(r)
		count++
		if i.Returning != nil {
			rr, err := evalTargets(ctx, i.Returning, r)
			if err != nil {
				return nil, err
			}
			out = append(out, rr)
		}
	}

	if i.Returning != nil {
		return sql.RowsToRowIter(out...), nil
	}
	return sql.RowsToRowIter(sql.Row{sql.NewInteger(count)}), nil
}

// checkConstraints evaluates every constraint on t against row, in
// declared order, raising ErrDataConstraint on the first failure (spec.md
// §3 "Constraint violation aborts the offending INSERT").
func checkConstraints(ctx *sql.Context, t *sql.Table, row sql.Row) error {
	for _, c := range t.Constraints {
		v, err := c.Expr.Eval(ctx, row)
		if err != nil {
			return err
		}
		if !v.IsNull() && v.AsBoolean() {
			continue
		}
		return sql.ErrDataConstraint.New(renderRow(row), t.Name, c.Kind, c.Name)
	}
	return nil
}

func renderRow(row sql.Row) string {
	parts := make([]string, len(row))
	for i, v := range row {
		parts[i] = renderValue(v)
	}
	return strings.Join(parts, ", ")
}

// renderValue is the constraint-error row rendering of spec.md §7's data
// error example ("Failing row contains (a, 55)..."); it need not match
// the builtin to_char/format family, only produce a readable literal.
func renderValue(v sql.Value) string {
	if v.IsNull() {
		return "NULL"
	}
	switch v.Type {
	case sql.String:
		return v.AsString()
	case sql.Integer:
		return fmt.Sprint(v.AsInteger())
	case sql.Real:
		return fmt.Sprint(v.AsReal())
	case sql.Decimal:
		return v.AsDecimal().String()
	case sql.Boolean:
		return fmt.Sprint(v.AsBoolean())
	default:
		return fmt.Sprint(v.Raw())
	}
}

func evalTargets(ctx *sql.Context, targets []expression.Expression, row sql.Row) (sql.Row, error) {
	out := make(sql.Row, len(targets))
	for i, e := range targets {
		v, err := e.Eval(ctx, row)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
