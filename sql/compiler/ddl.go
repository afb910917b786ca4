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

package compiler

import (
	"fmt"

	"github.com/peaql/peaql/sql"
	"github.com/peaql/peaql/sql/expression"
	"github.com/peaql/peaql/sql/parser/ast"
	"github.com/peaql/peaql/sql/plan"
)

// compileCreateTable lowers a CREATE TABLE, either an explicit column
// list or a "CREATE TABLE ... AS query" whose columns are derived from
// the compiled query's own schema, spec.md §6.1's DDL form.
func (c *Compiler) compileCreateTable(catalog *sql.Catalog, stmt *ast.CreateTableStatement) (plan.Node, error) {
	if stmt.As != nil {
		src, err := c.compileSelect(catalog, stmt.As, nil)
		if err != nil {
			return nil, err
		}
		columns := make([]*sql.Column, len(src.Schema()))
		for i, col := range src.Schema() {
			columns[i] = &sql.Column{Name: col.Name, Type: col.Type, Index: i, Nullable: true}
		}
		table := sql.NewTable(stmt.Name, columns)
		return plan.NewCreateTable(catalog, table, src, stmt.IfNotExists), nil
	}

	columns := make([]*sql.Column, len(stmt.Columns))
	for i, cd := range stmt.Columns {
		typ, _, ok := typeByName(cd.Type)
		if !ok {
			return nil, sql.ErrCompilation.New(fmt.Sprintf("unknown column type %q", cd.Type))
		}
		columns[i] = &sql.Column{Name: cd.Name, Type: typ, Index: i, Nullable: !cd.NotNull}
	}

	table := sql.NewTable(stmt.Name, columns)

	schema := make(sql.Schema, len(columns))
	for i, col := range columns {
		schema[i] = &sql.Column{Name: col.Name, Source: stmt.Name, Type: col.Type, Index: i, Nullable: col.Nullable}
	}
	rowEnv := newExprEnv(c, catalog, schema, nil)

	var constraints []sql.Constraint
	for i, cd := range stmt.Columns {
		if cd.NotNull {
			ref := expression.NewGetField(stmt.Name, cd.Name, i, columns[i].Type)
			notNull := expression.NewIsNull(ref, true)
			constraints = append(constraints, sql.Constraint{
				Name:   cd.Name + "_not_null",
				Column: cd.Name,
				Expr:   notNull,
				Kind:   "not null",
			})
		}
		for j, check := range cd.Checks {
			expr, err := rowEnv.compile(check)
			if err != nil {
				return nil, err
			}
			name := fmt.Sprintf("%s_check%d", cd.Name, j)
			constraints = append(constraints, sql.Constraint{Name: name, Expr: expr, Kind: "check"})
		}
	}
	for _, tc := range stmt.Constraints {
		switch tc.Kind {
		case "CHECK":
			expr, err := rowEnv.compile(tc.Check)
			if err != nil {
				return nil, err
			}
			name := tc.Name
			if name == "" {
				name = fmt.Sprintf("%s_check", stmt.Name)
			}
			constraints = append(constraints, sql.Constraint{Name: name, Expr: expr, Kind: "check"})
		default:
			// UNIQUE/PRIMARY KEY/FOREIGN KEY are accepted syntactically but
			// enforce nothing; peaql has no index or foreign table to check
			// them against (spec.md §6.1 Non-goals).
		}
	}
	table.Constraints = constraints

	return plan.NewCreateTable(catalog, table, nil, stmt.IfNotExists), nil
}

// compileInsert lowers an INSERT, whose row source is either a literal
// VALUES list (compiled per-value, cast to the target column's type) or
// a nested SELECT, spec.md §4.3 "INSERT".
func (c *Compiler) compileInsert(catalog *sql.Catalog, stmt *ast.InsertStatement) (plan.Node, error) {
	table, ok := catalog.Table(stmt.Table)
	if !ok {
		return nil, sql.ErrUnknownTable.New(stmt.Table)
	}

	targetCols := stmt.Columns
	if len(targetCols) == 0 {
		targetCols = make([]string, len(table.Columns))
		for i, col := range table.Columns {
			targetCols[i] = col.Name
		}
	}
	colIdx := make([]int, len(targetCols))
	for i, name := range targetCols {
		col, idx := table.Column(name)
		if col == nil {
			return nil, sql.ErrUnknownColumn.New(name)
		}
		colIdx[i] = idx
	}

	var source plan.Node
	if stmt.Query != nil {
		src, err := c.compileSelect(catalog, stmt.Query, nil)
		if err != nil {
			return nil, err
		}
		if len(src.Schema()) != len(targetCols) {
			return nil, sql.ErrCompilation.New(fmt.Sprintf("INSERT has %d target columns but query returns %d", len(targetCols), len(src.Schema())))
		}
		exprs := make([]expression.Expression, len(targetCols))
		castSchema := make(sql.Schema, len(targetCols))
		for i, srcCol := range src.Schema() {
			col := table.Columns[colIdx[i]]
			_, castName, _ := typeByNameForCast(col.Type)
			exprs[i] = castValue(catalog, castName, expression.NewGetField(srcCol.Source, srcCol.Name, i, srcCol.Type), col.Type)
			castSchema[i] = &sql.Column{Name: targetCols[i], Type: exprs[i].Type(), Index: i}
		}
		source = plan.NewProject(src, exprs, castSchema)
	} else {
		env := newExprEnv(c, catalog, nil, nil)
		rowExprs := make([][]expression.Expression, len(stmt.Values))
		for r, vals := range stmt.Values {
			if len(vals) != len(targetCols) {
				return nil, sql.ErrCompilation.New(fmt.Sprintf("INSERT has %d target columns but row %d supplies %d values", len(targetCols), r, len(vals)))
			}
			row := make([]expression.Expression, len(vals))
			for i, v := range vals {
				compiled, err := env.compile(v)
				if err != nil {
					return nil, err
				}
				col := table.Columns[colIdx[i]]
				_, castName, _ := typeByNameForCast(col.Type)
				row[i] = castValue(catalog, castName, compiled, col.Type)
			}
			rowExprs[r] = row
		}
		rowSchema := make(sql.Schema, len(targetCols))
		for i := range targetCols {
			rowSchema[i] = &sql.Column{Name: targetCols[i], Type: table.Columns[colIdx[i]].Type, Index: i}
		}
		source = newExprRowsNode(rowSchema, rowExprs)
	}

	fullExprs := make([]expression.Expression, len(table.Columns))
	for i := range table.Columns {
		fullExprs[i] = expression.NewLiteral(sql.NullValue)
	}
	for i, idx := range colIdx {
		fullExprs[idx] = expression.NewGetField("", targetCols[i], i, source.Schema()[i].Type)
	}
	fullSchema := make(sql.Schema, len(table.Columns))
	for i, col := range table.Columns {
		fullSchema[i] = &sql.Column{Name: col.Name, Type: col.Type, Index: i}
	}
	rowSrc := plan.NewProject(source, fullExprs, fullSchema)

	return plan.NewInsert(table, rowSrc, nil, nil), nil
}

// exprRowsNode evaluates a fixed matrix of uncompiled-to-values
// expressions against an empty input row each time it is scanned,
// letting INSERT ... VALUES rows reference placeholders, casts and
// function calls rather than only literals; plan.Values only holds
// already-evaluated sql.Row vectors.
type exprRowsNode struct {
	schema sql.Schema
	rows   [][]expression.Expression
}

func newExprRowsNode(schema sql.Schema, rows [][]expression.Expression) *exprRowsNode {
	return &exprRowsNode{schema: schema, rows: rows}
}

func (n *exprRowsNode) Schema() sql.Schema { return n.schema }
func (n *exprRowsNode) Children() []plan.Node { return nil }
func (n *exprRowsNode) String() string        { return "Values" }

func (n *exprRowsNode) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	out := make([]sql.Row, len(n.rows))
	for i, row := range n.rows {
		if err := ctx.CheckCancelled(); err != nil {
			return nil, err
		}
		values := make(sql.Row, len(row))
		for j, e := range row {
			v, err := e.Eval(ctx, nil)
			if err != nil {
				return nil, err
			}
			values[j] = v
		}
		out[i] = values
	}
	return sql.RowsToRowIter(out...), nil
}

// CastNameForType is the exported form of typeByNameForCast, used by the
// root peaql package to render a column's DType back to its canonical
// cast-registry name when serializing a sql.Table to its JSON model
// (spec.md §6.3).
func CastNameForType(typ sql.DType) (sql.DType, string, bool) {
	return typeByNameForCast(typ)
}

// typeByNameForCast recovers the cast function name typeByName registered
// for typ, since INSERT works from the table's already-resolved column
// DType rather than the original type keyword text.
func typeByNameForCast(typ sql.DType) (sql.DType, string, bool) {
	switch typ {
	case sql.Integer:
		return sql.Integer, "integer", true
	case sql.Real:
		return sql.Real, "real", true
	case sql.Decimal:
		return sql.Decimal, "decimal", true
	case sql.Boolean:
		return sql.Boolean, "boolean", true
	case sql.String:
		return sql.String, "string", true
	case sql.DateTime:
		return sql.DateTime, "datetime", true
	case sql.Duration:
		return sql.Duration, "interval", true
	default:
		return typ, "", false
	}
}

// castValue wraps expr in its target column's cast function when the
// compiled value's type does not already match (spec.md §4.3). When no
// overload of the cast function accepts the value's type, expr is
// returned uncast. Neither case raises a compile error, and a value the
// cast cannot convert (an unparseable string, say) evaluates to NULL.
func castValue(catalog *sql.Catalog, castName string, expr expression.Expression, target sql.DType) expression.Expression {
	if castName == "" || expr.Type() == target {
		return expr
	}
	sig, err := catalog.Functions().Resolve(castName, []sql.DType{expr.Type()})
	if err != nil {
		return expr
	}
	return expression.NewCall(catalog.Functions(), castName, sig.Result, expr)
}

// compileUpdate lowers an UPDATE into a scan of Table (filtered by WHERE,
// when present) paired with compiled SET assignments, spec.md §4.3
// "UPDATE".
func (c *Compiler) compileUpdate(catalog *sql.Catalog, stmt *ast.UpdateStatement) (plan.Node, error) {
	table, ok := catalog.Table(stmt.Table)
	if !ok {
		return nil, sql.ErrUnknownTable.New(stmt.Table)
	}

	var child plan.Node = plan.NewScan(table, "")
	baseSchema := child.Schema()
	if stmt.Where != nil {
		whereEnv := newExprEnv(c, catalog, baseSchema, nil)
		cond, err := whereEnv.compile(stmt.Where)
		if err != nil {
			return nil, err
		}
		child = plan.NewFilter(child, cond)
	}

	env := newExprEnv(c, catalog, baseSchema, nil)
	assignments := make([]plan.Assignment, len(stmt.Sets))
	for i, s := range stmt.Sets {
		col, idx := table.Column(s.Column)
		if col == nil {
			return nil, sql.ErrUnknownColumn.New(s.Column)
		}
		expr, err := env.compile(s.Value)
		if err != nil {
			return nil, err
		}
		_, castName, _ := typeByNameForCast(col.Type)
		assignments[i] = plan.Assignment{ColumnIndex: idx, Expr: castValue(catalog, castName, expr, col.Type)}
	}

	return plan.NewUpdate(table, child, assignments, nil, nil), nil
}
