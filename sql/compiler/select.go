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
	"strings"

	"github.com/peaql/peaql/sql"
	"github.com/peaql/peaql/sql/expression"
	"github.com/peaql/peaql/sql/parser/ast"
	"github.com/peaql/peaql/sql/plan"
)

// compileSelect lowers one SELECT (or set-operation chain) into a
// plan.Node, spec.md §4.3 "Evaluation order". outer carries the schemas
// of statements this one is nested inside, innermost last, so correlated
// references resolve via exprEnv.outer.
func (c *Compiler) compileSelect(catalog *sql.Catalog, stmt *ast.SelectStatement, outer []sql.Schema) (plan.Node, error) {
	if stmt.Combine != nil {
		return c.compileCombine(catalog, stmt, outer)
	}

	if len(stmt.With) > 0 {
		catalog = catalog.ShallowCopy()
		for _, cte := range stmt.With {
			node, err := c.compileSelect(catalog, cte.Query, outer)
			if err != nil {
				return nil, err
			}
			t := plan.NewDerivedTable(cte.Name, node.Schema(), node)
			catalog = catalog.WithTables(t)
		}
	}

	var src plan.Node
	var err error
	if stmt.From == nil {
		if t, ok := catalog.DefaultTable(); ok {
			src = plan.NewScan(t, t.Name)
		} else {
			src = plan.NewValues(sql.Schema{}, []sql.Row{{}})
		}
	} else {
		src, err = c.compileFrom(catalog, stmt.From, outer)
		if err != nil {
			return nil, err
		}
	}

	if stmt.Where != nil {
		env := newExprEnv(c, catalog, src.Schema(), outer)
		cond, err := env.compile(stmt.Where)
		if err != nil {
			return nil, err
		}
		src = plan.NewFilter(src, cond)
	}

	grouped := len(stmt.GroupBy) > 0
	funcs := catalog.Functions()
	if !grouped {
		for _, t := range stmt.Targets {
			if exprHasAggregate(funcs, t.Expr) {
				grouped = true
				break
			}
		}
	}
	if !grouped && stmt.Having != nil && exprHasAggregate(funcs, stmt.Having) {
		grouped = true
	}
	if !grouped {
		for _, ot := range stmt.OrderBy {
			if exprHasAggregate(funcs, ot.Expr) {
				grouped = true
				break
			}
		}
	}

	if stmt.Having != nil && !grouped {
		return nil, sql.ErrCompilation.New("HAVING requires GROUP BY or an aggregate in the target list")
	}

	var node plan.Node
	var env *exprEnv
	if grouped {
		node, env, err = c.compileGrouped(catalog, stmt, src, outer)
	} else {
		node, env, err = c.compileUngrouped(catalog, stmt, src, outer)
	}
	if err != nil {
		return nil, err
	}

	return c.finishSelect(catalog, stmt, node, env)
}

// compileCombine lowers a UNION/INTERSECT/EXCEPT chain, following
// CombineClause.Other left to right so "a UNION b UNION c" associates
// the same way the parser read it.
func (c *Compiler) compileCombine(catalog *sql.Catalog, stmt *ast.SelectStatement, outer []sql.Schema) (plan.Node, error) {
	left := *stmt
	cc := left.Combine
	left.Combine = nil

	leftNode, err := c.compileSelect(catalog, &left, outer)
	if err != nil {
		return nil, err
	}
	rightNode, err := c.compileSelect(catalog, cc.Other, outer)
	if err != nil {
		return nil, err
	}

	var kind plan.SetOpKind
	switch strings.ToUpper(cc.Op) {
	case "UNION":
		kind = plan.Union
	case "INTERSECT":
		kind = plan.Intersect
	case "EXCEPT":
		kind = plan.Except
	default:
		return nil, sql.ErrInternal.New("unknown set operator " + cc.Op)
	}
	return plan.NewSetOp(leftNode, rightNode, kind, cc.All), nil
}

// compileFrom lowers a FROM clause's table expression tree into a
// plan.Node, spec.md §4.3 step 1.
func (c *Compiler) compileFrom(catalog *sql.Catalog, t ast.TableExpr, outer []sql.Schema) (plan.Node, error) {
	switch v := t.(type) {
	case *ast.TableName:
		table, ok := catalog.Table(v.Name)
		if !ok {
			return nil, sql.ErrUnknownTable.New(v.Name)
		}
		alias := v.Alias
		if alias == "" {
			alias = v.Name
		}
		return plan.NewScan(table, alias), nil

	case *ast.SubqueryTable:
		node, err := c.compileSelect(catalog, v.Query, outer)
		if err != nil {
			return nil, err
		}
		table := plan.NewDerivedTable(v.Alias, node.Schema(), node)
		return plan.NewScan(table, v.Alias), nil

	case *ast.JoinExpr:
		left, err := c.compileFrom(catalog, v.Left, outer)
		if err != nil {
			return nil, err
		}
		right, err := c.compileFrom(catalog, v.Right, outer)
		if err != nil {
			return nil, err
		}

		var kind plan.JoinKind
		switch strings.ToUpper(v.Kind) {
		case "INNER":
			kind = plan.InnerJoin
		case "LEFT":
			kind = plan.LeftJoin
		case "RIGHT":
			kind = plan.RightJoin
		case "FULL":
			kind = plan.FullJoin
		case "CROSS":
			kind = plan.CrossJoin
		case "ANTI":
			kind = plan.AntiJoin
		default:
			return nil, sql.ErrInternal.New("unknown join kind " + v.Kind)
		}

		var cond expression.Expression
		switch {
		case v.On != nil:
			combined := append(append(sql.Schema{}, left.Schema()...), right.Schema()...)
			env := newExprEnv(c, catalog, combined, outer)
			cond, err = env.compile(v.On)
			if err != nil {
				return nil, err
			}
		case len(v.Using) > 0:
			combined := append(append(sql.Schema{}, left.Schema()...), right.Schema()...)
			env := newExprEnv(c, catalog, combined, outer)
			for _, col := range v.Using {
				lExpr, ok := findNamedColumn(left.Schema(), col, 0)
				if !ok {
					return nil, sql.ErrUnknownColumn.New(col)
				}
				rExpr, ok := findNamedColumn(right.Schema(), col, len(left.Schema()))
				if !ok {
					return nil, sql.ErrUnknownColumn.New(col)
				}
				eq, err := env.compileCall("=", []expression.Expression{lExpr, rExpr})
				if err != nil {
					return nil, err
				}
				if cond == nil {
					cond = eq
				} else {
					cond = expression.NewAnd(cond, eq)
				}
			}
		}
		return plan.NewJoin(kind, left, right, cond), nil

	default:
		return nil, sql.ErrInternal.New(fmt.Sprintf("unhandled table expression %T", t))
	}
}

// findNamedColumn finds the first column named name in schema, returning
// a GetField addressed at base+its position, used to resolve USING(...)
// join columns on each side independently before they are concatenated
// into the join's combined row.
func findNamedColumn(schema sql.Schema, name string, base int) (expression.Expression, bool) {
	for i, col := range schema {
		if col.Name == name {
			return expression.NewGetField(col.Source, col.Name, base+i, col.Type), true
		}
	}
	return nil, false
}

// exprHasAggregate reports whether e contains a non-window aggregate
// call not nested inside a scalar subquery, which is what triggers
// implicit whole-table grouping per spec.md §4.4 "a target list
// aggregate with no GROUP BY groups the entire input into one row".
func exprHasAggregate(funcs *sql.FunctionRegistry, e ast.Expression) bool {
	found := false
	var walk func(n ast.Expression)
	walk = func(n ast.Expression) {
		if found || n == nil {
			return
		}
		switch v := n.(type) {
		case *ast.FuncCall:
			if v.Over == nil && funcs.HasAggregate(v.Name) && !isWindowOnlyFunc(v.Name) {
				found = true
				return
			}
			for _, a := range v.Args {
				walk(a)
			}
			if v.Filter != nil {
				walk(v.Filter)
			}
		case *ast.BinaryExpr:
			walk(v.Left)
			walk(v.Right)
		case *ast.UnaryExpr:
			walk(v.Operand)
		case *ast.AndExpr:
			walk(v.Left)
			walk(v.Right)
		case *ast.OrExpr:
			walk(v.Left)
			walk(v.Right)
		case *ast.NotExpr:
			walk(v.Operand)
		case *ast.IsNullExpr:
			walk(v.Operand)
		case *ast.BetweenExpr:
			walk(v.Operand)
			walk(v.Lo)
			walk(v.Hi)
		case *ast.InExpr:
			walk(v.Operand)
			for _, e := range v.List {
				walk(e)
			}
		case *ast.CaseExpr:
			walk(v.Operand)
			for _, w := range v.Whens {
				walk(w.Cond)
				walk(w.Result)
			}
			walk(v.Else)
		case *ast.CollectionExpr:
			for _, e := range v.Elems {
				walk(e)
			}
		case *ast.Cast:
			walk(v.Target)
		case *ast.Attribute:
			walk(v.Target)
		case *ast.Subscript:
			walk(v.Target)
			walk(v.Index)
		}
	}
	walk(e)
	return found
}
