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

// finishSelect builds the target-list Project, ORDER BY Sort, PIVOT BY
// Pivot, DISTINCT and LIMIT/OFFSET stages shared by grouped and
// ungrouped queries, spec.md §4.3 steps 4-10. node is the GroupBy/Window
// row source; env is bound to node's schema with the aggregate/window
// closures already wired for that row shape.
func (c *Compiler) finishSelect(catalog *sql.Catalog, stmt *ast.SelectStatement, node plan.Node, env *exprEnv) (plan.Node, error) {
	var targetExprs []expression.Expression
	var targetNames []string
	for _, t := range stmt.Targets {
		exprs, names, err := expandTarget(t, env)
		if err != nil {
			return nil, err
		}
		targetExprs = append(targetExprs, exprs...)
		targetNames = append(targetNames, names...)
	}

	var extraExprs []expression.Expression
	dedup := func(e expression.Expression) int {
		key := e.String()
		for i, te := range targetExprs {
			if te.String() == key {
				return i
			}
		}
		for i, ee := range extraExprs {
			if ee.String() == key {
				return len(targetExprs) + i
			}
		}
		extraExprs = append(extraExprs, e)
		return len(targetExprs) + len(extraExprs) - 1
	}

	var sortKeys []plan.SortKey
	for _, ot := range stmt.OrderBy {
		idx, typ, err := resolveTargetRef(ot.Expr, targetExprs, targetNames, env, dedup)
		if err != nil {
			return nil, err
		}
		desc := ot.Desc
		nullsFirst := defaultNullsFirst(ot.NullsFirst, desc)
		sortKeys = append(sortKeys, plan.SortKey{Expr: expression.NewGetField("", "", idx, typ), Desc: desc, NullsFirst: nullsFirst})
	}

	if len(stmt.PivotBy) != 0 && len(stmt.PivotBy) != 2 {
		return nil, sql.ErrCompilation.New("PIVOT BY requires exactly two axis expressions")
	}
	if len(stmt.PivotBy) == 2 && len(stmt.OrderBy) > 0 {
		return nil, sql.ErrCompilation.New("ORDER BY is not supported with PIVOT BY")
	}

	allExprs := append(append([]expression.Expression{}, targetExprs...), extraExprs...)
	allSchema := make(sql.Schema, len(allExprs))
	for i, name := range targetNames {
		allSchema[i] = &sql.Column{Name: name, Type: targetExprs[i].Type()}
	}
	for i, e := range extraExprs {
		allSchema[len(targetExprs)+i] = &sql.Column{Name: fmt.Sprintf("$order%d", i), Type: e.Type(), Hidden: true}
	}

	node = plan.NewProject(node, allExprs, allSchema)

	if len(sortKeys) > 0 {
		node = plan.NewSort(node, sortKeys)
	}
	if len(extraExprs) > 0 {
		node = plan.NewVisibleProject(node)
	}

	if len(stmt.PivotBy) == 2 {
		aIdx, _, err := resolvePivotRef(stmt.PivotBy[0], targetExprs, targetNames)
		if err != nil {
			return nil, err
		}
		bIdx, _, err := resolvePivotRef(stmt.PivotBy[1], targetExprs, targetNames)
		if err != nil {
			return nil, err
		}
		var others []int
		for i := range targetExprs {
			if i != aIdx && i != bIdx {
				others = append(others, i)
			}
		}
		node = plan.NewPivot(node, aIdx, bIdx, others)
	}

	if stmt.Distinct {
		node = plan.NewDistinct(node)
	}

	if stmt.Limit != nil || stmt.Offset != nil {
		count, hasCount := int64(0), false
		if stmt.Limit != nil {
			n, err := compileConstantInt(env, stmt.Limit, "LIMIT")
			if err != nil {
				return nil, err
			}
			count, hasCount = int64(n), true
		}
		offset := int64(0)
		if stmt.Offset != nil {
			n, err := compileConstantInt(env, stmt.Offset, "OFFSET")
			if err != nil {
				return nil, err
			}
			offset = int64(n)
		}
		node = plan.NewLimit(node, count, hasCount, offset)
	}

	return node, nil
}

// expandTarget lowers one SELECT target, expanding a bare "*" or "t.*"
// into one target per matching schema column, spec.md §4.3 "the target
// list".
func expandTarget(t ast.SelectTarget, env *exprEnv) ([]expression.Expression, []string, error) {
	if star, ok := t.Expr.(*ast.Star); ok {
		var exprs []expression.Expression
		var names []string
		for i, col := range env.schema {
			if star.Table != "" && col.Source != star.Table {
				continue
			}
			exprs = append(exprs, expression.NewGetField(col.Source, col.Name, i, col.Type))
			names = append(names, col.Name)
		}
		if len(exprs) == 0 {
			return nil, nil, sql.ErrCompilation.New("* matched no columns")
		}
		return exprs, names, nil
	}

	expr, err := env.compile(t.Expr)
	if err != nil {
		return nil, nil, err
	}
	name := t.Alias
	if name == "" {
		name = deriveTargetName(t.Expr)
	}
	return []expression.Expression{expr}, []string{name}, nil
}

func deriveTargetName(e ast.Expression) string {
	switch v := e.(type) {
	case *ast.ColumnRef:
		return v.Name
	case *ast.Attribute:
		return v.Field
	case *ast.Cast:
		return deriveTargetName(v.Target)
	default:
		return "?column?"
	}
}

// isOrderPositionOrAlias reports whether expr resolves purely against
// the target list (a positional integer literal or a bare name matching
// a target alias), the two cases that never register a new aggregate or
// window call.
func isOrderPositionOrAlias(expr ast.Expression, targets []ast.SelectTarget) bool {
	if lit, ok := expr.(*ast.Literal); ok && lit.Kind == "int" {
		return true
	}
	if ref, ok := expr.(*ast.ColumnRef); ok && ref.Table == "" {
		for _, t := range targets {
			if t.Alias == ref.Name {
				return true
			}
		}
	}
	return false
}

// resolveTargetRef resolves an ORDER BY term against the target list by
// position, by alias, or (falling through to a fresh compile, which may
// register a new hidden column via dedup) by an arbitrary expression,
// spec.md §4.3 step 9 "Ordering".
func resolveTargetRef(expr ast.Expression, targetExprs []expression.Expression, targetNames []string, env *exprEnv, dedup func(expression.Expression) int) (int, sql.DType, error) {
	if lit, ok := expr.(*ast.Literal); ok && lit.Kind == "int" {
		n, err := parseInt(lit.Value)
		if err == nil {
			if n < 1 || int(n) > len(targetExprs) {
				return 0, sql.Null, sql.ErrInvalidGroupIndex.New(n, len(targetExprs))
			}
			return int(n) - 1, targetExprs[n-1].Type(), nil
		}
	}
	if ref, ok := expr.(*ast.ColumnRef); ok && ref.Table == "" {
		for i, name := range targetNames {
			if name == ref.Name {
				return i, targetExprs[i].Type(), nil
			}
		}
	}
	compiled, err := env.compile(expr)
	if err != nil {
		return 0, sql.Null, err
	}
	return dedup(compiled), compiled.Type(), nil
}

// resolvePivotRef resolves a PIVOT BY axis expression strictly against
// the (already-compiled) target list by position or alias; Pivot's
// dynamic runtime schema means its axes cannot introduce a fresh hidden
// column the way ORDER BY's can.
func resolvePivotRef(expr ast.Expression, targetExprs []expression.Expression, targetNames []string) (int, sql.DType, error) {
	if lit, ok := expr.(*ast.Literal); ok && lit.Kind == "int" {
		n, err := parseInt(lit.Value)
		if err == nil {
			if n < 1 || int(n) > len(targetExprs) {
				return 0, sql.Null, sql.ErrInvalidGroupIndex.New(n, len(targetExprs))
			}
			return int(n) - 1, targetExprs[n-1].Type(), nil
		}
	}
	if ref, ok := expr.(*ast.ColumnRef); ok && ref.Table == "" {
		for i, name := range targetNames {
			if name == ref.Name {
				return i, targetExprs[i].Type(), nil
			}
		}
	}
	return 0, sql.Null, sql.ErrCompilation.New("PIVOT BY axis must reference a SELECT target")
}

// defaultNullsFirst resolves an unspecified ORDER BY NULLS placement to
// the PostgreSQL convention: NULLS LAST for ASC, NULLS FIRST for DESC
// (DESIGN.md Open Question decision).
func defaultNullsFirst(explicit *bool, desc bool) bool {
	if explicit != nil {
		return *explicit
	}
	return desc
}
