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
	"strconv"

	"github.com/peaql/peaql/sql"
	"github.com/peaql/peaql/sql/expression"
	"github.com/peaql/peaql/sql/parser/ast"
	"github.com/peaql/peaql/sql/plan"
)

// groupBuilder accumulates GROUP BY keys and aggregate call sites while
// the target list, HAVING and ORDER BY are compiled, spec.md §4.4
// "Grouping and aggregation". Slots are append-only so a GetField index
// handed back the moment a key or aggregate is registered stays valid
// once plan.NewGroupBy is finally built from the accumulated slices.
type groupBuilder struct {
	keyExprs []expression.Expression
	keyNames []string
	aggs     []plan.AggCall
	aggNames []string
}

func newGroupBuilder() *groupBuilder {
	return &groupBuilder{}
}

// addKey registers expr as a GROUP BY key, deduping by its rendered
// string, and returns its index into the eventual GroupBy row.
func (b *groupBuilder) addKey(expr expression.Expression) int {
	key := expr.String()
	for i, k := range b.keyNames {
		if k == key {
			return i
		}
	}
	b.keyNames = append(b.keyNames, key)
	b.keyExprs = append(b.keyExprs, expr)
	return len(b.keyExprs) - 1
}

// addAgg registers call as an aggregate call site, deduping by dedupKey,
// and returns its index into the eventual GroupBy row (offset past the
// keys, matching the [keys..., aggregates...] row shape plan.GroupBy
// produces).
func (b *groupBuilder) addAgg(dedupKey string, call plan.AggCall) int {
	for i, k := range b.aggNames {
		if k == dedupKey {
			return len(b.keyExprs) + i
		}
	}
	b.aggNames = append(b.aggNames, dedupKey)
	b.aggs = append(b.aggs, call)
	return len(b.keyExprs) + len(b.aggs) - 1
}

func (b *groupBuilder) schema() sql.Schema {
	schema := make(sql.Schema, 0, len(b.keyExprs)+len(b.aggs))
	for i, e := range b.keyExprs {
		schema = append(schema, &sql.Column{Name: fmt.Sprintf("$key%d", i), Type: e.Type(), Index: len(schema)})
	}
	for i, a := range b.aggs {
		typ := sql.Object
		if len(a.Args) > 0 {
			typ = a.Args[0].Type()
		}
		schema = append(schema, &sql.Column{Name: fmt.Sprintf("$agg%d", i), Type: typ, Index: len(schema)})
	}
	return schema
}

// compileGrouped lowers a GROUP BY (explicit or implicit, from an
// aggregate in the target list with no GROUP BY clause) query into a
// plan.GroupBy, optionally wrapped in a HAVING plan.Filter, returning the
// resulting node and the exprEnv callers use to finish compiling ORDER
// BY/PIVOT BY against that same row shape.
func (c *Compiler) compileGrouped(catalog *sql.Catalog, stmt *ast.SelectStatement, src plan.Node, outer []sql.Schema) (plan.Node, *exprEnv, error) {
	gb := newGroupBuilder()
	preSchema := src.Schema()

	plainEnv := newExprEnv(c, catalog, preSchema, outer)
	for _, item := range stmt.GroupBy {
		expr, err := resolveGroupItem(item, stmt.Targets, plainEnv)
		if err != nil {
			return nil, nil, err
		}
		gb.addKey(expr)
	}

	env := newExprEnv(c, catalog, preSchema, outer)
	env.resolveColumn = func(table, name string) (expression.Expression, error) {
		col, idx := findColumn(preSchema, table, name)
		if col == nil {
			return nil, sql.ErrUnknownColumn.New(name)
		}
		keyExpr := expression.NewGetField(col.Source, col.Name, idx, col.Type)
		if !c.Settings.ImplicitGroupBy {
			for _, k := range gb.keyExprs {
				if k.String() == keyExpr.String() {
					return expression.NewGetField("", "", gb.addKey(keyExpr), col.Type), nil
				}
			}
			return nil, sql.ErrCompilation.New(fmt.Sprintf("column %q must appear in GROUP BY or be used in an aggregate", name))
		}
		return expression.NewGetField("", "", gb.addKey(keyExpr), col.Type), nil
	}
	env.aggregate = func(call *ast.FuncCall) (expression.Expression, error) {
		return compileAggregateCall(c, catalog, preSchema, outer, call, gb)
	}

	// Targets and HAVING must compile before plan.NewGroupBy is built so
	// every key/aggregate slot they register lands in the final schema.
	for _, t := range stmt.Targets {
		if _, err := expandTarget(t, env); err != nil {
			return nil, nil, err
		}
	}
	if stmt.Having != nil {
		if _, err := env.compile(stmt.Having); err != nil {
			return nil, nil, err
		}
	}
	// ORDER BY/PIVOT BY may reference an aggregate that appears nowhere
	// in the target list or HAVING (e.g. "GROUP BY dept ORDER BY
	// count(*)"); registering it here, before plan.NewGroupBy is built,
	// keeps its slot inside the Aggs slice the node actually evaluates.
	// Positional/alias ORDER BY references are skipped here (resolved
	// against the target list itself in finishSelect) since they add no
	// new aggregate.
	for _, ot := range stmt.OrderBy {
		if isOrderPositionOrAlias(ot.Expr, stmt.Targets) {
			continue
		}
		if _, err := env.compile(ot.Expr); err != nil {
			return nil, nil, err
		}
	}
	// PIVOT BY axes are resolved only by target-list position/alias
	// (see resolvePivotRef), so they never register a new aggregate.
	// Re-running Target/ORDER BY compilation in finishSelect (and HAVING
	// just below) against the now-stable grouped schema is intentionally
	// redundant:
	// groupBuilder is append-only, so every GetField index handed back
	// above stays correct, and the second pass is what actually
	// produces the plan.Project/plan.Sort expressions.

	groupNode := plan.NewGroupBy(src, gb.keyExprs, gb.aggs, gb.schema())
	var node plan.Node = groupNode
	if stmt.Having != nil {
		havingExpr, err := env.compile(stmt.Having)
		if err != nil {
			return nil, nil, err
		}
		node = plan.NewFilter(node, havingExpr)
	}

	finalEnv := newExprEnv(c, catalog, groupNode.Schema(), outer)
	finalEnv.aggregate = func(call *ast.FuncCall) (expression.Expression, error) {
		return compileAggregateCall(c, catalog, preSchema, outer, call, gb)
	}
	finalEnv.resolveColumn = env.resolveColumn
	return node, finalEnv, nil
}

// resolveGroupItem resolves one GROUP BY clause item: a 1-based integer
// literal is a positional reference into the target list, spec.md §4.3
// "GROUP BY accepts target-list positions".
func resolveGroupItem(item ast.Expression, targets []ast.SelectTarget, env *exprEnv) (expression.Expression, error) {
	if lit, ok := item.(*ast.Literal); ok && lit.Kind == "int" {
		idx, err := parseInt(lit.Value)
		if err == nil {
			if idx < 1 || int(idx) > len(targets) {
				return nil, sql.ErrInvalidGroupIndex.New(idx, len(targets))
			}
			return env.compile(targets[idx-1].Expr)
		}
	}
	return env.compile(item)
}

// compileAggregateCall builds an expression.GetField referencing a newly
// or previously registered plan.AggCall slot, special-casing COUNT(*),
// spec.md §4.6 "COUNT(*) counts rows regardless of NULLs".
func compileAggregateCall(c *Compiler, catalog *sql.Catalog, preSchema sql.Schema, outer []sql.Schema, call *ast.FuncCall, gb *groupBuilder) (expression.Expression, error) {
	argEnv := newExprEnv(c, catalog, preSchema, outer)
	argEnv.aggregate = nestedAggregateErr

	var args []expression.Expression
	argType := sql.Object
	if len(call.Args) == 1 {
		if _, ok := call.Args[0].(*ast.Star); ok {
			argType = sql.Asterisk
		}
	}
	if argType != sql.Asterisk {
		for _, a := range call.Args {
			ce, err := argEnv.compile(a)
			if err != nil {
				return nil, err
			}
			args = append(args, ce)
		}
		if len(args) > 0 {
			argType = args[0].Type()
		}
	}

	var filter expression.Expression
	if call.Filter != nil {
		var err error
		filter, err = argEnv.compile(call.Filter)
		if err != nil {
			return nil, err
		}
	}

	factory, ok := catalog.Functions().Aggregate(call.Name)
	if !ok {
		return nil, sql.ErrNotSupported.New(call.Name, argType.String())
	}
	agg := factory(argType)

	key := renderAggKey(call, args, filter)
	idx := gb.addAgg(key, plan.AggCall{Aggregator: agg, Args: args, Distinct: call.Distinct, Filter: filter})

	resultType := argType
	if len(args) > 0 {
		resultType = args[0].Type()
	}
	return expression.NewGetField("", call.Name, idx, resultType), nil
}

func renderAggKey(call *ast.FuncCall, args []expression.Expression, filter expression.Expression) string {
	s := call.Name + "("
	if call.Distinct {
		s += "distinct "
	}
	for i, a := range args {
		if i > 0 {
			s += ","
		}
		s += a.String()
	}
	s += ")"
	if filter != nil {
		s += " filter(" + filter.String() + ")"
	}
	return s
}

func parseInt(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

func findColumn(schema sql.Schema, table, name string) (*sql.Column, int) {
	for i, c := range schema {
		if c.Name == name && (table == "" || c.Source == table) {
			return c, i
		}
	}
	return nil, -1
}
