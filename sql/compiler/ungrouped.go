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

// windowBuilder accumulates OVER(...) call sites encountered while
// compiling the target list and ORDER BY of an ungrouped query, spec.md
// §4.3 step 8. Like groupBuilder it is append-only so indices handed out
// during compilation stay valid once plan.NewWindow is built.
type windowBuilder struct {
	base  int
	keys  []string
	calls []plan.WindowCall
}

func newWindowBuilder(base int) *windowBuilder { return &windowBuilder{base: base} }

func (b *windowBuilder) add(key string, call plan.WindowCall) int {
	for i, k := range b.keys {
		if k == key {
			return b.base + i
		}
	}
	b.keys = append(b.keys, key)
	b.calls = append(b.calls, call)
	return b.base + len(b.calls) - 1
}

// compileUngrouped lowers a non-aggregating query's target list, folding
// any OVER(...) calls into a plan.Window inserted between src and the
// eventual target projection, spec.md §4.3 step 8.
func (c *Compiler) compileUngrouped(catalog *sql.Catalog, stmt *ast.SelectStatement, src plan.Node, outer []sql.Schema) (plan.Node, *exprEnv, error) {
	baseSchema := src.Schema()
	wb := newWindowBuilder(len(baseSchema))

	env := newExprEnv(c, catalog, baseSchema, outer)
	env.aggregate = func(call *ast.FuncCall) (expression.Expression, error) {
		return nil, sql.ErrCompilation.New(fmt.Sprintf("aggregate %s requires GROUP BY", call.Name))
	}
	env.window = func(call *ast.FuncCall) (expression.Expression, error) {
		return compileWindowCall(c, catalog, stmt, baseSchema, outer, call, wb)
	}

	for _, t := range stmt.Targets {
		if _, err := expandTarget(t, env); err != nil {
			return nil, nil, err
		}
	}
	for _, ot := range stmt.OrderBy {
		if isOrderPositionOrAlias(ot.Expr, stmt.Targets) {
			continue
		}
		if _, err := env.compile(ot.Expr); err != nil {
			return nil, nil, err
		}
	}

	var node plan.Node = src
	if len(wb.calls) > 0 {
		schema := append(sql.Schema{}, baseSchema...)
		for i, call := range wb.calls {
			schema = append(schema, &sql.Column{Name: fmt.Sprintf("%s_%d", call.FuncName, i), Type: windowResultType(call)})
		}
		node = plan.NewWindow(src, wb.calls, schema)
	}

	finalEnv := newExprEnv(c, catalog, node.Schema(), outer)
	finalEnv.aggregate = env.aggregate
	finalEnv.window = env.window
	return node, finalEnv, nil
}

func windowResultType(call plan.WindowCall) sql.DType {
	switch call.FuncName {
	case "row_number", "rank", "dense_rank":
		return sql.Integer
	}
	if call.Aggregator != nil && len(call.Args) > 0 {
		return call.Args[0].Type()
	}
	if len(call.Args) > 0 {
		return call.Args[0].Type()
	}
	return sql.Object
}

// compileWindowCall builds one plan.WindowCall from a FuncCall carrying
// an OverClause, resolving either an inline window spec or a named
// WINDOW clause plus any per-reference-site overrides, spec.md §4.3 step
// 8 / §4.5 frames / §4.6 window-only functions.
func compileWindowCall(c *Compiler, catalog *sql.Catalog, stmt *ast.SelectStatement, baseSchema sql.Schema, outer []sql.Schema, fc *ast.FuncCall, wb *windowBuilder) (expression.Expression, error) {
	spec, err := resolveWindowSpec(stmt, fc.Over)
	if err != nil {
		return nil, err
	}

	argEnv := newExprEnv(c, catalog, baseSchema, outer)
	argEnv.aggregate = nestedAggregateErr
	argEnv.window = func(n *ast.FuncCall) (expression.Expression, error) {
		return nil, sql.ErrCompilation.New("window functions cannot be nested")
	}

	name := strings.ToLower(fc.Name)
	var args []expression.Expression
	var nthN, offset int
	var defaultExpr expression.Expression

	switch name {
	case "row_number", "rank", "dense_rank":
		// no value argument; rank/dense_rank read OrderBy directly.
	case "first_value", "last_value":
		if len(fc.Args) != 1 {
			return nil, sql.ErrCompilation.New(name + " takes exactly one argument")
		}
		v, err := argEnv.compile(fc.Args[0])
		if err != nil {
			return nil, err
		}
		args = []expression.Expression{v}
	case "nth_value":
		if len(fc.Args) != 2 {
			return nil, sql.ErrCompilation.New("nth_value takes exactly two arguments")
		}
		v, err := argEnv.compile(fc.Args[0])
		if err != nil {
			return nil, err
		}
		args = []expression.Expression{v}
		nthN, err = compileConstantInt(argEnv, fc.Args[1], "nth_value's second argument")
		if err != nil {
			return nil, err
		}
	case "lead", "lag":
		if len(fc.Args) < 1 || len(fc.Args) > 3 {
			return nil, sql.ErrCompilation.New(name + " takes one to three arguments")
		}
		v, err := argEnv.compile(fc.Args[0])
		if err != nil {
			return nil, err
		}
		args = []expression.Expression{v}
		offset = 1
		if len(fc.Args) >= 2 {
			offset, err = compileConstantInt(argEnv, fc.Args[1], name+"'s offset argument")
			if err != nil {
				return nil, err
			}
		}
		if len(fc.Args) == 3 {
			defaultExpr, err = argEnv.compile(fc.Args[2])
			if err != nil {
				return nil, err
			}
		}
	default:
		for _, a := range fc.Args {
			v, err := argEnv.compile(a)
			if err != nil {
				return nil, err
			}
			args = append(args, v)
		}
	}

	var filter expression.Expression
	if fc.Filter != nil {
		var err error
		filter, err = argEnv.compile(fc.Filter)
		if err != nil {
			return nil, err
		}
	}

	var partitionBy []expression.Expression
	for _, p := range spec.PartitionBy {
		pe, err := argEnv.compile(p)
		if err != nil {
			return nil, err
		}
		partitionBy = append(partitionBy, pe)
	}

	var orderBy []plan.SortKey
	for _, ot := range spec.OrderBy {
		oe, err := argEnv.compile(ot.Expr)
		if err != nil {
			return nil, err
		}
		orderBy = append(orderBy, plan.SortKey{Expr: oe, Desc: ot.Desc, NullsFirst: defaultNullsFirst(ot.NullsFirst, ot.Desc)})
	}

	frame, err := compileFrame(argEnv, spec.Frame, orderBy)
	if err != nil {
		return nil, err
	}

	var agg sql.Aggregator
	isWindowOnly := isWindowOnlyFunc(name)
	if !isWindowOnly {
		factory, ok := catalog.Functions().Aggregate(name)
		if !ok {
			return nil, sql.ErrNotSupported.New(name, "window")
		}
		argType := sql.Object
		if len(args) > 0 {
			argType = args[0].Type()
		}
		agg = factory(argType)
	}

	call := plan.WindowCall{
		FuncName:    name,
		Args:        args,
		Distinct:    fc.Distinct,
		Filter:      filter,
		PartitionBy: partitionBy,
		OrderBy:     orderBy,
		Frame:       frame,
		Aggregator:  agg,
		NthN:        nthN,
		Offset:      offset,
		Default:     defaultExpr,
	}

	key := renderWindowKey(fc, call)
	idx := wb.add(key, call)
	return expression.NewGetField("", name, idx, windowResultType(call)), nil
}

func renderWindowKey(fc *ast.FuncCall, call plan.WindowCall) string {
	s := call.FuncName + "("
	for i, a := range call.Args {
		if i > 0 {
			s += ","
		}
		s += a.String()
	}
	s += ") over ("
	for _, p := range call.PartitionBy {
		s += "p:" + p.String()
	}
	for _, o := range call.OrderBy {
		s += fmt.Sprintf("o:%s:%v:%v", o.Expr.String(), o.Desc, o.NullsFirst)
	}
	s += fmt.Sprintf(" frame:%+v", call.Frame)
	return s
}

// resolveWindowSpec resolves an inline OVER(...) clause, a reference to a
// named WINDOW w AS (...) (optionally overridden inline), or a bare
// reference to a named window with no override, spec.md §4.3 step 8.
func resolveWindowSpec(stmt *ast.SelectStatement, over *ast.OverClause) (*ast.WindowSpec, error) {
	if over == nil {
		return nil, sql.ErrInternal.New("window function used without OVER")
	}
	if over.WindowName == "" {
		return &over.Spec, nil
	}
	base, err := findNamedWindow(stmt, over.WindowName)
	if err != nil {
		return nil, err
	}
	merged := *base
	if len(over.Spec.PartitionBy) > 0 {
		merged.PartitionBy = over.Spec.PartitionBy
	}
	if len(over.Spec.OrderBy) > 0 {
		merged.OrderBy = over.Spec.OrderBy
	}
	if over.Spec.Frame != nil {
		merged.Frame = over.Spec.Frame
	}
	return &merged, nil
}

func findNamedWindow(stmt *ast.SelectStatement, name string) (*ast.WindowSpec, error) {
	for _, w := range stmt.Windows {
		if w.Name == name {
			if w.Spec.BaseName != "" {
				return resolveWindowSpec(stmt, &ast.OverClause{WindowName: w.Spec.BaseName, Spec: w.Spec})
			}
			return &w.Spec, nil
		}
	}
	return nil, sql.ErrCompilation.New(fmt.Sprintf("window %q is not defined", name))
}

// compileFrame lowers an ast.FrameSpec into a sql.WindowFrame. A bound
// offset must fold to a non-negative constant integer since
// sql.WindowFrame stores static ints, not expressions.
func compileFrame(env *exprEnv, fs *ast.FrameSpec, orderBy []plan.SortKey) (sql.WindowFrame, error) {
	if fs == nil {
		if len(orderBy) > 0 {
			return sql.WindowFrame{Type: sql.RangeFrame, Preceding: sql.Unbounded, Following: 0}, nil
		}
		return sql.WindowFrame{Type: sql.RangeFrame, Preceding: sql.Unbounded, Following: sql.Unbounded}, nil
	}

	var typ sql.FrameType
	switch strings.ToUpper(fs.Type) {
	case "ROWS":
		typ = sql.RowsFrame
	case "GROUPS":
		typ = sql.GroupsFrame
	case "RANGE":
		typ = sql.RangeFrame
	default:
		return sql.WindowFrame{}, sql.ErrInternal.New("unknown frame type " + fs.Type)
	}

	preceding, err := compileBound(env, fs.Preceding)
	if err != nil {
		return sql.WindowFrame{}, err
	}
	following, err := compileBound(env, fs.Following)
	if err != nil {
		return sql.WindowFrame{}, err
	}

	if typ == sql.RangeFrame && (preceding != sql.Unbounded && preceding != 0 || following != sql.Unbounded && following != 0) {
		if len(orderBy) != 1 || !orderBy[0].Expr.Type().IsNumber() && orderBy[0].Expr.Type() != sql.DateTime {
			return sql.WindowFrame{}, sql.ErrInvalidRangeFrame.New(frameOrderType(orderBy))
		}
	}

	var exclude sql.ExcludeMode
	switch strings.ToUpper(fs.Exclude) {
	case "", "NO OTHERS":
		exclude = sql.ExcludeNone
	case "CURRENT ROW":
		exclude = sql.ExcludeCurrentRow
	case "GROUP":
		exclude = sql.ExcludeGroup
	case "TIES":
		exclude = sql.ExcludeTies
	}

	return sql.WindowFrame{Type: typ, Preceding: preceding, Following: following, Exclude: exclude}, nil
}

func frameOrderType(orderBy []plan.SortKey) string {
	if len(orderBy) != 1 {
		return "none"
	}
	return orderBy[0].Expr.Type().String()
}

func compileBound(env *exprEnv, b ast.BoundSpec) (int, error) {
	if b.Unbounded {
		return sql.Unbounded, nil
	}
	if b.Current || b.Offset == nil {
		return 0, nil
	}
	n, err := compileConstantInt(env, b.Offset, "window frame offset")
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, sql.ErrCompilation.New("window frame offset must not be negative")
	}
	return n, nil
}

func compileConstantInt(env *exprEnv, e ast.Expression, label string) (int, error) {
	compiled, err := env.compile(e)
	if err != nil {
		return 0, err
	}
	if !expression.IsConstant(compiled) {
		return 0, sql.ErrCompilation.New(label + " must be a constant")
	}
	v, err := compiled.Eval(sql.NewEmptyContext(), nil)
	if err != nil {
		return 0, err
	}
	if v.Type != sql.Integer {
		return 0, sql.ErrCompilation.New(label + " must be an integer")
	}
	return int(v.AsInteger()), nil
}
