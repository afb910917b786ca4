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

// Package compiler lowers the parser's AST into a sql/plan node tree,
// resolving names against a sql.Catalog, performing overload dispatch
// through sql.FunctionRegistry, and folding constant subexpressions
// (spec.md §4.3).
package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/peaql/peaql/sql"
	"github.com/peaql/peaql/sql/expression"
	"github.com/peaql/peaql/sql/parser/ast"
	"github.com/peaql/peaql/sql/plan"
)

// exprEnv is the single recursive expression compiler, parameterized by
// pluggable column/aggregate/window resolution so the same dispatcher
// serves WHERE/ON clauses, grouped SELECT targets, HAVING, ORDER BY and
// OVER(...) argument lists alike (spec.md §4.3 steps 2-8).
type exprEnv struct {
	c       *Compiler
	catalog *sql.Catalog
	schema  sql.Schema

	// outer holds the schema of each enclosing query, innermost last, for
	// compile-time type resolution of correlated column references
	// (spec.md §9 "Subquery correlation"). At runtime these resolve
	// through sql.Context.ResolveOuter instead, matched by column name
	// alone: Open Question decision (DESIGN.md) — outer correlation is
	// compiled with an empty table qualifier throughout, since
	// expression.SubqueryPlan.RowIter carries a single OuterTable string
	// that cannot represent a multi-table outer scope.
	outer []sql.Schema

	// resolveColumn overrides plain column lookup; nil means "resolve
	// directly against schema/outer" (resolveDefault). Set to a
	// GROUP BY-aware closure while compiling a grouped query's targets,
	// HAVING and ORDER BY (spec.md §4.3 step 6, GLOSSARY "Implicit GROUP
	// BY").
	resolveColumn func(table, name string) (expression.Expression, error)

	// aggregate compiles a registry-resolved aggregate FuncCall; nil
	// rejects aggregate calls in this context (WHERE, ON, plain OVER
	// argument lists).
	aggregate func(call *ast.FuncCall) (expression.Expression, error)

	// window compiles a FuncCall carrying an OVER clause; nil rejects
	// window functions in this context (WHERE, ON, grouped targets —
	// window functions and GROUP BY do not mix in this engine, a
	// documented scope simplification, see DESIGN.md).
	window func(call *ast.FuncCall) (expression.Expression, error)
}

func newExprEnv(c *Compiler, catalog *sql.Catalog, schema sql.Schema, outer []sql.Schema) *exprEnv {
	return &exprEnv{c: c, catalog: catalog, schema: schema, outer: outer}
}

// compile is the recursive dispatcher of spec.md §4.3 step 4.
func (e *exprEnv) compile(n ast.Expression) (expression.Expression, error) {
	switch v := n.(type) {
	case *ast.Literal:
		return e.compileLiteral(v)
	case *ast.Placeholder:
		return expression.NewParameter(v.Index, sql.Object), nil
	case *ast.ColumnRef:
		if e.resolveColumn != nil {
			return e.resolveColumn(v.Table, v.Name)
		}
		return e.resolveDefault(v.Table, v.Name)
	case *ast.Star:
		return nil, sql.ErrCompilation.New("* is not valid in this expression context")
	case *ast.Attribute:
		return e.compileAttribute(v)
	case *ast.Subscript:
		return e.compileSubscript(v)
	case *ast.Cast:
		return e.compileCast(v)
	case *ast.UnaryExpr:
		return e.compileUnary(v)
	case *ast.BinaryExpr:
		return e.compileBinary(v)
	case *ast.AndExpr:
		l, r, err := e.compilePair(v.Left, v.Right)
		if err != nil {
			return nil, err
		}
		return expression.NewAnd(l, r), nil
	case *ast.OrExpr:
		l, r, err := e.compilePair(v.Left, v.Right)
		if err != nil {
			return nil, err
		}
		return expression.NewOr(l, r), nil
	case *ast.NotExpr:
		c, err := e.compile(v.Operand)
		if err != nil {
			return nil, err
		}
		return expression.NewNot(c), nil
	case *ast.IsNullExpr:
		c, err := e.compile(v.Operand)
		if err != nil {
			return nil, err
		}
		return expression.NewIsNull(c, v.Negate), nil
	case *ast.BetweenExpr:
		return e.compileBetween(v)
	case *ast.InExpr:
		return e.compileIn(v)
	case *ast.CaseExpr:
		return e.compileCase(v)
	case *ast.CollectionExpr:
		return e.compileCollection(v)
	case *ast.FuncCall:
		return e.compileFuncCall(v)
	case *ast.ScalarSubquery:
		return e.compileScalarSubquery(v)
	default:
		return nil, sql.ErrInternal.New(fmt.Sprintf("unhandled expression node %T", n))
	}
}

func (e *exprEnv) compilePair(a, b ast.Expression) (expression.Expression, expression.Expression, error) {
	l, err := e.compile(a)
	if err != nil {
		return nil, nil, err
	}
	r, err := e.compile(b)
	if err != nil {
		return nil, nil, err
	}
	return l, r, nil
}

func (e *exprEnv) compileLiteral(n *ast.Literal) (expression.Expression, error) {
	switch n.Kind {
	case "null":
		return expression.NewLiteral(sql.NullValue), nil
	case "bool":
		return expression.NewLiteral(sql.NewBoolean(n.Value == "true")), nil
	case "int":
		i, err := strconv.ParseInt(n.Value, 10, 64)
		if err != nil {
			return nil, sql.ErrCompilation.New(fmt.Sprintf("invalid integer literal %q", n.Value))
		}
		return expression.NewLiteral(sql.NewInteger(i)), nil
	case "float":
		f, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return nil, sql.ErrCompilation.New(fmt.Sprintf("invalid numeric literal %q", n.Value))
		}
		return expression.NewLiteral(sql.NewReal(f)), nil
	case "string":
		return expression.NewLiteral(sql.NewStringValue(n.Value)), nil
	default:
		return nil, sql.ErrInternal.New("unknown literal kind " + n.Kind)
	}
}

// resolveDefault resolves a column reference against the current schema,
// falling back to the enclosing queries' schemas for a correlated
// reference (spec.md §9). Ambiguity is only checked for an unqualified
// name against the local schema; an outer reference is resolved lazily at
// Eval time by sql.Context.ResolveOuter, which matches by name alone
// (Open Question decision, see the exprEnv.outer field comment).
func (e *exprEnv) resolveDefault(table, name string) (expression.Expression, error) {
	if idx := e.schema.IndexOf(name, table); idx >= 0 {
		if table == "" {
			count := 0
			for _, c := range e.schema {
				if c.Name == name {
					count++
				}
			}
			if count > 1 {
				return nil, sql.ErrAmbiguousColumn.New(name)
			}
		}
		col := e.schema[idx]
		return expression.NewGetField(col.Source, col.Name, idx, col.Type), nil
	}
	for i := len(e.outer) - 1; i >= 0; i-- {
		osch := e.outer[i]
		if idx := osch.IndexOf(name, table); idx >= 0 {
			col := osch[idx]
			return expression.NewGetField("", col.Name, -1, col.Type), nil
		}
	}
	return nil, sql.ErrUnknownColumn.New(name)
}

func (e *exprEnv) compileAttribute(n *ast.Attribute) (expression.Expression, error) {
	target, err := e.compile(n.Target)
	if err != nil {
		return nil, err
	}
	if !target.Type().Structured() {
		return nil, sql.ErrCompilation.New(fmt.Sprintf("%s has no attribute %q", target.String(), n.Field))
	}
	for _, f := range sql.StructFields(target.Type()) {
		if f.Name == n.Field {
			return expression.NewAttribute(target, n.Field, f.Type), nil
		}
	}
	return nil, sql.ErrUnknownColumn.New(n.Field)
}

func (e *exprEnv) compileSubscript(n *ast.Subscript) (expression.Expression, error) {
	target, index, err := e.compilePair(n.Target, n.Index)
	if err != nil {
		return nil, err
	}
	return expression.NewSubscript(target, index, sql.Object), nil
}

func (e *exprEnv) compileCast(n *ast.Cast) (expression.Expression, error) {
	target, err := e.compile(n.Target)
	if err != nil {
		return nil, err
	}
	return e.compileCall(strings.ToLower(n.Type), []expression.Expression{target})
}

func (e *exprEnv) compileUnary(n *ast.UnaryExpr) (expression.Expression, error) {
	v, err := e.compile(n.Operand)
	if err != nil {
		return nil, err
	}
	if n.Op == "+" {
		return v, nil
	}
	return e.compileCall(n.Op, []expression.Expression{v})
}

// normalizedBinaryOp maps a lexeme literal to its registered function
// name. "<>" and "!=" both lex to token.NEQ but with distinct literal
// text (sql/parser/lexer/lexer.go); both mean the same registered
// overload.
func normalizedBinaryOp(op string) string {
	if op == "<>" {
		return "!="
	}
	return op
}

func (e *exprEnv) compileBinary(n *ast.BinaryExpr) (expression.Expression, error) {
	l, r, err := e.compilePair(n.Left, n.Right)
	if err != nil {
		return nil, err
	}
	return e.compileCall(normalizedBinaryOp(n.Op), []expression.Expression{l, r})
}

func (e *exprEnv) compileBetween(n *ast.BetweenExpr) (expression.Expression, error) {
	v, err := e.compile(n.Operand)
	if err != nil {
		return nil, err
	}
	lo, err := e.compile(n.Lo)
	if err != nil {
		return nil, err
	}
	hi, err := e.compile(n.Hi)
	if err != nil {
		return nil, err
	}
	return expression.NewBetween(v, lo, hi, n.Negate), nil
}

func (e *exprEnv) compileIn(n *ast.InExpr) (expression.Expression, error) {
	v, err := e.compile(n.Operand)
	if err != nil {
		return nil, err
	}
	if n.Query != nil {
		list, err := e.compileSubqueryList(n.Query)
		if err != nil {
			return nil, err
		}
		return expression.NewIn(v, list, n.Negate), nil
	}
	elems := make([]expression.Expression, len(n.List))
	for i, el := range n.List {
		ce, err := e.compile(el)
		if err != nil {
			return nil, err
		}
		elems[i] = ce
	}
	list := expression.NewCollection(v.Type(), elems...)
	return expression.NewIn(v, list, n.Negate), nil
}

func (e *exprEnv) compileCase(n *ast.CaseExpr) (expression.Expression, error) {
	var operand expression.Expression
	if n.Operand != nil {
		var err error
		operand, err = e.compile(n.Operand)
		if err != nil {
			return nil, err
		}
	}
	var branches []expression.CaseBranch
	resultType := sql.Object
	for i, w := range n.Whens {
		var cond expression.Expression
		var err error
		if operand != nil {
			whenVal, err2 := e.compile(w.Cond)
			if err2 != nil {
				return nil, err2
			}
			cond, err = e.compileCall("=", []expression.Expression{operand, whenVal})
		} else {
			cond, err = e.compile(w.Cond)
		}
		if err != nil {
			return nil, err
		}
		res, err := e.compile(w.Result)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			resultType = res.Type()
		}
		branches = append(branches, expression.CaseBranch{Cond: cond, Result: res})
	}
	var els expression.Expression
	if n.Else != nil {
		var err error
		els, err = e.compile(n.Else)
		if err != nil {
			return nil, err
		}
	}
	return expression.NewCase(branches, els, resultType), nil
}

func (e *exprEnv) compileCollection(n *ast.CollectionExpr) (expression.Expression, error) {
	elems := make([]expression.Expression, len(n.Elems))
	elemType := sql.Object
	for i, el := range n.Elems {
		ce, err := e.compile(el)
		if err != nil {
			return nil, err
		}
		elems[i] = ce
		if i == 0 {
			elemType = ce.Type()
		}
	}
	return expression.NewCollection(elemType, elems...), nil
}

// compileCall resolves name against argTypes and wraps the built Call in
// a constant fold when every argument is itself constant (spec.md §4.3
// step 4).
func (e *exprEnv) compileCall(name string, args []expression.Expression) (expression.Expression, error) {
	argTypes := make([]sql.DType, len(args))
	for i, a := range args {
		argTypes[i] = a.Type()
	}
	sig, err := e.catalog.Functions().Resolve(name, argTypes)
	if err != nil {
		return nil, err
	}
	call := expression.NewCall(e.catalog.Functions(), name, sig.Result, args...)
	return foldConstant(call), nil
}

func foldConstant(ex expression.Expression) expression.Expression {
	if !expression.IsConstant(ex) {
		return ex
	}
	v, err := ex.Eval(sql.NewEmptyContext(), nil)
	if err != nil {
		return ex
	}
	return expression.NewLiteral(v)
}

var windowOnlyFuncs = map[string]bool{
	"row_number": true, "rank": true, "dense_rank": true,
	"first_value": true, "last_value": true, "nth_value": true,
	"lead": true, "lag": true,
}

func isWindowOnlyFunc(name string) bool { return windowOnlyFuncs[strings.ToLower(name)] }

func nestedAggregateErr(*ast.FuncCall) (expression.Expression, error) {
	return nil, sql.ErrNestedAggregate.New()
}

// compileFuncCall dispatches a parsed call to the window, aggregate or
// plain-scalar path, spec.md §4.3 step 4 / §4.6.
func (e *exprEnv) compileFuncCall(n *ast.FuncCall) (expression.Expression, error) {
	name := strings.ToLower(n.Name)
	if n.Over != nil {
		if e.window == nil {
			return nil, sql.ErrCompilation.New(fmt.Sprintf("%s(...) OVER (...) is not allowed here", name))
		}
		return e.window(n)
	}
	if isWindowOnlyFunc(name) {
		return nil, sql.ErrCompilation.New(fmt.Sprintf("%s requires an OVER clause", name))
	}
	if e.catalog.Functions().HasAggregate(name) {
		if e.aggregate == nil {
			return nil, sql.ErrCompilation.New(fmt.Sprintf("%s is an aggregate function and is not allowed here", name))
		}
		return e.aggregate(n)
	}
	if n.Distinct {
		return nil, sql.ErrInvalidDistinct.New()
	}
	if n.Filter != nil {
		return nil, sql.ErrInvalidFilter.New()
	}
	args := make([]expression.Expression, len(n.Args))
	for i, a := range n.Args {
		if _, ok := a.(*ast.Star); ok {
			return nil, sql.ErrCompilation.New(fmt.Sprintf("%s(*) is not a valid call", name))
		}
		ce, err := e.compile(a)
		if err != nil {
			return nil, err
		}
		args[i] = ce
	}
	return e.compileCall(name, args)
}

// compileScalarSubquery compiles n.Query as an independent statement
// (with the current schema pushed onto the outer stack for correlation),
// erroring at compile time if it projects more than one column (spec.md
// §4.6 "Scalar subquery").
func (e *exprEnv) compileScalarSubquery(n *ast.ScalarSubquery) (expression.Expression, error) {
	node, err := e.compileCorrelated(n.Query)
	if err != nil {
		return nil, err
	}
	sch := node.Schema()
	if len(sch) != 1 {
		return nil, sql.ErrScalarSubquery.New(len(sch))
	}
	adapter := &plan.SubqueryAdapter{Node: node}
	return expression.NewSubqueryValue(adapter, "", e.schema, sch[0].Type), nil
}

// compileSubqueryList compiles query as the right-hand side of IN,
// requiring a single projected column (spec.md §4.6 "Set containment").
func (e *exprEnv) compileSubqueryList(query *ast.SelectStatement) (expression.Expression, error) {
	node, err := e.compileCorrelated(query)
	if err != nil {
		return nil, err
	}
	sch := node.Schema()
	if len(sch) != 1 {
		return nil, sql.ErrScalarSubquery.New(len(sch))
	}
	adapter := &plan.SubqueryAdapter{Node: node}
	return expression.NewSubqueryList(adapter, "", e.schema, sch[0].Type), nil
}

func (e *exprEnv) compileCorrelated(query *ast.SelectStatement) (plan.Node, error) {
	outer := append(append([]sql.Schema{}, e.outer...), e.schema)
	return e.c.compileSelect(e.catalog, query, outer)
}
