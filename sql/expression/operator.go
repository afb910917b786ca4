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

package expression

import "github.com/peaql/peaql/sql"

// Call is a compiled operator/function application: the compiler resolves
// name against a *sql.FunctionRegistry once at compile time and stashes
// Typ, and Eval re-dispatches through the registry so that NullSafe short-circuiting
// stays centralized in one place (sql.FunctionRegistry.Call). Unary and
// binary operators (`+`, `=`, `~`, ...), scalar builtins and the dotted
// method rewrite of spec.md §4.3 step 5 (`x.toFixed(3)` -> `toFixed(x,3)`)
// all compile down to Call.
type Call struct {
	Registry *sql.FunctionRegistry
	Name     string
	Args     []Expression
	Typ      sql.DType
}

func NewCall(reg *sql.FunctionRegistry, name string, typ sql.DType, args ...Expression) *Call {
	return &Call{Registry: reg, Name: name, Args: args, Typ: typ}
}

func (c *Call) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	args := make([]sql.Value, len(c.Args))
	for i, a := range c.Args {
		v, err := a.Eval(ctx, row)
		if err != nil {
			return sql.NullValue, err
		}
		args[i] = v
	}
	return c.Registry.Call(ctx, c.Name, args)
}

func (c *Call) Type() sql.DType        { return c.Typ }
func (c *Call) Children() []Expression { return c.Args }
func (c *Call) String() string {
	s := c.Name + "("
	for i, a := range c.Args {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	return s + ")"
}

func (c *Call) WithChildren(children ...Expression) (Expression, error) {
	return &Call{Registry: c.Registry, Name: c.Name, Args: children, Typ: c.Typ}, nil
}

// And implements Kleene (three-valued) conjunction: NULL propagates unless
// short-circuited by a known-FALSE operand (spec.md §4.3 step 4).
type And struct{ Left, Right Expression }

func NewAnd(l, r Expression) *And { return &And{l, r} }

func (a *And) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	lv, err := a.Left.Eval(ctx, row)
	if err != nil {
		return sql.NullValue, err
	}
	if !lv.IsNull() && !lv.AsBoolean() {
		return sql.NewBoolean(false), nil
	}
	rv, err := a.Right.Eval(ctx, row)
	if err != nil {
		return sql.NullValue, err
	}
	if !rv.IsNull() && !rv.AsBoolean() {
		return sql.NewBoolean(false), nil
	}
	if lv.IsNull() || rv.IsNull() {
		return sql.NullValue, nil
	}
	return sql.NewBoolean(true), nil
}

func (a *And) Type() sql.DType        { return sql.Boolean }
func (a *And) Children() []Expression { return []Expression{a.Left, a.Right} }
func (a *And) String() string         { return a.Left.String() + " AND " + a.Right.String() }
func (a *And) WithChildren(c ...Expression) (Expression, error) { return NewAnd(c[0], c[1]), nil }

// Or implements Kleene disjunction.
type Or struct{ Left, Right Expression }

func NewOr(l, r Expression) *Or { return &Or{l, r} }

func (o *Or) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	lv, err := o.Left.Eval(ctx, row)
	if err != nil {
		return sql.NullValue, err
	}
	if !lv.IsNull() && lv.AsBoolean() {
		return sql.NewBoolean(true), nil
	}
	rv, err := o.Right.Eval(ctx, row)
	if err != nil {
		return sql.NullValue, err
	}
	if !rv.IsNull() && rv.AsBoolean() {
		return sql.NewBoolean(true), nil
	}
	if lv.IsNull() || rv.IsNull() {
		return sql.NullValue, nil
	}
	return sql.NewBoolean(false), nil
}

func (o *Or) Type() sql.DType        { return sql.Boolean }
func (o *Or) Children() []Expression { return []Expression{o.Left, o.Right} }
func (o *Or) String() string         { return o.Left.String() + " OR " + o.Right.String() }
func (o *Or) WithChildren(c ...Expression) (Expression, error) { return NewOr(c[0], c[1]), nil }

// Not implements three-valued negation: NOT NULL = NULL. It is not a
// registry function; the result is produced here directly.
type Not struct{ Child Expression }

func NewNot(e Expression) *Not { return &Not{e} }

func (n *Not) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	v, err := n.Child.Eval(ctx, row)
	if err != nil {
		return sql.NullValue, err
	}
	if v.IsNull() {
		return sql.NullValue, nil
	}
	return sql.NewBoolean(!v.AsBoolean()), nil
}

func (n *Not) Type() sql.DType        { return sql.Boolean }
func (n *Not) Children() []Expression { return []Expression{n.Child} }
func (n *Not) String() string         { return "NOT " + n.Child.String() }
func (n *Not) WithChildren(c ...Expression) (Expression, error) { return NewNot(c[0]), nil }

// IsNull/IsNotNull are null-safe unary tests (spec.md §4.6 "Boolean").
type IsNull struct {
	Child Expression
	Negate bool
}

func NewIsNull(e Expression, negate bool) *IsNull { return &IsNull{e, negate} }

func (n *IsNull) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	v, err := n.Child.Eval(ctx, row)
	if err != nil {
		return sql.NullValue, err
	}
	if n.Negate {
		return sql.NewBoolean(!v.IsNull()), nil
	}
	return sql.NewBoolean(v.IsNull()), nil
}

func (n *IsNull) Type() sql.DType        { return sql.Boolean }
func (n *IsNull) Children() []Expression { return []Expression{n.Child} }
func (n *IsNull) String() string {
	if n.Negate {
		return n.Child.String() + " IS NOT NULL"
	}
	return n.Child.String() + " IS NULL"
}
func (n *IsNull) WithChildren(c ...Expression) (Expression, error) { return NewIsNull(c[0], n.Negate), nil }
