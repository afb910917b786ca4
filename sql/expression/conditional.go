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

// CaseBranch is one WHEN cond THEN result pair of a CASE expression.
type CaseBranch struct {
	Cond   Expression
	Result Expression
}

// Case is a compiled CASE WHEN ... THEN ... [ELSE ...] END. It is
// null-safe in the sense that a NULL condition is simply treated as not
// matching, never as an error (spec.md §4.6).
type Case struct {
	Branches []CaseBranch
	Else     Expression // nil if no ELSE clause
	Typ      sql.DType
}

func NewCase(branches []CaseBranch, els Expression, typ sql.DType) *Case {
	return &Case{Branches: branches, Else: els, Typ: typ}
}

func (c *Case) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	for _, b := range c.Branches {
		cond, err := b.Cond.Eval(ctx, row)
		if err != nil {
			return sql.NullValue, err
		}
		if !cond.IsNull() && cond.AsBoolean() {
			return b.Result.Eval(ctx, row)
		}
	}
	if c.Else != nil {
		return c.Else.Eval(ctx, row)
	}
	return sql.NullValue, nil
}

func (c *Case) Type() sql.DType { return c.Typ }
func (c *Case) Children() []Expression {
	children := make([]Expression, 0, len(c.Branches)*2+1)
	for _, b := range c.Branches {
		children = append(children, b.Cond, b.Result)
	}
	if c.Else != nil {
		children = append(children, c.Else)
	}
	return children
}
func (c *Case) String() string {
	s := "CASE"
	for _, b := range c.Branches {
		s += " WHEN " + b.Cond.String() + " THEN " + b.Result.String()
	}
	if c.Else != nil {
		s += " ELSE " + c.Else.String()
	}
	return s + " END"
}

// Coalesce evaluates args left to right and returns the first non-null
// result (spec.md §4.1 "null-safe" exceptions list).
type Coalesce struct {
	Args []Expression
	Typ  sql.DType
}

func NewCoalesce(typ sql.DType, args ...Expression) *Coalesce { return &Coalesce{Args: args, Typ: typ} }

func (c *Coalesce) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	for _, a := range c.Args {
		v, err := a.Eval(ctx, row)
		if err != nil {
			return sql.NullValue, err
		}
		if !v.IsNull() {
			return v, nil
		}
	}
	return sql.NullValue, nil
}

func (c *Coalesce) Type() sql.DType        { return c.Typ }
func (c *Coalesce) Children() []Expression { return c.Args }
func (c *Coalesce) String() string {
	s := "COALESCE("
	for i, a := range c.Args {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	return s + ")"
}

// Between compiles BETWEEN/NOT BETWEEN with standard 3-way null
// propagation: Value BETWEEN Lo AND Hi is Lo <= Value AND Value <= Hi,
// each comparison subject to the same nulling rules as `<=` (spec.md
// §4.6).
type Between struct {
	Value, Lo, Hi Expression
	Negate        bool
}

func NewBetween(value, lo, hi Expression, negate bool) *Between {
	return &Between{Value: value, Lo: lo, Hi: hi, Negate: negate}
}

func (b *Between) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	v, err := b.Value.Eval(ctx, row)
	if err != nil {
		return sql.NullValue, err
	}
	lo, err := b.Lo.Eval(ctx, row)
	if err != nil {
		return sql.NullValue, err
	}
	hi, err := b.Hi.Eval(ctx, row)
	if err != nil {
		return sql.NullValue, err
	}
	if v.IsNull() || lo.IsNull() || hi.IsNull() {
		return sql.NullValue, nil
	}
	in := sql.Compare(lo, v) <= 0 && sql.Compare(v, hi) <= 0
	if b.Negate {
		in = !in
	}
	return sql.NewBoolean(in), nil
}

func (b *Between) Type() sql.DType        { return sql.Boolean }
func (b *Between) Children() []Expression { return []Expression{b.Value, b.Lo, b.Hi} }
func (b *Between) String() string {
	if b.Negate {
		return b.Value.String() + " NOT BETWEEN " + b.Lo.String() + " AND " + b.Hi.String()
	}
	return b.Value.String() + " BETWEEN " + b.Lo.String() + " AND " + b.Hi.String()
}

// In compiles IN/NOTIN over a fixed argument list, a List/Set literal, or
// a SubqueryList adapter (spec.md §4.6 "Set containment").
type In struct {
	Value Expression
	List  Expression // evaluates to a List/Set Value
	Negate bool
}

func NewIn(value, list Expression, negate bool) *In { return &In{value, list, negate} }

func (in *In) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	v, err := in.Value.Eval(ctx, row)
	if err != nil {
		return sql.NullValue, err
	}
	if v.IsNull() {
		return sql.NullValue, nil
	}
	l, err := in.List.Eval(ctx, row)
	if err != nil {
		return sql.NullValue, err
	}
	if l.IsNull() {
		return sql.NullValue, nil
	}
	found := false
	sawNull := false
	for _, e := range l.AsList() {
		if e.IsNull() {
			sawNull = true
			continue
		}
		if sql.Equal(v, e) {
			found = true
			break
		}
	}
	if !found && sawNull {
		// unknown rather than false, matching standard IN-with-NULL semantics
		return sql.NullValue, nil
	}
	if in.Negate {
		found = !found
	}
	return sql.NewBoolean(found), nil
}

func (in *In) Type() sql.DType        { return sql.Boolean }
func (in *In) Children() []Expression { return []Expression{in.Value, in.List} }
func (in *In) String() string {
	op := "IN"
	if in.Negate {
		op = "NOT IN"
	}
	return in.Value.String() + " " + op + " " + in.List.String()
}
