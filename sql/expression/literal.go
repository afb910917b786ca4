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

import (
	"fmt"

	"github.com/peaql/peaql/sql"
)

// Literal is a compiled constant: a value known at compile time, possibly
// produced by folding a pure operator over other constants (spec.md §4.3
// step 4).
type Literal struct {
	Value sql.Value
}

// NewLiteral wraps a compile-time-known value.
func NewLiteral(v sql.Value) *Literal { return &Literal{Value: v} }

func (l *Literal) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) { return l.Value, nil }
func (l *Literal) Type() sql.DType                                      { return l.Value.Type }
func (l *Literal) Children() []Expression                               { return nil }
func (l *Literal) String() string {
	if l.Value.IsNull() {
		return "NULL"
	}
	return fmt.Sprintf("%v", l.Value.Raw())
}

// GetField reads a base column out of the row at a compile-time-resolved
// index, spec.md §3 "Column": "(row) -> Value plus a declared DType".
type GetField struct {
	Source string
	Name   string
	Index  int
	Typ    sql.DType
}

func NewGetField(source, name string, index int, typ sql.DType) *GetField {
	return &GetField{Source: source, Name: name, Index: index, Typ: typ}
}

func (f *GetField) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	if f.Index < 0 {
		if v, ok := ctx.ResolveOuter(f.Source, f.Name); ok {
			return v, nil
		}
		return sql.NullValue, sql.ErrUnknownColumn.New(f.Name)
	}
	if f.Index >= len(row) {
		return sql.NullValue, sql.ErrInternal.New("column index out of range: " + f.Name)
	}
	return row[f.Index], nil
}

func (f *GetField) Type() sql.DType        { return f.Typ }
func (f *GetField) Children() []Expression { return nil }
func (f *GetField) String() string {
	if f.Source != "" {
		return f.Source + "." + f.Name
	}
	return f.Name
}

// Attribute resolves a named sub-field of a structured parent value
// (DateTime.year, Duration.days, ...), spec.md §4.3 step 5 / GLOSSARY
// "Structure".
type Attribute struct {
	Parent Expression
	Field  string
	Typ    sql.DType
}

func NewAttribute(parent Expression, field string, typ sql.DType) *Attribute {
	return &Attribute{Parent: parent, Field: field, Typ: typ}
}

func (a *Attribute) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	v, err := a.Parent.Eval(ctx, row)
	if err != nil {
		return sql.NullValue, err
	}
	if v.IsNull() {
		return sql.NullValue, nil
	}
	return evalStructAttr(v, a.Field)
}

func evalStructAttr(v sql.Value, field string) (sql.Value, error) {
	switch v.Type {
	case sql.DateTime:
		dt := v.AsDateTime()
		t := dt.Instant
		if dt.Zone != nil {
			t = t.In(dt.Zone)
		}
		switch field {
		case "year":
			return sql.NewInteger(int64(t.Year())), nil
		case "month":
			return sql.NewInteger(int64(t.Month())), nil
		case "day":
			return sql.NewInteger(int64(t.Day())), nil
		case "hour":
			return sql.NewInteger(int64(t.Hour())), nil
		case "minute":
			return sql.NewInteger(int64(t.Minute())), nil
		case "second":
			return sql.NewInteger(int64(t.Second())), nil
		case "quarter":
			return sql.NewInteger(int64((int(t.Month())-1)/3 + 1)), nil
		case "weekday":
			return sql.NewInteger(int64(t.Weekday())), nil
		case "yearmonth":
			return sql.NewInteger(int64(t.Year())*100 + int64(t.Month())), nil
		}
	case sql.Duration:
		d := v.AsDuration()
		switch field {
		case "years":
			return sql.NewInteger(int64(d.Years)), nil
		case "months":
			return sql.NewInteger(int64(d.Months)), nil
		case "days":
			return sql.NewInteger(int64(d.Days)), nil
		case "hours":
			return sql.NewInteger(int64(d.Clock.Hours())), nil
		case "minutes":
			return sql.NewInteger(int64(d.Clock.Minutes())), nil
		case "seconds":
			return sql.NewInteger(int64(d.Clock.Seconds())), nil
		}
	}
	return sql.NullValue, sql.ErrUnknownColumn.New(field)
}

func (a *Attribute) Type() sql.DType        { return a.Typ }
func (a *Attribute) Children() []Expression { return []Expression{a.Parent} }
func (a *Attribute) String() string         { return a.Parent.String() + "." + a.Field }
func (a *Attribute) WithChildren(children ...Expression) (Expression, error) {
	return NewAttribute(children[0], a.Field, a.Typ), nil
}
