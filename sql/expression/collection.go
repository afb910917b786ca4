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
	"strconv"

	"github.com/peaql/peaql/sql"
)

// Collection compiles an array literal `[...]` or tuple literal `(...)`.
type Collection struct {
	Elems  []Expression
	Elem   sql.DType
}

func NewCollection(elem sql.DType, elems ...Expression) *Collection {
	return &Collection{Elems: elems, Elem: elem}
}

func (c *Collection) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	vals := make([]sql.Value, len(c.Elems))
	for i, e := range c.Elems {
		v, err := e.Eval(ctx, row)
		if err != nil {
			return sql.NullValue, err
		}
		vals[i] = v
	}
	return sql.NewList(vals), nil
}

func (c *Collection) Type() sql.DType        { return sql.List }
func (c *Collection) Children() []Expression { return c.Elems }
func (c *Collection) String() string {
	s := "["
	for i, e := range c.Elems {
		if i > 0 {
			s += ", "
		}
		s += e.String()
	}
	return s + "]"
}

// Subscript compiles `expr[ "key" ]` / `expr[ i ]` list/tuple indexing.
// Integer indices are 0-based; out-of-range or non-integer-on-a-list
// indexing yields NULL rather than an error (spec.md §4.6's general rule
// that evaluation-time mismatches yield NULL, not errors).
type Subscript struct {
	Target Expression
	Index  Expression
	Typ    sql.DType
}

func NewSubscript(target, index Expression, typ sql.DType) *Subscript {
	return &Subscript{Target: target, Index: index, Typ: typ}
}

func (s *Subscript) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	t, err := s.Target.Eval(ctx, row)
	if err != nil {
		return sql.NullValue, err
	}
	i, err := s.Index.Eval(ctx, row)
	if err != nil {
		return sql.NullValue, err
	}
	if t.IsNull() || i.IsNull() || t.Type != sql.List {
		return sql.NullValue, nil
	}
	list := t.AsList()
	var idx int
	switch i.Type {
	case sql.Integer:
		idx = int(i.AsInteger())
	case sql.String:
		n, err := strconv.Atoi(i.AsString())
		if err != nil {
			return sql.NullValue, nil
		}
		idx = n
	default:
		return sql.NullValue, nil
	}
	if idx < 0 || idx >= len(list) {
		return sql.NullValue, nil
	}
	return list[idx], nil
}

func (s *Subscript) Type() sql.DType        { return s.Typ }
func (s *Subscript) Children() []Expression { return []Expression{s.Target, s.Index} }
func (s *Subscript) String() string         { return s.Target.String() + "[" + s.Index.String() + "]" }
