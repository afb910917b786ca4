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

package plan

import "github.com/peaql/peaql/sql"

// Scan reads a catalog table's rows under an optional alias, spec.md §4.3
// step 1 "resolve FROM".
type Scan struct {
	Table *sql.Table
	Alias string
	schema sql.Schema
}

// NewScan builds a Scan whose schema's Source is the alias (or the
// table's own name if unaliased), so later column references of the form
// alias.col resolve against it.
func NewScan(t *sql.Table, alias string) *Scan {
	source := alias
	if source == "" {
		source = t.Name
	}
	schema := make(sql.Schema, len(t.Columns))
	for i, c := range t.Columns {
		schema[i] = &sql.Column{Name: c.Name, Source: source, Type: c.Type, Index: i, Nullable: c.Nullable}
	}
	return &Scan{Table: t, Alias: alias, schema: schema}
}

func (s *Scan) Schema() sql.Schema { return s.schema }

func (s *Scan) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	if err := ctx.CheckCancelled(); err != nil {
		return nil, err
	}
	rs, err := s.Table.Source.Rows(ctx)
	if err != nil {
		return nil, err
	}
	return sql.RowsToRowIter(rs...), nil
}

func (s *Scan) Children() []Node { return nil }
func (s *Scan) String() string {
	if s.Alias != "" && s.Alias != s.Table.Name {
		return "Scan(" + s.Table.Name + " AS " + s.Alias + ")"
	}
	return "Scan(" + s.Table.Name + ")"
}

// Values is a literal row source, used for a FROM-less SELECT and for the
// VALUES clause of INSERT.
type Values struct {
	schema sql.Schema
	Rows_  []sql.Row
}

func NewValues(schema sql.Schema, rows []sql.Row) *Values {
	return &Values{schema: schema, Rows_: rows}
}

func (v *Values) Schema() sql.Schema { return v.schema }
func (v *Values) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	return sql.RowsToRowIter(v.Rows_...), nil
}
func (v *Values) Children() []Node { return nil }
func (v *Values) String() string   { return "Values" }
