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

package sql

// ConstraintExpr is the minimal surface a compiled constraint expression
// needs: evaluate to a Boolean against a candidate row. sql/expression's
// Expression type satisfies this; it is named separately here so the sql
// package (which predates sql/expression in the dependency order) does not
// import it.
type ConstraintExpr interface {
	Eval(ctx *Context, row Row) (Value, error)
	String() string
}

// Constraint is a named boolean rule a row must satisfy to be inserted or
// updated. NOT NULL constraints carry Column for error messages (spec.md
// §3 "Constraint").
type Constraint struct {
	Name   string
	Column string // non-empty for a NOT NULL constraint
	Expr   ConstraintExpr
	Kind   string // "not null", "check", "unique", "primary key", "foreign key"
}

// DataSource is a lazy row producer: either a materialized vector (the
// common case for an in-memory table) or a thunk evaluated at scan time
// (used by CTE/subquery-derived tables). The thunk is not memoized: it
// runs again on every Rows call, i.e. every time the table is scanned.
type DataSource struct {
	rows  []Row
	thunk func(ctx *Context) ([]Row, error)
}

func StaticRows(rows []Row) DataSource { return DataSource{rows: rows} }

func LazyRows(thunk func(ctx *Context) ([]Row, error)) DataSource {
	return DataSource{thunk: thunk}
}

func (d DataSource) Rows(ctx *Context) ([]Row, error) {
	if d.thunk != nil {
		return d.thunk(ctx)
	}
	return d.rows, nil
}

// Table is the catalog's unit of named, typed, constrained row storage.
// Column order in Columns is the table's declared order; Wildcard, when
// non-nil, is the (possibly smaller) set of names `*` expands to for this
// table (spec.md §3 "wildcard column").
type Table struct {
	Name        string
	Columns     []*Column
	Wildcard    []string
	Constraints []Constraint
	Source      DataSource

	// Parent is set for a subquery/CTE-derived table so correlated
	// references inside it can resolve an outer row (spec.md §9).
	Parent *Table

	// Joins maps an alias introduced by JOIN to the row-fragment table it
	// stands for, so compiled column references of the form alias.col
	// resolve within a join tree (spec.md §3 "Table").
	Joins map[string]*Table
}

// NewTable builds a Table whose wildcard defaults to all declared columns.
func NewTable(name string, columns []*Column) *Table {
	return &Table{Name: name, Columns: columns}
}

func (t *Table) Column(name string) (*Column, int) {
	for i, c := range t.Columns {
		if c.Name == name {
			return c, i
		}
	}
	return nil, -1
}

// WildcardColumns returns the columns `t.*` expands to, in order.
func (t *Table) WildcardColumns() []*Column {
	if t.Wildcard == nil {
		return t.Columns
	}
	out := make([]*Column, 0, len(t.Wildcard))
	for _, name := range t.Wildcard {
		if c, _ := t.Column(name); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// Append adds a row to the table's backing vector after the caller has
// already run type coercion and constraint checks (plan/insert.go).
// Appending to a table with a lazy (thunk-backed) source is a
// programming error: only base tables are insert targets.
func (t *Table) Append(row Row) {
	t.Source.rows = append(t.Source.rows, row)
}

// UpdateAt overwrites the row at position i of the table's backing vector.
func (t *Table) UpdateAt(i int, row Row) {
	t.Source.rows[i] = row
}
