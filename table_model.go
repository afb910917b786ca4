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

package peaql

import (
	"encoding/json"
	"fmt"

	"github.com/peaql/peaql/sql"
	"github.com/peaql/peaql/sql/compiler"
	"github.com/peaql/peaql/sql/expression"
)

// ColumnModel is one entry of a TableModel's column list, spec.md §6.3
// "columns: [{name, type}]" — type is a cast-registry name (see
// compiler.TypeByName), not a CREATE TABLE keyword.
type ColumnModel struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ConstraintModel is one entry of a TableModel's constraint list, spec.md
// §6.3 "constraints: [{name, column?, expr}]". Column is omitted for a
// constraint not tied to a single column (a table-level CHECK).
type ConstraintModel struct {
	Name   string `json:"name"`
	Column string `json:"column,omitempty"`
	Expr   string `json:"expr"`
}

// TableModel is the JSON-serializable shape of a sql.Table, spec.md §6.3.
// Data rows are JSON objects keyed by column name; values are coerced
// (via the same cast-function registry INSERT uses) and validated against
// every constraint on load.
type TableModel struct {
	Name        string                   `json:"name"`
	Columns     []ColumnModel            `json:"columns"`
	Constraints []ConstraintModel        `json:"constraints,omitempty"`
	Data        []map[string]interface{} `json:"data,omitempty"`
}

// TableModelFromJSON unmarshals a persisted table model, spec.md §6.3.
func TableModelFromJSON(data []byte) (TableModel, error) {
	var m TableModel
	if err := json.Unmarshal(data, &m); err != nil {
		return TableModel{}, sql.ErrParse.New("table model", err.Error())
	}
	return m, nil
}

// ToJSON marshals m back to its persisted form.
func (m TableModel) ToJSON() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// TableModelFromTable renders an existing sql.Table back to its JSON
// model, the inverse of LoadTableModel; constraint expressions round-trip
// through their String() rendering rather than the original query text,
// since a loaded sql.Constraint keeps only its compiled expression.Expression.
func TableModelFromTable(ctx *sql.Context, t *sql.Table) (TableModel, error) {
	m := TableModel{Name: t.Name}
	for _, col := range t.Columns {
		_, castName, ok := compiler.CastNameForType(col.Type)
		if !ok {
			return TableModel{}, sql.ErrInternal.New(fmt.Sprintf("column %q has no JSON-model type name", col.Name))
		}
		m.Columns = append(m.Columns, ColumnModel{Name: col.Name, Type: castName})
	}
	for _, c := range t.Constraints {
		m.Constraints = append(m.Constraints, ConstraintModel{Name: c.Name, Column: c.Column, Expr: c.Expr.String()})
	}
	rows, err := t.Source.Rows(ctx)
	if err != nil {
		return TableModel{}, err
	}
	for _, row := range rows {
		obj := make(map[string]interface{}, len(t.Columns))
		for i, col := range t.Columns {
			obj[col.Name] = valueToJSON(row[i])
		}
		m.Data = append(m.Data, obj)
	}
	return m, nil
}

func valueToJSON(v sql.Value) interface{} {
	if v.IsNull() {
		return nil
	}
	switch v.Type {
	case sql.Integer:
		return v.AsInteger()
	case sql.Real:
		return v.AsReal()
	case sql.Decimal:
		return v.AsDecimal().String()
	case sql.Boolean:
		return v.AsBoolean()
	case sql.String:
		return v.AsString()
	default:
		return fmt.Sprint(v.Raw())
	}
}

// LoadTableModel builds a *sql.Table from m: columns and constraints are
// resolved against catalog's function registry, each constraint's Expr
// text is re-parsed and compiled against the table's own schema (spec.md
// §6.3 "expr is re-parsed and compiled on load"), and every Data row is
// coerced column-by-column through the matching cast function before
// every constraint is checked, exactly as plan.Insert checks a live
// INSERT (spec.md §6.3 "Loading validates each row against declared
// types (with coercion) and every constraint").
func LoadTableModel(ctx *sql.Context, catalog *sql.Catalog, settings sql.Settings, m TableModel) (*sql.Table, error) {
	columns := make([]*sql.Column, len(m.Columns))
	for i, cm := range m.Columns {
		typ, _, ok := compiler.TypeByName(cm.Type)
		if !ok {
			return nil, sql.ErrCompilation.New(fmt.Sprintf("unknown column type %q", cm.Type))
		}
		columns[i] = &sql.Column{Name: cm.Name, Type: typ, Index: i, Nullable: true}
	}
	table := sql.NewTable(m.Name, columns)

	schema := make(sql.Schema, len(columns))
	for i, col := range columns {
		schema[i] = &sql.Column{Name: col.Name, Source: m.Name, Type: col.Type, Index: i, Nullable: true}
	}

	constraints := make([]sql.Constraint, len(m.Constraints))
	for i, cm := range m.Constraints {
		expr, err := compiler.CompileStandaloneExpr(settings, catalog, schema, cm.Expr)
		if err != nil {
			return nil, err
		}
		constraints[i] = sql.Constraint{Name: cm.Name, Column: cm.Column, Expr: expr, Kind: "check"}
	}
	table.Constraints = constraints

	rows := make([]sql.Row, 0, len(m.Data))
	for _, obj := range m.Data {
		row := make(sql.Row, len(columns))
		for i, col := range columns {
			v, err := coerceJSONValue(ctx, catalog, obj[col.Name], col.Type)
			if err != nil {
				return nil, err
			}
			row[i] = v
		}
		for _, c := range constraints {
			v, err := c.Expr.Eval(ctx, row)
			if err != nil {
				return nil, err
			}
			if v.IsNull() || !v.AsBoolean() {
				return nil, sql.ErrDataConstraint.New(renderRowForError(row), table.Name, c.Kind, c.Name)
			}
		}
		rows = append(rows, row)
	}
	table.Source = sql.StaticRows(rows)

	return table, nil
}

// coerceJSONValue converts a decoded JSON scalar to typ, routing through
// the same registered cast function plan.Insert/plan.Update use so a
// table model's row data tolerates the same ambient coercions an INSERT
// statement would (e.g. the string "2024-01-01" into a DateTime column).
func coerceJSONValue(ctx *sql.Context, catalog *sql.Catalog, raw interface{}, typ sql.DType) (sql.Value, error) {
	var natural sql.Value
	switch rv := raw.(type) {
	case nil:
		return sql.NullValue, nil
	case bool:
		natural = sql.NewBoolean(rv)
	case float64:
		natural = sql.NewReal(rv)
	case string:
		natural = sql.NewStringValue(rv)
	default:
		return sql.NullValue, sql.ErrCompilation.New(fmt.Sprintf("unsupported JSON value %v for column type", raw))
	}
	if natural.Type == typ {
		return natural, nil
	}
	_, castName, ok := compiler.CastNameForType(typ)
	if !ok || castName == "" {
		return natural, nil
	}
	sig, err := catalog.Functions().Resolve(castName, []sql.DType{natural.Type})
	if err != nil {
		return natural, nil
	}
	call := expression.NewCall(catalog.Functions(), castName, sig.Result, expression.NewLiteral(natural))
	return call.Eval(ctx, nil)
}

func renderRowForError(row sql.Row) string {
	parts := make([]string, len(row))
	for i, v := range row {
		parts[i] = fmt.Sprint(valueToJSON(v))
	}
	out := "("
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out + ")"
}

// NewContext builds a ready-to-query Engine and Context over a fresh
// Catalog seeded with tables, each loaded from its JSON model, per
// SPEC_FULL.md §4.7's createDatabase(tables) convenience constructor. A
// bare *sql.Context cannot carry the loaded tables on its own (the
// Catalog is a separate, engine-owned object, spec.md §4.2), so this
// returns the Engine alongside it; callers run queries with
// engine.Execute(ctx, query, params...).
func NewContext(tables map[string]TableModel) (*Engine, *sql.Context, error) {
	ctx := sql.NewEmptyContext()
	catalog := sql.NewCatalog()
	for name, m := range tables {
		if m.Name == "" {
			m.Name = name
		}
		table, err := LoadTableModel(ctx, catalog, sql.DefaultSettings(), m)
		if err != nil {
			return nil, nil, err
		}
		catalog.WithTables(table)
	}
	return New(catalog, nil), ctx, nil
}
