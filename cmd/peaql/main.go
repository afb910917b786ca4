// Copyright 2020-2022 Dolthub, Inc.
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

package main

import (
	"fmt"
	"strings"

	"github.com/peaql/peaql"
	"github.com/peaql/peaql/sql"
)

// This is an example of how to embed peaql directly in a Go program.
// Running it prints:
//
// name | email | created_at
// Jane Deo | janedeo@gmail.com | 2022-11-01T12:00:00Z
// Jane Doe | jane@doe.com | 2022-11-01T12:00:00Z
// John Doe | john@doe.com | 2022-11-01T12:00:00Z
// John Doe | johnalt@doe.com | 2022-11-01T12:00:00Z
//
// There is no server or client here: peaql is an in-process library, not
// a MySQL-wire-protocol service (spec.md §1 excludes network protocols).

var tableName = "mytable"

func main() {
	engine, ctx, err := peaql.NewContext(map[string]peaql.TableModel{
		tableName: testTableModel(),
	})
	if err != nil {
		panic(err)
	}

	schema, rows, err := engine.Execute(ctx, fmt.Sprintf(
		"SELECT name, email, created_at FROM %s ORDER BY name, email", tableName))
	if err != nil {
		panic(err)
	}

	printTable(schema, rows)
}

func testTableModel() peaql.TableModel {
	return peaql.TableModel{
		Name: tableName,
		Columns: []peaql.ColumnModel{
			{Name: "name", Type: "string"},
			{Name: "email", Type: "string"},
			{Name: "created_at", Type: "datetime"},
		},
		Constraints: []peaql.ConstraintModel{
			{Name: "name_not_null", Column: "name", Expr: "name IS NOT NULL"},
		},
		Data: []map[string]interface{}{
			{"name": "Jane Deo", "email": "janedeo@gmail.com", "created_at": "2022-11-01T12:00:00Z"},
			{"name": "Jane Doe", "email": "jane@doe.com", "created_at": "2022-11-01T12:00:00Z"},
			{"name": "John Doe", "email": "john@doe.com", "created_at": "2022-11-01T12:00:00Z"},
			{"name": "John Doe", "email": "johnalt@doe.com", "created_at": "2022-11-01T12:00:00Z"},
		},
	}
}

func printTable(schema sql.Schema, rows []sql.Row) {
	fmt.Println(strings.Join(schema.Names(), " | "))
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = renderCell(v)
		}
		fmt.Println(strings.Join(cells, " | "))
	}
}

func renderCell(v sql.Value) string {
	if v.IsNull() {
		return "NULL"
	}
	switch v.Type {
	case sql.String:
		return v.AsString()
	case sql.Integer:
		return fmt.Sprint(v.AsInteger())
	case sql.DateTime:
		return v.AsDateTime().Instant.UTC().Format("2006-01-02T15:04:05Z")
	default:
		return fmt.Sprint(v.Raw())
	}
}
