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

package peaql_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/peaql/peaql"
	"github.com/peaql/peaql/sql"
)

func TestLoadTableModelCoercesAndValidates(t *testing.T) {
	require := require.New(t)

	ctx := sql.NewEmptyContext()
	catalog := sql.NewCatalog()

	model := peaql.TableModel{
		Name: "people",
		Columns: []peaql.ColumnModel{
			{Name: "name", Type: "string"},
			{Name: "age", Type: "integer"},
		},
		Constraints: []peaql.ConstraintModel{
			{Name: "age_not_null", Column: "age", Expr: "age IS NOT NULL"},
		},
		Data: []map[string]interface{}{
			{"name": "Ada", "age": float64(36)},
		},
	}

	table, err := peaql.LoadTableModel(ctx, catalog, sql.DefaultSettings(), model)
	require.NoError(err)
	require.Equal("people", table.Name)

	rows, err := table.Source.Rows(ctx)
	require.NoError(err)
	require.Len(rows, 1)
	require.Equal("Ada", rows[0][0].AsString())
	require.Equal(int64(36), rows[0][1].AsInteger())
}

func TestLoadTableModelRejectsConstraintViolation(t *testing.T) {
	require := require.New(t)

	ctx := sql.NewEmptyContext()
	catalog := sql.NewCatalog()

	model := peaql.TableModel{
		Name: "people",
		Columns: []peaql.ColumnModel{
			{Name: "age", Type: "integer"},
		},
		Constraints: []peaql.ConstraintModel{
			{Name: "age_not_null", Column: "age", Expr: "age IS NOT NULL"},
		},
		Data: []map[string]interface{}{
			{"age": nil},
		},
	}

	_, err := peaql.LoadTableModel(ctx, catalog, sql.DefaultSettings(), model)
	require.Error(err)
}

func TestTableModelJSONRoundTrip(t *testing.T) {
	require := require.New(t)

	model := peaql.TableModel{
		Name:    "t",
		Columns: []peaql.ColumnModel{{Name: "a", Type: "integer"}},
		Data:    []map[string]interface{}{{"a": float64(1)}},
	}

	data, err := model.ToJSON()
	require.NoError(err)

	back, err := peaql.TableModelFromJSON(data)
	require.NoError(err)
	require.Equal(model.Name, back.Name)
	require.Equal(model.Columns, back.Columns)
}
