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

func newTestEngine(t *testing.T) (*peaql.Engine, *sql.Context) {
	t.Helper()
	engine, ctx, err := peaql.NewContext(map[string]peaql.TableModel{
		"widgets": {
			Name: "widgets",
			Columns: []peaql.ColumnModel{
				{Name: "id", Type: "integer"},
				{Name: "name", Type: "string"},
			},
			Data: []map[string]interface{}{
				{"id": float64(1), "name": "left widget"},
				{"id": float64(2), "name": "right widget"},
			},
		},
	})
	require.NoError(t, err)
	return engine, ctx
}

func TestEngineExecuteSelect(t *testing.T) {
	require := require.New(t)
	engine, ctx := newTestEngine(t)

	schema, rows, err := engine.Execute(ctx, "SELECT id, name FROM widgets ORDER BY id")
	require.NoError(err)
	require.Equal([]string{"id", "name"}, schema.Names())
	require.Len(rows, 2)
	require.Equal(int64(1), rows[0][0].AsInteger())
	require.Equal("left widget", rows[0][1].AsString())
}

func TestEngineExecuteCachesPreparedStatement(t *testing.T) {
	require := require.New(t)
	engine, ctx := newTestEngine(t)

	query := "SELECT id FROM widgets WHERE id = 1"
	first, err := engine.Prepare(query)
	require.NoError(err)

	second, err := engine.Prepare(query)
	require.NoError(err)
	require.Same(first, second)

	_, rows, err := engine.Execute(ctx, query)
	require.NoError(err)
	require.Len(rows, 1)
}

func TestEngineExecuteWithPositionalParams(t *testing.T) {
	require := require.New(t)
	engine, ctx := newTestEngine(t)

	_, rows, err := engine.Execute(ctx, "SELECT name FROM widgets WHERE id = ?", sql.NewInteger(2))
	require.NoError(err)
	require.Len(rows, 1)
	require.Equal("right widget", rows[0][0].AsString())
}

func TestEngineCreateTableAndInsert(t *testing.T) {
	require := require.New(t)
	engine := peaql.New(sql.NewCatalog(), nil)
	ctx := sql.NewEmptyContext()

	_, _, err := engine.Execute(ctx, "CREATE TABLE gadgets (id INT NOT NULL, label TEXT)")
	require.NoError(err)

	_, _, err = engine.Execute(ctx, "INSERT INTO gadgets (id, label) VALUES (1, 'a'), (2, 'b')")
	require.NoError(err)

	_, rows, err := engine.Execute(ctx, "SELECT id, label FROM gadgets ORDER BY id")
	require.NoError(err)
	require.Len(rows, 2)
	require.Equal("a", rows[0][1].AsString())
	require.Equal("b", rows[1][1].AsString())
}

func TestEngineReadOnlyRejectsDDLAndDML(t *testing.T) {
	require := require.New(t)
	engine := peaql.New(sql.NewCatalog(), &peaql.Config{IsReadOnly: true, Settings: sql.DefaultSettings()})
	ctx := sql.NewEmptyContext()

	_, _, err := engine.Execute(ctx, "CREATE TABLE gadgets (id INT)")
	require.Error(err)
}

func TestEngineInsertRejectsConstraintViolation(t *testing.T) {
	require := require.New(t)
	engine := peaql.New(sql.NewCatalog(), nil)
	ctx := sql.NewEmptyContext()

	_, _, err := engine.Execute(ctx, "CREATE TABLE gadgets (id INT NOT NULL)")
	require.NoError(err)

	_, _, err = engine.Execute(ctx, "INSERT INTO gadgets (id) VALUES (NULL)")
	require.Error(err)
}
