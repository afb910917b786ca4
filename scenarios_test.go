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

// TestScenarioAggregatedJoinOrderByLimit mirrors spec.md §8 scenario 1: a
// two-table equi-join feeding a GROUP BY/ORDER BY/LIMIT. With a non-empty
// left side this exercises the hash-join fast path's right-side key
// resolution (sql/plan/join.go's extractEquiKeys/hashJoin).
func TestScenarioAggregatedJoinOrderByLimit(t *testing.T) {
	require := require.New(t)

	engine, ctx, err := peaql.NewContext(map[string]peaql.TableModel{
		"playlist": {
			Name:    "playlist",
			Columns: []peaql.ColumnModel{{Name: "playlist_id", Type: "integer"}, {Name: "name", Type: "string"}},
			Data: []map[string]interface{}{
				{"playlist_id": float64(1), "name": "Music"},
				{"playlist_id": float64(2), "name": "TV Shows"},
			},
		},
		"playlist_track": {
			Name:    "playlist_track",
			Columns: []peaql.ColumnModel{{Name: "playlist_id", Type: "integer"}, {Name: "track_id", Type: "integer"}},
			Data: []map[string]interface{}{
				{"playlist_id": float64(1), "track_id": float64(10)},
				{"playlist_id": float64(1), "track_id": float64(11)},
				{"playlist_id": float64(1), "track_id": float64(12)},
				{"playlist_id": float64(2), "track_id": float64(20)},
			},
		},
	})
	require.NoError(err)

	_, rows, err := engine.Execute(ctx,
		`SELECT playlist.name, count(pt.track_id) FROM playlist
		   JOIN playlist_track pt ON pt.playlist_id = playlist.playlist_id
		 GROUP BY playlist.name ORDER BY count(pt.track_id) DESC LIMIT 10`)
	require.NoError(err)
	require.Len(rows, 2)
	require.Equal("Music", rows[0][0].AsString())
	require.Equal(int64(3), rows[0][1].AsInteger())
	require.Equal("TV Shows", rows[1][0].AsString())
	require.Equal(int64(1), rows[1][1].AsInteger())
}

// TestScenarioCountDistinctThreeValues mirrors spec.md §8 scenario 2.
func TestScenarioCountDistinctThreeValues(t *testing.T) {
	require := require.New(t)

	engine, ctx, err := peaql.NewContext(map[string]peaql.TableModel{
		"sales": {
			Name: "sales",
			Columns: []peaql.ColumnModel{
				{Name: "region", Type: "string"},
				{Name: "product", Type: "string"},
				{Name: "amount", Type: "integer"},
			},
			Data: []map[string]interface{}{
				{"region": "N", "product": "A", "amount": float64(100)},
				{"region": "N", "product": "B", "amount": float64(200)},
				{"region": "S", "product": "A", "amount": float64(150)},
				{"region": "S", "product": "C", "amount": float64(300)},
				{"region": "E", "product": "B", "amount": float64(250)},
				{"region": "E", "product": "C", "amount": float64(100)},
				{"region": "W", "product": "A", "amount": float64(50)},
				{"region": "W", "product": "B", "amount": float64(300)},
			},
		},
	})
	require.NoError(err)

	_, rows, err := engine.Execute(ctx, "SELECT count(distinct product) FROM sales")
	require.NoError(err)
	require.Len(rows, 1)
	require.Equal(int64(3), rows[0][0].AsInteger())
}

// TestScenarioWindowRangeCurrentRowToUnboundedFollowing mirrors spec.md §8
// scenario 3: an inline PARTITION BY/ORDER BY/RANGE window with group_concat.
func TestScenarioWindowRangeCurrentRowToUnboundedFollowing(t *testing.T) {
	require := require.New(t)

	engine, ctx, err := peaql.NewContext(map[string]peaql.TableModel{
		"t1": {
			Name: "t1",
			Columns: []peaql.ColumnModel{
				{Name: "a", Type: "integer"},
				{Name: "b", Type: "string"},
				{Name: "c", Type: "string"},
			},
			Data: []map[string]interface{}{
				{"a": float64(1), "b": "A", "c": "one"},
				{"a": float64(2), "b": "B", "c": "two"},
				{"a": float64(3), "b": "C", "c": "three"},
				{"a": float64(4), "b": "D", "c": "one"},
				{"a": float64(5), "b": "E", "c": "two"},
				{"a": float64(6), "b": "F", "c": "three"},
				{"a": float64(7), "b": "G", "c": "one"},
			},
		},
	})
	require.NoError(err)

	_, rows, err := engine.Execute(ctx,
		`SELECT c, a, b, group_concat(b, '.') OVER (
		   PARTITION BY c ORDER BY a RANGE BETWEEN CURRENT ROW AND UNBOUNDED FOLLOWING
		 ) FROM t1 ORDER BY c, a`)
	require.NoError(err)

	type want struct {
		c, concat string
		a         int64
	}
	expected := []want{
		{"one", "A.D.G", 1},
		{"one", "D.G", 4},
		{"one", "G", 7},
		{"three", "C.F", 3},
		{"three", "F", 6},
		{"two", "B.E", 2},
		{"two", "E", 5},
	}
	require.Len(rows, len(expected))
	for i, w := range expected {
		require.Equal(w.c, rows[i][0].AsString(), "row %d", i)
		require.Equal(w.a, rows[i][1].AsInteger(), "row %d", i)
		require.Equal(w.concat, rows[i][3].AsString(), "row %d", i)
	}
}

// TestScenarioDDLInsertSelectChain mirrors spec.md §8 scenario 4.
func TestScenarioDDLInsertSelectChain(t *testing.T) {
	require := require.New(t)

	engine := peaql.New(sql.NewCatalog(), nil)
	ctx := sql.NewEmptyContext()

	_, _, err := engine.Execute(ctx, "CREATE TABLE t1(a STRING, b INTEGER)")
	require.NoError(err)
	_, _, err = engine.Execute(ctx, "INSERT INTO t1 VALUES('peter',1),('pan',2)")
	require.NoError(err)

	schema, rows, err := engine.Execute(ctx, "SELECT * FROM t1")
	require.NoError(err)
	require.Equal([]string{"a", "b"}, schema.Names())
	require.Equal(sql.String, schema[0].Type)
	require.Equal(sql.Integer, schema[1].Type)
	require.Len(rows, 2)
	require.Equal("peter", rows[0][0].AsString())
	require.Equal(int64(1), rows[0][1].AsInteger())
	require.Equal("pan", rows[1][0].AsString())
	require.Equal(int64(2), rows[1][1].AsInteger())
}

// TestScenarioCheckConstraintViolation mirrors spec.md §8 scenario 5.
func TestScenarioCheckConstraintViolation(t *testing.T) {
	require := require.New(t)

	engine := peaql.New(sql.NewCatalog(), nil)
	ctx := sql.NewEmptyContext()

	_, _, err := engine.Execute(ctx, "CREATE TABLE t1(a STRING, b INTEGER, CHECK(b > 100))")
	require.NoError(err)

	_, _, err = engine.Execute(ctx, "INSERT INTO t1(a,b) VALUES('a',55)")
	require.Error(err)
	require.Contains(err.Error(), "Failing row contains")
	require.Contains(err.Error(), "violates")
}

// TestScenarioRangeOffsetRejectedOnTextColumn mirrors spec.md §8 scenario 6:
// a RANGE frame with a numeric offset over a non-numeric ORDER BY column is
// a compile-time error, not a runtime one.
func TestScenarioRangeOffsetRejectedOnTextColumn(t *testing.T) {
	require := require.New(t)

	engine, ctx, err := peaql.NewContext(map[string]peaql.TableModel{
		"sales": {
			Name:    "sales",
			Columns: []peaql.ColumnModel{{Name: "product", Type: "string"}, {Name: "revenue", Type: "integer"}},
			Data:    []map[string]interface{}{{"product": "a", "revenue": float64(10)}},
		},
	})
	require.NoError(err)

	_, _, err = engine.Execute(ctx,
		"SELECT SUM(revenue) OVER (ORDER BY product RANGE BETWEEN 10 PRECEDING AND CURRENT ROW) FROM sales")
	require.Error(err)
	require.Contains(err.Error(), "RANGE with offset PRECEDING/FOLLOWING is not supported for column type")
}
