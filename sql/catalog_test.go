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

package sql_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/peaql/peaql/sql"
)

func TestCatalogWithTables(t *testing.T) {
	require := require.New(t)

	c := sql.NewCatalog()
	a := sql.NewTable("a", []*sql.Column{{Name: "x", Type: sql.Integer}})
	b := sql.NewTable("b", []*sql.Column{{Name: "y", Type: sql.String}})
	c.WithTables(a, b)

	got, ok := c.Table("a")
	require.True(ok)
	require.Equal(a, got)

	_, ok = c.Table("missing")
	require.False(ok)
}

func TestCatalogCreateTableIfNotExists(t *testing.T) {
	require := require.New(t)

	c := sql.NewCatalog()
	a := sql.NewTable("a", []*sql.Column{{Name: "x", Type: sql.Integer}})
	require.NoError(c.CreateTable(a, false))

	err := c.CreateTable(a, false)
	require.Error(err)

	require.NoError(c.CreateTable(a, true))
}

func TestCatalogDefaultTable(t *testing.T) {
	require := require.New(t)

	c := sql.NewCatalog()
	_, ok := c.DefaultTable()
	require.False(ok)

	a := sql.NewTable("dual", nil)
	c.WithTables(a).WithDefaultTable("dual")

	got, ok := c.DefaultTable()
	require.True(ok)
	require.Equal(a, got)
}

func TestCatalogShallowCopyIsolatesNewTables(t *testing.T) {
	require := require.New(t)

	c := sql.NewCatalog()
	a := sql.NewTable("a", []*sql.Column{{Name: "x", Type: sql.Integer}})
	c.WithTables(a)

	cp := c.ShallowCopy()
	b := sql.NewTable("b", []*sql.Column{{Name: "y", Type: sql.Integer}})
	require.NoError(cp.CreateTable(b, false))

	_, ok := c.Table("b")
	require.False(ok)
	_, ok = cp.Table("a")
	require.True(ok)
}

func TestTableColumn(t *testing.T) {
	require := require.New(t)

	tbl := sql.NewTable("t", []*sql.Column{
		{Name: "a", Type: sql.Integer, Index: 0},
		{Name: "b", Type: sql.String, Index: 1},
	})

	col, idx := tbl.Column("b")
	require.NotNil(col)
	require.Equal(1, idx)

	col, idx = tbl.Column("missing")
	require.Nil(col)
	require.Equal(-1, idx)
}

func TestTableAppendAndUpdateAt(t *testing.T) {
	require := require.New(t)

	tbl := sql.NewTable("t", []*sql.Column{{Name: "a", Type: sql.Integer}})
	tbl.Source = sql.StaticRows(nil)

	tbl.Append(sql.NewRow(sql.NewInteger(1)))
	tbl.Append(sql.NewRow(sql.NewInteger(2)))

	rows, err := tbl.Source.Rows(sql.NewEmptyContext())
	require.NoError(err)
	require.Len(rows, 2)

	tbl.UpdateAt(0, sql.NewRow(sql.NewInteger(100)))
	rows, err = tbl.Source.Rows(sql.NewEmptyContext())
	require.NoError(err)
	require.Equal(int64(100), rows[0][0].AsInteger())
}
