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

// CreateTable registers a new table, built ahead of time by the compiler
// with its column list, constraints, and (for CREATE TABLE ... AS query)
// a Source plan whose resulting rows seed the table (spec.md §4.3
// "CREATE TABLE"). IfNotExists turns an existing-name collision into a
// no-op rather than ErrTableExists.
type CreateTable struct {
	Catalog     *sql.Catalog
	Table       *sql.Table
	Source      Node // nil unless CREATE TABLE ... AS query
	IfNotExists bool
}

func NewCreateTable(catalog *sql.Catalog, table *sql.Table, source Node, ifNotExists bool) *CreateTable {
	return &CreateTable{Catalog: catalog, Table: table, Source: source, IfNotExists: ifNotExists}
}

func (c *CreateTable) Schema() sql.Schema { return affectedSchema }
func (c *CreateTable) Children() []Node {
	if c.Source == nil {
		return nil
	}
	return []Node{c.Source}
}
func (c *CreateTable) String() string { return "CreateTable" }

func (c *CreateTable) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	var n int64
	if c.Source != nil {
		seed, err := rows(ctx, c.Source)
		if err != nil {
			return nil, err
		}
		c.Table.Source = sql.StaticRows(seed)
		n = int64(len(seed))
	}
	if err := c.Catalog.CreateTable(c.Table, c.IfNotExists); err != nil {
		return nil, err
	}
	return sql.RowsToRowIter(sql.Row{sql.NewInteger(n)}), nil
}
