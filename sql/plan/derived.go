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

// NewDerivedTable turns a compiled plan Node into a *sql.Table so a
// CTE or a FROM (subquery) alias can be scanned like any base table.
// The node is evaluated lazily via sql.LazyRows, once each time the
// table is scanned; results are not cached (spec.md §9 describes
// CTEs and derived tables as sharing the base-table Scan path once
// lowered this way).
func NewDerivedTable(name string, columns []*sql.Column, node Node) *sql.Table {
	t := sql.NewTable(name, columns)
	t.Source = sql.LazyRows(func(ctx *sql.Context) ([]sql.Row, error) {
		return rows(ctx, node)
	})
	return t
}
