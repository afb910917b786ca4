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

// Distinct keeps the first occurrence of each row, by the whole row's
// semantic equality (spec.md §4.4 "SELECT DISTINCT").
type Distinct struct {
	Child Node
}

func NewDistinct(child Node) *Distinct { return &Distinct{Child: child} }

func (d *Distinct) Schema() sql.Schema { return d.Child.Schema() }
func (d *Distinct) Children() []Node   { return []Node{d.Child} }
func (d *Distinct) String() string     { return "Distinct" }

func (d *Distinct) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	in, err := rows(ctx, d.Child)
	if err != nil {
		return nil, err
	}
	seen := map[uint64][]sql.Row{}
	out := make([]sql.Row, 0, len(in))
	for _, r := range in {
		h := argHash([]sql.Value(r))
		if keysEqual2D(rowsAsValueSlices(seen[h]), []sql.Value(r)) {
			continue
		}
		seen[h] = append(seen[h], r)
		out = append(out, r)
	}
	return sql.RowsToRowIter(out...), nil
}

// rowsAsValueSlices adapts a hash bucket of already-accepted rows to the
// [][]sql.Value shape keysEqual2D compares against, so Distinct reuses the
// same collision-safe equality check as GroupBy's DISTINCT aggregate dedup.
func rowsAsValueSlices(rows []sql.Row) [][]sql.Value {
	out := make([][]sql.Value, len(rows))
	for i, r := range rows {
		out[i] = []sql.Value(r)
	}
	return out
}

// Limit caps the row count, applied after Offset skips leading rows,
// spec.md §4.4 "LIMIT/OFFSET".
type Limit struct {
	Child  Node
	Count  int64
	HasCount bool
	Offset int64
}

func NewLimit(child Node, count int64, hasCount bool, offset int64) *Limit {
	return &Limit{Child: child, Count: count, HasCount: hasCount, Offset: offset}
}

func (l *Limit) Schema() sql.Schema { return l.Child.Schema() }
func (l *Limit) Children() []Node   { return []Node{l.Child} }
func (l *Limit) String() string     { return "Limit" }

func (l *Limit) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	in, err := rows(ctx, l.Child)
	if err != nil {
		return nil, err
	}
	start := l.Offset
	if start < 0 {
		start = 0
	}
	if start > int64(len(in)) {
		start = int64(len(in))
	}
	end := int64(len(in))
	if l.HasCount {
		end = start + l.Count
		if end > int64(len(in)) {
			end = int64(len(in))
		}
		if end < start {
			end = start
		}
	}
	return sql.RowsToRowIter(in[start:end]...), nil
}
