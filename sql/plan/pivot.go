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

import (
	"fmt"
	"sort"

	"github.com/peaql/peaql/sql"
)

// Pivot transforms a grouped result under axes (A, B): the unique values
// of B become new columns, one per remaining "other" column, and rows are
// re-keyed by A with B's value selecting which cell to fill (spec.md §4.3
// "Pivot"). B must be a GROUP BY key of the upstream plan, enforced at
// compile time, not here.
type Pivot struct {
	Child  Node
	AxisA  int
	AxisB  int
	Others []int // indices of the remaining, non-axis columns
	schema sql.Schema
}

// NewPivot builds a Pivot node. The output schema cannot be known until
// the distinct B values are seen at execution time, so Schema() reports
// the node's static shape (axis A plus a placeholder) and RowIter
// recomputes the concrete schema on each run. After a run, Schema()
// reports the schema that RowIter recorded.
func NewPivot(child Node, axisA, axisB int, others []int) *Pivot {
	return &Pivot{Child: child, AxisA: axisA, AxisB: axisB, Others: others}
}

func (p *Pivot) Schema() sql.Schema {
	if p.schema != nil {
		return p.schema
	}
	in := p.Child.Schema()
	return sql.Schema{in[p.AxisA]}
}

func (p *Pivot) Children() []Node { return []Node{p.Child} }
func (p *Pivot) String() string   { return "Pivot" }

func (p *Pivot) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	in, err := rows(ctx, p.Child)
	if err != nil {
		return nil, err
	}
	inSchema := p.Child.Schema()

	// Unique B values, first-seen order, then sorted for stable column
	// naming.
	var bVals []sql.Value
	seen := map[uint64][][]sql.Value{}
	for _, r := range in {
		key := []sql.Value{r[p.AxisB]}
		h := argHash(key)
		if keysEqual2D(seen[h], key) {
			continue
		}
		seen[h] = append(seen[h], key)
		bVals = append(bVals, r[p.AxisB])
	}
	sort.Slice(bVals, func(i, j int) bool { return sql.Compare(bVals[i], bVals[j]) < 0 })

	schema := sql.Schema{inSchema[p.AxisA]}
	for _, bv := range bVals {
		for _, oi := range p.Others {
			schema = append(schema, &sql.Column{
				Name: renderPivotLabel(bv) + "_" + inSchema[oi].Name,
				Type: inSchema[oi].Type,
			})
		}
	}
	p.schema = schema

	// Group remaining rows by axis A, preserving first-seen order, then
	// sort by A as spec.md §4.3 requires ("Rows are sorted by axis a
	// before emission").
	type bucket struct {
		aVal sql.Value
		row  sql.Row
	}
	aIndex := map[uint64][]int{}
	var buckets []*bucket
	for _, r := range in {
		aKey := []sql.Value{r[p.AxisA]}
		ah := argHash(aKey)
		bi := -1
		for _, cand := range aIndex[ah] {
			if sql.Equal(buckets[cand].aVal, r[p.AxisA]) {
				bi = cand
				break
			}
		}
		if bi == -1 {
			row := make(sql.Row, len(schema))
			row[0] = r[p.AxisA]
			for i := 1; i < len(row); i++ {
				row[i] = sql.NullValue
			}
			buckets = append(buckets, &bucket{aVal: r[p.AxisA], row: row})
			bi = len(buckets) - 1
			aIndex[ah] = append(aIndex[ah], bi)
		}
		bPos := -1
		for i, bv := range bVals {
			if sql.Equal(bv, r[p.AxisB]) {
				bPos = i
				break
			}
		}
		for oi, col := range p.Others {
			buckets[bi].row[1+bPos*len(p.Others)+oi] = r[col]
		}
	}
	sort.SliceStable(buckets, func(i, j int) bool { return sql.Compare(buckets[i].aVal, buckets[j].aVal) < 0 })

	out := make([]sql.Row, len(buckets))
	for i, b := range buckets {
		out[i] = b.row
	}
	return sql.RowsToRowIter(out...), nil
}

func renderPivotLabel(v sql.Value) string {
	if v.IsNull() {
		return "null"
	}
	switch v.Type {
	case sql.String:
		return v.AsString()
	default:
		return fmt.Sprint(v.Raw())
	}
}
