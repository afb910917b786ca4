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
	"github.com/mitchellh/hashstructure/v2"

	"github.com/peaql/peaql/sql"
	"github.com/peaql/peaql/sql/expression"
)

// AggCall is one compiled aggregate call site: an Aggregator handle
// (allocated once at compile time, per spec.md §9 "Aggregator handle
// allocated once at compile time, addressed by slot index rather than
// mutable node fields") plus its argument expressions and optional
// DISTINCT/FILTER modifiers.
type AggCall struct {
	Aggregator sql.Aggregator
	Args       []expression.Expression
	Distinct   bool
	Filter     expression.Expression // nil when no FILTER (WHERE ...) clause
}

type groupState struct {
	keyValues []sql.Value
	buffers   []sql.AggregatorBuffer
	seen      []map[uint64][][]sql.Value // per-AggCall DISTINCT dedup set, only populated when Distinct
}

// GroupBy partitions Child's rows by Keys and finalizes one AggCall
// buffer per group, producing a row of [key values..., aggregate
// results...] per group, in first-seen group order (spec.md §4.4
// "Grouping and aggregation").
type GroupBy struct {
	Child  Node
	Keys   []expression.Expression
	Aggs   []AggCall
	schema sql.Schema
}

func NewGroupBy(child Node, keys []expression.Expression, aggs []AggCall, schema sql.Schema) *GroupBy {
	return &GroupBy{Child: child, Keys: keys, Aggs: aggs, schema: schema}
}

func (g *GroupBy) Schema() sql.Schema { return g.schema }
func (g *GroupBy) Children() []Node   { return []Node{g.Child} }
func (g *GroupBy) String() string     { return "GroupBy" }

func (g *GroupBy) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	in, err := rows(ctx, g.Child)
	if err != nil {
		return nil, err
	}

	groups := map[uint64][]*groupState{}
	var order []*groupState

	newState := func(keyValues []sql.Value) *groupState {
		s := &groupState{keyValues: keyValues, buffers: make([]sql.AggregatorBuffer, len(g.Aggs)), seen: make([]map[uint64][][]sql.Value, len(g.Aggs))}
		for i, a := range g.Aggs {
			s.buffers[i] = a.Aggregator.NewBuffer()
			if a.Distinct {
				s.seen[i] = map[uint64][][]sql.Value{}
			}
		}
		return s
	}

	for _, r := range in {
		if err := ctx.CheckCancelled(); err != nil {
			return nil, err
		}
		keyValues := make([]sql.Value, len(g.Keys))
		for i, k := range g.Keys {
			v, err := k.Eval(ctx, r)
			if err != nil {
				return nil, err
			}
			keyValues[i] = v
		}
		h := groupHash(keyValues)
		bucket := groups[h]
		st := findGroupState(bucket, keyValues)
		if st == nil {
			st = newState(keyValues)
			groups[h] = append(bucket, st)
			order = append(order, st)
		}
		for i, a := range g.Aggs {
			if a.Filter != nil {
				fv, err := a.Filter.Eval(ctx, r)
				if err != nil {
					return nil, err
				}
				if fv.IsNull() || !fv.AsBoolean() {
					continue
				}
			}
			args := make([]sql.Value, len(a.Args))
			for j, e := range a.Args {
				v, err := e.Eval(ctx, r)
				if err != nil {
					return nil, err
				}
				args[j] = v
			}
			if a.Distinct {
				ah := argHash(args)
				if keysEqual2D(st.seen[i][ah], args) {
					continue
				}
				st.seen[i][ah] = append(st.seen[i][ah], args)
			}
			if err := st.buffers[i].Update(ctx, args); err != nil {
				return nil, err
			}
		}
	}

	// An aggregate query with no GROUP BY keys over zero input rows still
	// produces exactly one row (count=0, sum=NULL, ...), standard SQL
	// behavior spec.md §4.4 relies on.
	if len(order) == 0 && len(g.Keys) == 0 && len(g.Aggs) > 0 {
		st := newState(nil)
		order = append(order, st)
	}

	out := make([]sql.Row, 0, len(order))
	for _, st := range order {
		if err := ctx.CheckCancelled(); err != nil {
			return nil, err
		}
		row := make(sql.Row, 0, len(st.keyValues)+len(g.Aggs))
		row = append(row, st.keyValues...)
		for _, buf := range st.buffers {
			v, err := buf.Eval(ctx)
			if err != nil {
				return nil, err
			}
			row = append(row, v)
		}
		for _, buf := range st.buffers {
			buf.Dispose()
		}
		out = append(out, row)
	}
	return sql.RowsToRowIter(out...), nil
}

// findGroupState scans a hash bucket for a state whose key tuple is
// Value-equal to keyValues (spec.md §4.4 "by the Value-equality relation"),
// so that two distinct keys landing in the same bucket by hash collision
// are still kept as separate groups rather than silently merged.
func findGroupState(bucket []*groupState, keyValues []sql.Value) *groupState {
	for _, st := range bucket {
		if keysEqual(st.keyValues, keyValues) {
			return st
		}
	}
	return nil
}

// keysEqual2D reports whether args Value-equals any tuple already recorded
// in a DISTINCT bucket, the same collision-safe check findGroupState applies
// to GROUP BY keys.
func keysEqual2D(bucket [][]sql.Value, args []sql.Value) bool {
	for _, seen := range bucket {
		if keysEqual(seen, args) {
			return true
		}
	}
	return false
}

func keysEqual(a, b []sql.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !sql.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// groupHash/argHash canonicalize numeric sub-types before hashing so that
// e.g. Integer(2) and Decimal(2) land in the same bucket, matching
// sql.Equal's cross-numeric-type equality.
func groupHash(vs []sql.Value) uint64 { return argHash(vs) }

func argHash(vs []sql.Value) uint64 {
	raw := make([]interface{}, len(vs))
	for i, v := range vs {
		if v.IsNull() {
			raw[i] = nil
			continue
		}
		if v.Type.IsNumber() {
			raw[i] = canonical(v)
			continue
		}
		raw[i] = v.Raw()
	}
	h, _ := hashstructure.Hash(raw, hashstructure.FormatV2, nil)
	return h
}
