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
	"sort"

	"github.com/peaql/peaql/sql"
	"github.com/peaql/peaql/sql/expression"
	"github.com/peaql/peaql/sql/expression/function/aggregation"
)

// WindowCall is one compiled OVER(...) call site, spec.md §4.3 step 8 /
// §4.5-§4.6.
type WindowCall struct {
	FuncName    string
	Args        []expression.Expression
	Distinct    bool
	Filter      expression.Expression
	PartitionBy []expression.Expression
	OrderBy     []SortKey
	Frame       sql.WindowFrame

	// Aggregator is pre-built for ordinary (registry-resolved) aggregate
	// functions used as window functions (sum/avg/count/min/max/...);
	// nil for the window-only functions below, which evalSpecialWindow
	// constructs fresh for each row since they close over its partition
	// (spec.md §9 "Window state injection").
	Aggregator sql.Aggregator

	// NthN/Offset/Default parameterize nth_value/lead/lag.
	NthN    int
	Offset  int
	Default expression.Expression
}

// Window evaluates each WindowCall over Child's rows and appends one
// result column per call, spec.md §4.3 step 8.
type Window struct {
	Child  Node
	Calls  []WindowCall
	schema sql.Schema
}

func NewWindow(child Node, calls []WindowCall, schema sql.Schema) *Window {
	return &Window{Child: child, Calls: calls, schema: schema}
}

func (w *Window) Schema() sql.Schema { return w.schema }
func (w *Window) Children() []Node   { return []Node{w.Child} }
func (w *Window) String() string     { return "Window" }

func (w *Window) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	in, err := rows(ctx, w.Child)
	if err != nil {
		return nil, err
	}
	nBase := len(w.Child.Schema())
	out := make([]sql.Row, len(in))
	for i, r := range in {
		row := make(sql.Row, nBase+len(w.Calls))
		copy(row, r)
		out[i] = row
	}

	for ci, call := range w.Calls {
		if err := ctx.CheckCancelled(); err != nil {
			return nil, err
		}
		results, err := w.evalCall(ctx, in, call)
		if err != nil {
			return nil, err
		}
		for i, v := range results {
			out[i][nBase+ci] = v
		}
	}
	return sql.RowsToRowIter(out...), nil
}

// evalCall computes call's result for every row of in, partitioning,
// ordering, and frame-cutting per spec.md §4.5.
func (w *Window) evalCall(ctx *sql.Context, in []sql.Row, call WindowCall) ([]sql.Value, error) {
	results := make([]sql.Value, len(in))

	partitions := partitionRows(ctx, in, call.PartitionBy)
	for _, origIdx := range partitions {
		partition := make([]sql.Row, len(origIdx))
		for i, oi := range origIdx {
			partition[i] = in[oi]
		}
		order := sortPartition(ctx, partition, call.OrderBy)
		ordered := make([]sql.Row, len(partition))
		for i, p := range order {
			ordered[i] = partition[p]
		}

		var buckets []sql.WindowInterval
		bucketOf := make([]int, len(ordered))
		if call.Frame.Type == sql.GroupsFrame {
			buckets, bucketOf = bucketize(ctx, ordered, call.OrderBy)
		}

		orderValue := func(i int) sql.Value {
			if len(call.OrderBy) == 0 {
				return sql.NullValue
			}
			v, _ := call.OrderBy[0].Expr.Eval(ctx, ordered[i])
			return v
		}
		desc := len(call.OrderBy) > 0 && call.OrderBy[0].Desc

		for j := range ordered {
			groupStart, groupEnd := equivalenceClass(ctx, ordered, call.OrderBy, j)
			base := aggregation.ComputeBaseFrame(call.Frame, len(ordered), j, buckets, bucketOf[j], orderValue, desc)

			var v sql.Value
			var err error
			if call.Aggregator != nil {
				v, err = w.evalRegularWindow(ctx, ordered, call, base, groupStart, groupEnd, j)
			} else {
				v, err = w.evalSpecialWindow(ctx, ordered, call, base, j)
			}
			if err != nil {
				return nil, err
			}
			results[origIdx[order[j]]] = v
		}
	}
	return results, nil
}

func (w *Window) evalRegularWindow(ctx *sql.Context, partition []sql.Row, call WindowCall, base sql.WindowInterval, groupStart, groupEnd, index int) (sql.Value, error) {
	indices := aggregation.FrameIndices(base, call.Frame.Exclude, index, groupStart, groupEnd)
	buf := call.Aggregator.NewBuffer()
	defer buf.Dispose()
	for _, idx := range indices {
		r := partition[idx]
		if call.Filter != nil {
			fv, err := call.Filter.Eval(ctx, r)
			if err != nil {
				return sql.NullValue, err
			}
			if fv.IsNull() || !fv.AsBoolean() {
				continue
			}
		}
		args := make([]sql.Value, len(call.Args))
		for i, e := range call.Args {
			v, err := e.Eval(ctx, r)
			if err != nil {
				return sql.NullValue, err
			}
			args[i] = v
		}
		if err := buf.Update(ctx, args); err != nil {
			return sql.NullValue, err
		}
	}
	return buf.Eval(ctx)
}

func (w *Window) evalSpecialWindow(ctx *sql.Context, partition []sql.Row, call WindowCall, base sql.WindowInterval, index int) (sql.Value, error) {
	valueAt := func(i int) (sql.Value, error) {
		if len(call.Args) == 0 {
			return sql.NullValue, nil
		}
		return call.Args[0].Eval(ctx, partition[i])
	}
	orderValue := func(row sql.Row) sql.Value {
		if len(call.OrderBy) == 0 {
			return sql.NullValue
		}
		v, _ := call.OrderBy[0].Expr.Eval(ctx, row)
		return v
	}
	defaultVal := sql.NullValue
	if call.Default != nil && len(partition) > 0 {
		v, err := call.Default.Eval(ctx, partition[0])
		if err != nil {
			return sql.NullValue, err
		}
		defaultVal = v
	}

	var agg sql.Aggregator
	switch call.FuncName {
	case "row_number":
		agg = aggregation.NewRowNumber()
	case "rank":
		agg = aggregation.NewRank(orderValue)
	case "dense_rank":
		agg = aggregation.NewDenseRank(orderValue)
	case "first_value":
		agg = aggregation.NewFirstValue(valueAt)
	case "last_value":
		agg = aggregation.NewLastValue(valueAt)
	case "nth_value":
		agg = aggregation.NewNthValue(valueAt, call.NthN)
	case "lead":
		agg = aggregation.NewLead(valueAt, call.Offset, defaultVal)
	case "lag":
		agg = aggregation.NewLag(valueAt, call.Offset, defaultVal)
	default:
		return sql.NullValue, sql.ErrInternal.New("unknown window-only function " + call.FuncName)
	}

	buf := agg.NewBuffer()
	defer buf.Dispose()
	if wa, ok := buf.(sql.WindowAware); ok {
		wa.InstallWindowState(sql.WindowState{Partition: partition, Frame: base, Index: index})
	}
	return buf.Eval(ctx)
}

// partitionRows groups row indices by PartitionBy key equality,
// preserving first-seen partition order.
func partitionRows(ctx *sql.Context, in []sql.Row, keys []expression.Expression) [][]int {
	if len(keys) == 0 {
		all := make([]int, len(in))
		for i := range in {
			all[i] = i
		}
		return [][]int{all}
	}
	type partitionBucket struct {
		keyValues []sql.Value
		indices   []int
	}
	order := []*partitionBucket{}
	groups := map[uint64][]*partitionBucket{}
	for i, r := range in {
		vs := make([]sql.Value, len(keys))
		for j, k := range keys {
			v, _ := k.Eval(ctx, r)
			vs[j] = v
		}
		h := argHash(vs)
		bucket := groups[h]
		var pb *partitionBucket
		for _, cand := range bucket {
			if keysEqual(cand.keyValues, vs) {
				pb = cand
				break
			}
		}
		if pb == nil {
			pb = &partitionBucket{keyValues: vs}
			groups[h] = append(bucket, pb)
			order = append(order, pb)
		}
		pb.indices = append(pb.indices, i)
	}
	out := make([][]int, len(order))
	for i, pb := range order {
		out[i] = pb.indices
	}
	return out
}

// sortPartition returns the permutation of partition indices in ORDER BY
// order, stable.
func sortPartition(ctx *sql.Context, partition []sql.Row, keys []SortKey) []int {
	idx := make([]int, len(partition))
	for i := range idx {
		idx[i] = i
	}
	if len(keys) == 0 {
		return idx
	}
	keyVals := make([][]sql.Value, len(partition))
	for i, r := range partition {
		vs := make([]sql.Value, len(keys))
		for j, k := range keys {
			v, _ := k.Expr.Eval(ctx, r)
			vs[j] = v
		}
		keyVals[i] = vs
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ia, ib := idx[a], idx[b]
		for j, k := range keys {
			va, vb := keyVals[ia][j], keyVals[ib][j]
			if sql.Equal(va, vb) {
				continue
			}
			return sql.Less(va, vb, k.Desc, k.NullsFirst)
		}
		return false
	})
	return idx
}

// bucketize partitions an already-ordered sequence into GROUPS buckets
// (contiguous runs of ORDER BY tuple equality), per spec.md §4.5.
func bucketize(ctx *sql.Context, ordered []sql.Row, keys []SortKey) ([]sql.WindowInterval, []int) {
	bucketOf := make([]int, len(ordered))
	var buckets []sql.WindowInterval
	start := 0
	for i := 1; i <= len(ordered); i++ {
		if i < len(ordered) && tupleEqual(ctx, ordered[i-1], ordered[i], keys) {
			continue
		}
		buckets = append(buckets, sql.WindowInterval{Start: start, End: i})
		for j := start; j < i; j++ {
			bucketOf[j] = len(buckets) - 1
		}
		start = i
	}
	return buckets, bucketOf
}

func tupleEqual(ctx *sql.Context, a, b sql.Row, keys []SortKey) bool {
	for _, k := range keys {
		va, _ := k.Expr.Eval(ctx, a)
		vb, _ := k.Expr.Eval(ctx, b)
		if !sql.Equal(va, vb) {
			return false
		}
	}
	return true
}

// equivalenceClass returns the [start, end) bounds of index's ORDER BY
// tuple equivalence class within ordered, used by EXCLUDE GROUP/TIES.
func equivalenceClass(ctx *sql.Context, ordered []sql.Row, keys []SortKey, index int) (int, int) {
	start, end := index, index+1
	for start > 0 && tupleEqual(ctx, ordered[start-1], ordered[index], keys) {
		start--
	}
	for end < len(ordered) && tupleEqual(ctx, ordered[end], ordered[index], keys) {
		end++
	}
	return start, end
}
