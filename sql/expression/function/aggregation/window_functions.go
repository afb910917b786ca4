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

package aggregation

import "github.com/peaql/peaql/sql"

// windowOnlyBuffer is the common shell for the functions of spec.md §4.6
// "Window-only": they ignore Update (the window driver never streams rows
// into them the way a regular aggregator is) and instead answer purely
// from the WindowState the driver installs before Eval (spec.md §9
// "Window state injection").
type windowOnlyBuffer struct {
	state sql.WindowState
	eval  func(s sql.WindowState) (sql.Value, error)
}

func (b *windowOnlyBuffer) InstallWindowState(s sql.WindowState) { b.state = s }
func (b *windowOnlyBuffer) Update(ctx *sql.Context, args []sql.Value) error { return nil }
func (b *windowOnlyBuffer) Eval(ctx *sql.Context) (sql.Value, error)        { return b.eval(b.state) }
func (b *windowOnlyBuffer) Dispose()                                       {}

type windowOnlyAggregator struct {
	eval func(s sql.WindowState) (sql.Value, error)
}

func (a windowOnlyAggregator) NewBuffer() sql.AggregatorBuffer {
	return &windowOnlyBuffer{eval: a.eval}
}

func NewRowNumber() sql.Aggregator {
	return windowOnlyAggregator{eval: func(s sql.WindowState) (sql.Value, error) {
		return sql.NewInteger(int64(s.Index-s.Frame.Start) + 1), nil
	}}
}

// rank/dense_rank ignore the frame (it is always the whole ordered
// partition up to UNBOUNDED FOLLOWING for ranking functions) and instead
// compare the current row's order key against its predecessors in the full
// Partition via Equal, per standard SQL ranking semantics.
func NewRank(orderValue func(row sql.Row) sql.Value) sql.Aggregator {
	return windowOnlyAggregator{eval: func(s sql.WindowState) (sql.Value, error) {
		v := orderValue(s.Partition[s.Index])
		rank := 1
		for i := 0; i < s.Index; i++ {
			if !sql.Equal(orderValue(s.Partition[i]), v) {
				rank = i + 2
			}
		}
		return sql.NewInteger(int64(rank)), nil
	}}
}

func NewDenseRank(orderValue func(row sql.Row) sql.Value) sql.Aggregator {
	return windowOnlyAggregator{eval: func(s sql.WindowState) (sql.Value, error) {
		distinct := 0
		var last sql.Value
		has := false
		for i := 0; i <= s.Index; i++ {
			ov := orderValue(s.Partition[i])
			if !has || !sql.Equal(ov, last) {
				distinct++
				last, has = ov, true
			}
		}
		return sql.NewInteger(int64(distinct)), nil
	}}
}

// NewFirstValue/NewLastValue/NewNthValue read the already-computed
// column value at a fixed slot of the frame-relative row, supplied by
// sql/plan/window.go as a closure over the target row's compiled expression
// (valueAt), since these are evaluated against each row of the frame, not
// a single streamed argument (spec.md §4.6 "first_value, last_value,
// nth_value(x, n)").
func NewFirstValue(valueAt func(i int) (sql.Value, error)) sql.Aggregator {
	return windowOnlyAggregator{eval: func(s sql.WindowState) (sql.Value, error) {
		if s.Frame.Len() == 0 {
			return sql.NullValue, nil
		}
		return valueAt(s.Frame.Start)
	}}
}

func NewLastValue(valueAt func(i int) (sql.Value, error)) sql.Aggregator {
	return windowOnlyAggregator{eval: func(s sql.WindowState) (sql.Value, error) {
		if s.Frame.Len() == 0 {
			return sql.NullValue, nil
		}
		return valueAt(s.Frame.End - 1)
	}}
}

func NewNthValue(valueAt func(i int) (sql.Value, error), n int) sql.Aggregator {
	return windowOnlyAggregator{eval: func(s sql.WindowState) (sql.Value, error) {
		idx := s.Frame.Start + n - 1
		if n < 1 || idx < s.Frame.Start || idx >= s.Frame.End {
			return sql.NullValue, nil
		}
		return valueAt(idx)
	}}
}

// lead/lag read the partition-relative row at an offset from the current
// row, independent of the frame, returning defaultVal when the offset runs
// off either end of the partition (spec.md §4.6 "lead(x, off=1,
// default=null)", "lag(x, off=1, default=null)").
func NewLead(valueAt func(i int) (sql.Value, error), offset int, defaultVal sql.Value) sql.Aggregator {
	return windowOnlyAggregator{eval: func(s sql.WindowState) (sql.Value, error) {
		idx := s.Index + offset
		if idx < 0 || idx >= len(s.Partition) {
			return defaultVal, nil
		}
		return valueAt(idx)
	}}
}

func NewLag(valueAt func(i int) (sql.Value, error), offset int, defaultVal sql.Value) sql.Aggregator {
	return NewLead(valueAt, -offset, defaultVal)
}
