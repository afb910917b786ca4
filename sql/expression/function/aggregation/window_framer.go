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

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/peaql/peaql/sql"
)

// ComputeBaseFrame computes a window's [Start, End) bound before EXCLUDE is
// applied, for a partition of length partitionLen and the row at index,
// implementing spec.md §4.5's three frame kinds.
//
//   - ROWS(p, f): window = P[max(0, i-p) .. min(|P|, i+f+1)).
//   - GROUPS(p, f): buckets partition rows by ORDER BY tuple equality;
//     window = flatten of buckets [max(0, g-p) .. min(G, g+f+1)).
//   - RANGE(p, f): requires exactly one ORDER BY key; window = every row
//     whose order value falls within [v-p, v+f] (direction-adjusted for
//     DESC), per spec.md §4.5.
//
// buckets is the partition's GROUPS bucketing (only read when frame.Type is
// GroupsFrame); bucketOfIndex maps index to its bucket number. orderValue
// returns the single RANGE order key's value for a partition-local row
// index (only read when frame.Type is RangeFrame); desc is that key's
// direction.
func ComputeBaseFrame(
	frame sql.WindowFrame,
	partitionLen, index int,
	buckets []sql.WindowInterval,
	bucketOfIndex int,
	orderValue func(i int) sql.Value,
	desc bool,
) sql.WindowInterval {
	switch frame.Type {
	case sql.GroupsFrame:
		g := bucketOfIndex
		startBucket := g - frame.Preceding
		if frame.Preceding >= sql.Unbounded || startBucket < 0 {
			startBucket = 0
		}
		endBucket := g + frame.Following + 1
		if frame.Following >= sql.Unbounded || endBucket > len(buckets) {
			endBucket = len(buckets)
		}
		if len(buckets) == 0 {
			return sql.WindowInterval{}
		}
		return sql.WindowInterval{Start: buckets[startBucket].Start, End: buckets[endBucket-1].End}
	case sql.RangeFrame:
		v := orderValue(index)
		lo, hi := rangeBounds(v, frame, desc)
		start, end := index, index+1
		for start > 0 && inRange(orderValue(start-1), lo, hi, desc) {
			start--
		}
		for end < partitionLen && inRange(orderValue(end), lo, hi, desc) {
			end++
		}
		return sql.WindowInterval{Start: start, End: end}
	default: // RowsFrame
		start := index - frame.Preceding
		if frame.Preceding >= sql.Unbounded || start < 0 {
			start = 0
		}
		end := index + frame.Following + 1
		if frame.Following >= sql.Unbounded || end > partitionLen {
			end = partitionLen
		}
		return sql.WindowInterval{Start: start, End: end}
	}
}

// rangeBounds returns the inclusive [lo, hi] of order-key values a RANGE
// frame admits for reference value v, honoring direction: ASC widens
// downward by Preceding and upward by Following; DESC is mirrored (spec.md
// §4.5 "RANGE(p, f)").
func rangeBounds(v sql.Value, frame sql.WindowFrame, desc bool) (sql.Value, sql.Value) {
	p, f := float64(frame.Preceding), float64(frame.Following)
	if desc {
		p, f = f, p
	}
	return offsetValue(v, -p), offsetValue(v, f)
}

func offsetValue(v sql.Value, delta float64) sql.Value {
	if delta == 0 {
		return v
	}
	switch v.Type {
	case sql.Integer:
		return sql.NewInteger(v.AsInteger() + int64(delta))
	case sql.Real:
		return sql.NewReal(v.AsReal() + delta)
	case sql.Decimal:
		return sql.NewDecimalValue(v.AsDecimal().Add(decimal.NewFromFloat(delta)))
	case sql.DateTime:
		d := v.AsDateTime()
		return sql.NewDateTime(d.Instant.Add(time.Duration(delta*24)*time.Hour), d.Zone)
	}
	return v
}

func inRange(x, lo, hi sql.Value, desc bool) bool {
	if desc {
		return sql.Compare(x, hi) <= 0 && sql.Compare(x, lo) >= 0
	}
	return sql.Compare(x, lo) >= 0 && sql.Compare(x, hi) <= 0
}

// FrameIndices applies EXCLUDE to a base interval, returning the
// (possibly non-contiguous) partition-local indices an aggregator should
// be updated with for the row at index, per spec.md §4.5 "EXCLUDE is
// applied last". groupStart/groupEnd bound the current row's ORDER BY
// equivalence class within the partition.
func FrameIndices(base sql.WindowInterval, exclude sql.ExcludeMode, index, groupStart, groupEnd int) []int {
	switch exclude {
	case sql.ExcludeCurrentRow:
		return rangeMinusCond(base, func(i int) bool { return i == index })
	case sql.ExcludeGroup:
		return rangeMinusCond(base, func(i int) bool { return i >= groupStart && i < groupEnd })
	case sql.ExcludeTies:
		return rangeMinusCond(base, func(i int) bool { return i != index && i >= groupStart && i < groupEnd })
	default: // sql.ExcludeNone
		return rangeMinusCond(base, func(i int) bool { return false })
	}
}

func rangeMinusCond(base sql.WindowInterval, drop func(i int) bool) []int {
	out := make([]int, 0, base.Len())
	for i := base.Start; i < base.End; i++ {
		if !drop(i) {
			out = append(out, i)
		}
	}
	return out
}
