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

package sql

import "math"

// FrameType selects how a WindowFrame's bounds are interpreted, per
// spec.md §4.5.
type FrameType int

const (
	RowsFrame FrameType = iota
	GroupsFrame
	RangeFrame
)

// ExcludeMode selects which rows a materialized frame drops after its
// bounds are computed, per spec.md §4.5 "EXCLUDE is applied last".
type ExcludeMode int

const (
	ExcludeNone ExcludeMode = iota
	ExcludeCurrentRow
	ExcludeGroup
	ExcludeTies
)

// Unbounded marks a PRECEDING/FOLLOWING offset as UNBOUNDED.
const Unbounded = math.MaxInt32

// WindowFrame is the compiled {type, preceding, following, exclude} tuple
// captured from an OVER(...) clause, spec.md §4.3 step 8.
type WindowFrame struct {
	Type       FrameType
	Preceding  int
	Following  int
	Exclude    ExcludeMode
}

// WindowInterval is a half-open [Start, End) slice of partition-local row
// indices, the unit the window framers of spec.md §4.5 produce per row.
type WindowInterval struct {
	Start, End int
}

func (w WindowInterval) Len() int { return w.End - w.Start }

// WindowDefinition is the fully resolved OVER(...) clause: partition keys,
// order keys (with direction), and the frame. Built by the compiler from
// either an inline OVER(...) or a named WINDOW w AS (...) plus any
// reference-site overrides (spec.md §4.3 step 8).
type WindowDefinition struct {
	Name        string
	PartitionBy []int // target indices of the intermediate row
	OrderBy     []OrderKey
	Frame       WindowFrame
}

// OrderKey is one ORDER BY key: a target index into the intermediate row,
// plus direction and NULL placement.
type OrderKey struct {
	Index      int
	Desc       bool
	NullsFirst bool
}
