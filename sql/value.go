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

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DurationValue is a calendar+clock interval: the calendar component (years,
// months, days) and the clock component (time.Duration) are kept separate
// because "1 month" has no fixed number of nanoseconds.
type DurationValue struct {
	Years, Months, Days int
	Clock               time.Duration
}

// DateTimeValue is an instant with an optional IANA zone. When Zone is nil,
// the instant is interpreted as the engine's configured default zone.
type DateTimeValue struct {
	Instant time.Time
	Zone    *time.Location
}

// Value is a dynamically tagged value: exactly one of the NullValue,
// Integer, Real, Decimal, Boolean, String, DateTime, Duration, List or Set
// representations, selected by Type. Construct one with the NewX
// constructors or the NullValue singleton; never build the struct literal
// directly from outside the package.
type Value struct {
	Type DType
	v    interface{}
}

// NullValue is the singleton null value. It is distinct from NaN and +/-Inf,
// both of which normalize to Null on output (see NewReal).
var NullValue = Value{Type: Null}

func NewInteger(v int64) Value  { return Value{Type: Integer, v: v} }
func NewBoolean(v bool) Value   { return Value{Type: Boolean, v: v} }
func NewStringValue(v string) Value { return Value{Type: String, v: v} }

// NewReal normalizes NaN and +/-Inf to Null, per spec.md §3.
func NewReal(v float64) Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NullValue
	}
	return Value{Type: Real, v: v}
}

func NewDecimalValue(v decimal.Decimal) Value { return Value{Type: Decimal, v: v} }

func NewDateTime(instant time.Time, zone *time.Location) Value {
	return Value{Type: DateTime, v: DateTimeValue{Instant: instant, Zone: zone}}
}

func NewDuration(d DurationValue) Value { return Value{Type: Duration, v: d} }

func NewList(elems []Value) Value { return Value{Type: List, v: append([]Value(nil), elems...)} }

// NewSet constructs a List-typed value deduplicated by Equal, preserving
// first-seen order. Sets and lists share a DType; IN/NOTIN treat both as a
// flat membership collection (spec.md §4.6 "Set containment").
func NewSet(elems []Value) Value {
	out := make([]Value, 0, len(elems))
	for _, e := range elems {
		found := false
		for _, o := range out {
			if Equal(e, o) {
				found = true
				break
			}
		}
		if !found {
			out = append(out, e)
		}
	}
	return Value{Type: List, v: out}
}

func (v Value) IsNull() bool { return v.Type == Null }

func (v Value) AsInteger() int64          { i, _ := v.v.(int64); return i }
func (v Value) AsReal() float64           { f, _ := v.v.(float64); return f }
func (v Value) AsBoolean() bool           { b, _ := v.v.(bool); return b }
func (v Value) AsString() string          { s, _ := v.v.(string); return s }
func (v Value) AsDecimal() decimal.Decimal { d, _ := v.v.(decimal.Decimal); return d }
func (v Value) AsDateTime() DateTimeValue { d, _ := v.v.(DateTimeValue); return d }
func (v Value) AsDuration() DurationValue { d, _ := v.v.(DurationValue); return d }
func (v Value) AsList() []Value           { l, _ := v.v.([]Value); return l }

// Raw exposes the underlying Go value for code outside the package (cast
// registration, table data ingestion) that already knows the DType.
func (v Value) Raw() interface{} { return v.v }

// epochMillis returns the instant of a DateTime/Duration value normalized
// to epoch milliseconds, used by Equal/Compare so both compare by value
// rather than by representation.
func (v Value) epochMillis() int64 {
	switch v.Type {
	case DateTime:
		return v.AsDateTime().Instant.UnixMilli()
	case Duration:
		d := v.AsDuration()
		approxDays := d.Years*365 + d.Months*30 + d.Days
		return int64(approxDays)*86400000 + d.Clock.Milliseconds()
	}
	return 0
}

// Equal implements semantic equality per spec.md §3: DateTime/Duration
// compare by epoch-ms, Decimal by numerical value, List/Set elementwise,
// everything else by Go equality of the underlying representation.
func Equal(a, b Value) bool {
	if a.IsNull() || b.IsNull() {
		return a.IsNull() && b.IsNull()
	}
	switch {
	case a.Type.IsNumber() && b.Type.IsNumber():
		return numericCompare(a, b) == 0
	case a.Type == DateTime && b.Type == DateTime:
		return a.epochMillis() == b.epochMillis()
	case a.Type == Duration && b.Type == Duration:
		return a.epochMillis() == b.epochMillis()
	case a.Type == List && b.Type == List:
		al, bl := a.AsList(), b.AsList()
		if len(al) != len(bl) {
			return false
		}
		for i := range al {
			if !Equal(al[i], bl[i]) {
				return false
			}
		}
		return true
	case a.Type == b.Type:
		return a.v == b.v
	default:
		return false
	}
}

// toDecimal widens any numeric value to a decimal.Decimal for exact
// cross-type comparison/arithmetic staging.
func toDecimal(v Value) decimal.Decimal {
	switch v.Type {
	case Integer:
		return decimal.NewFromInt(v.AsInteger())
	case Real:
		return decimal.NewFromFloat(v.AsReal())
	case Decimal:
		return v.AsDecimal()
	default:
		return decimal.Zero
	}
}

func numericCompare(a, b Value) int {
	if a.Type == Integer && b.Type == Integer {
		ai, bi := a.AsInteger(), b.AsInteger()
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		default:
			return 0
		}
	}
	if a.Type == Real || b.Type == Real {
		// Only widen to float when neither side is Decimal, to avoid
		// precision loss; Decimal vs Real still compares as decimals.
		if a.Type != Decimal && b.Type != Decimal {
			af, bf := numericAsFloat(a), numericAsFloat(b)
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}
	return toDecimal(a).Cmp(toDecimal(b))
}

func numericAsFloat(v Value) float64 {
	switch v.Type {
	case Integer:
		return float64(v.AsInteger())
	case Real:
		return v.AsReal()
	case Decimal:
		f, _ := v.AsDecimal().Float64()
		return f
	}
	return 0
}

// Compare orders two non-null values of compatible types for ORDER BY and
// DISTINCT. Returns -1/0/1. Compatible types are both-numeric,
// both-DateTime, both-Duration, both-String, or identical Type.
func Compare(a, b Value) int {
	switch {
	case a.Type.IsNumber() && b.Type.IsNumber():
		return numericCompare(a, b)
	case a.Type == DateTime && b.Type == DateTime:
		return compareInt64(a.epochMillis(), b.epochMillis())
	case a.Type == Duration && b.Type == Duration:
		return compareInt64(a.epochMillis(), b.epochMillis())
	case a.Type == String && b.Type == String:
		as, bs := a.AsString(), b.AsString()
		switch {
		case as < bs:
			return -1
		case as > bs:
			return 1
		default:
			return 0
		}
	case a.Type == Boolean && b.Type == Boolean:
		ab, bb := a.AsBoolean(), b.AsBoolean()
		if ab == bb {
			return 0
		}
		if !ab {
			return -1
		}
		return 1
	default:
		return 0
	}
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// SortValues sorts a slice of Values in place using Compare, with nulls
// placed according to nullsFirst.
func SortValues(vs []Value, desc, nullsFirst bool) {
	sort.SliceStable(vs, func(i, j int) bool {
		return Less(vs[i], vs[j], desc, nullsFirst)
	})
}

// Less implements a single ORDER BY key's comparator, honoring direction
// and NULL placement (spec.md §4.4 "Ordering, distinct, limit").
func Less(a, b Value, desc, nullsFirst bool) bool {
	if a.IsNull() || b.IsNull() {
		if a.IsNull() && b.IsNull() {
			return false
		}
		if a.IsNull() {
			return nullsFirst
		}
		return !nullsFirst
	}
	c := Compare(a, b)
	if desc {
		return c > 0
	}
	return c < 0
}
