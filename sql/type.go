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

import "fmt"

// DType is a type tag for a Value. It is kept as a small value type rather
// than an interface so that overload matching (FunctionRegistry.Resolve) can compare and
// sort signatures cheaply.
type DType int

const (
	// Null is the type of the Null value. It matches nothing but itself
	// under strict equality, and every signature slot under Extends.
	Null DType = iota
	Integer
	Real
	Decimal
	Boolean
	String
	DateTime
	Duration
	List
	// Object is the dynamic/any type: it accepts any value and is used for
	// generic signature slots (e.g. COALESCE, CASE, array element type
	// when heterogeneous).
	Object
	// Asterisk marks a `*` target; never appears on a runtime Value.
	Asterisk
	// Vararg marks the trailing repeatable slot of a registered
	// signature; never appears on a runtime Value.
	Vararg
)

func (t DType) String() string {
	switch t {
	case Null:
		return "null"
	case Integer:
		return "integer"
	case Real:
		return "real"
	case Decimal:
		return "decimal"
	case Boolean:
		return "boolean"
	case String:
		return "string"
	case DateTime:
		return "datetime"
	case Duration:
		return "duration"
	case List:
		return "list"
	case Object:
		return "object"
	case Asterisk:
		return "*"
	case Vararg:
		return "..."
	default:
		return fmt.Sprintf("dtype(%d)", int(t))
	}
}

// IsNumber reports whether t is a numeric type under the Number supertype
// (Integer/Real/Decimal). Integer is a refinement of Number: it matches
// Number signatures at lower priority than an explicit Integer signature.
func (t DType) IsNumber() bool {
	return t == Integer || t == Real || t == Decimal
}

// Structured reports whether values of t expose named sub-attributes
// reachable through `.field` access (DateTime.year, Duration.days, ...).
func (t DType) Structured() bool {
	return t == DateTime || t == Duration
}

// Extends reports whether a value of type t may be used where a signature
// declares want. This is the "extensions" relation of spec.md §4.1: Integer
// extends Real/Decimal (Number), any concrete type extends Object, and Null
// extends everything (null-argument short-circuit is handled separately by
// the registry, not by this relation).
func (t DType) Extends(want DType) bool {
	if t == want || t == Null {
		return true
	}
	if want == Object {
		return true
	}
	if t == Integer && (want == Real || want == Decimal) {
		return true
	}
	return false
}

// Specificity ranks a declared signature slot from most to least specific.
// Lower is more specific. Used to break ties between overlapping overloads:
// the registry prefers the signature with the lower total specificity sum.
func (t DType) Specificity() int {
	switch t {
	case Object:
		return 100
	case Vararg:
		return 90
	case Real, Decimal:
		return 10
	case Integer:
		return 5
	default:
		return 0
	}
}

// StructFields lists the named sub-attributes exposed by a structured type,
// in wildcard-expansion order, with their declared type.
func StructFields(t DType) []struct {
	Name string
	Type DType
} {
	switch t {
	case DateTime:
		return []struct {
			Name string
			Type DType
		}{
			{"year", Integer}, {"month", Integer}, {"day", Integer},
			{"hour", Integer}, {"minute", Integer}, {"second", Integer},
			{"quarter", Integer}, {"weekday", Integer}, {"yearmonth", Integer},
		}
	case Duration:
		return []struct {
			Name string
			Type DType
		}{
			{"years", Integer}, {"months", Integer}, {"days", Integer},
			{"hours", Integer}, {"minutes", Integer}, {"seconds", Integer},
		}
	default:
		return nil
	}
}
