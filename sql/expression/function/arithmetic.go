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

package function

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/peaql/peaql/sql"
)

// widestNumeric picks the widest of two numeric DTypes for a binary
// arithmetic result: Integer < Real < Decimal, Decimal winning whenever
// either operand is Decimal so scale is preserved (spec.md §3 "Decimal
// ... preserved scale").
func widestNumeric(a, b sql.DType) sql.DType {
	if a == sql.Decimal || b == sql.Decimal {
		return sql.Decimal
	}
	if a == sql.Real || b == sql.Real {
		return sql.Real
	}
	return sql.Integer
}

func arith(op func(a, b sql.Value) (sql.Value, error)) sql.ScalarFn {
	return func(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
		return op(args[0], args[1])
	}
}

func addValues(a, b sql.Value) (sql.Value, error) {
	switch {
	case a.Type == sql.String || b.Type == sql.String:
		// (Number, String) concatenation per spec.md §4.6 "Arithmetic".
		return sql.NewStringValue(renderValue(a) + renderValue(b)), nil
	case a.Type == sql.DateTime && b.Type.IsNumber():
		return addDays(a, numericDays(b)), nil
	case b.Type == sql.DateTime && a.Type.IsNumber():
		return addDays(b, numericDays(a)), nil
	case a.Type == sql.DateTime && b.Type == sql.Duration:
		return addCalendar(a, b.AsDuration(), 1), nil
	case b.Type == sql.DateTime && a.Type == sql.Duration:
		return addCalendar(b, a.AsDuration(), 1), nil
	case a.Type == sql.Duration && b.Type == sql.Duration:
		return addDurations(a.AsDuration(), b.AsDuration(), 1), nil
	default:
		return numericOp(a, b, func(x, y int64) int64 { return x + y },
			func(x, y float64) float64 { return x + y },
			func(x, y decimal.Decimal) decimal.Decimal { return x.Add(y) }), nil
	}
}

func subValues(a, b sql.Value) (sql.Value, error) {
	switch {
	case a.Type == sql.DateTime && b.Type.IsNumber():
		return addDays(a, -numericDays(b)), nil
	case a.Type == sql.DateTime && b.Type == sql.Duration:
		return addCalendar(a, b.AsDuration(), -1), nil
	case a.Type == sql.Duration && b.Type == sql.Duration:
		return addDurations(a.AsDuration(), b.AsDuration(), -1), nil
	default:
		return numericOp(a, b, func(x, y int64) int64 { return x - y },
			func(x, y float64) float64 { return x - y },
			func(x, y decimal.Decimal) decimal.Decimal { return x.Sub(y) }), nil
	}
}

func mulValues(a, b sql.Value) (sql.Value, error) {
	return numericOp(a, b, func(x, y int64) int64 { return x * y },
		func(x, y float64) float64 { return x * y },
		func(x, y decimal.Decimal) decimal.Decimal { return x.Mul(y) }), nil
}

func divValues(a, b sql.Value) (sql.Value, error) {
	if isZero(b) {
		return sql.NullValue, nil // division by zero yields NULL, spec.md §4.6
	}
	if a.Type == sql.Integer && b.Type == sql.Integer {
		// integer division truncates toward zero
		return sql.NewInteger(a.AsInteger() / b.AsInteger()), nil
	}
	return numericOp(a, b, nil,
		func(x, y float64) float64 { return x / y },
		func(x, y decimal.Decimal) decimal.Decimal { return x.Div(y) }), nil
}

func modValues(a, b sql.Value) (sql.Value, error) {
	if isZero(b) {
		return sql.NullValue, nil
	}
	if a.Type == sql.Integer && b.Type == sql.Integer {
		return sql.NewInteger(a.AsInteger() % b.AsInteger()), nil
	}
	return numericOp(a, b, nil,
		func(x, y float64) float64 {
			m := x - y*float64(int64(x/y))
			return m
		},
		// decimal.Decimal.Mod truncates toward zero, matching DESIGN.md's
		// Open Question decision for negative operands.
		func(x, y decimal.Decimal) decimal.Decimal { return x.Mod(y) }), nil
}

func isZero(v sql.Value) bool {
	switch v.Type {
	case sql.Integer:
		return v.AsInteger() == 0
	case sql.Real:
		return v.AsReal() == 0
	case sql.Decimal:
		return v.AsDecimal().IsZero()
	}
	return false
}

func numericOp(a, b sql.Value, iop func(x, y int64) int64, fop func(x, y float64) float64, dop func(x, y decimal.Decimal) decimal.Decimal) sql.Value {
	result := widestNumeric(a.Type, b.Type)
	switch result {
	case sql.Integer:
		return sql.NewInteger(iop(a.AsInteger(), b.AsInteger()))
	case sql.Real:
		return sql.NewReal(fop(numericFloat(a), numericFloat(b)))
	default:
		return sql.NewDecimalValue(dop(numericDecimal(a), numericDecimal(b)))
	}
}

func numericFloat(v sql.Value) float64 {
	switch v.Type {
	case sql.Integer:
		return float64(v.AsInteger())
	case sql.Real:
		return v.AsReal()
	case sql.Decimal:
		f, _ := v.AsDecimal().Float64()
		return f
	}
	return 0
}

func numericDecimal(v sql.Value) decimal.Decimal {
	switch v.Type {
	case sql.Integer:
		return decimal.NewFromInt(v.AsInteger())
	case sql.Real:
		return decimal.NewFromFloat(v.AsReal())
	case sql.Decimal:
		return v.AsDecimal()
	}
	return decimal.Zero
}

func numericDays(v sql.Value) float64 { return numericFloat(v) }

func addDays(dt sql.Value, days float64) sql.Value {
	d := dt.AsDateTime()
	return sql.NewDateTime(d.Instant.Add(time.Duration(days*24) * time.Hour), d.Zone)
}

func addCalendar(dt sql.Value, d sql.DurationValue, sign int) sql.Value {
	v := dt.AsDateTime()
	t := v.Instant.AddDate(sign*d.Years, sign*d.Months, sign*d.Days)
	t = t.Add(time.Duration(sign) * d.Clock)
	return sql.NewDateTime(t, v.Zone)
}

func addDurations(a, b sql.DurationValue, sign int) sql.Value {
	return sql.NewDuration(sql.DurationValue{
		Years:  a.Years + sign*b.Years,
		Months: a.Months + sign*b.Months,
		Days:   a.Days + sign*b.Days,
		Clock:  a.Clock + time.Duration(sign)*b.Clock,
	})
}

func renderValue(v sql.Value) string {
	if v.Type == sql.String {
		return v.AsString()
	}
	switch v.Type {
	case sql.Integer:
		return decimal.NewFromInt(v.AsInteger()).String()
	case sql.Real:
		return decimal.NewFromFloat(v.AsReal()).String()
	case sql.Decimal:
		return v.AsDecimal().String()
	}
	return ""
}

func registerArithmetic(r *sql.FunctionRegistry) {
	numSig := func(name string, fn func(a, b sql.Value) (sql.Value, error), result sql.DType) {
		for _, lt := range []sql.DType{sql.Integer, sql.Real, sql.Decimal} {
			for _, rt := range []sql.DType{sql.Integer, sql.Real, sql.Decimal} {
				r.Register(&sql.Signature{
					Name: name, Args: []sql.DType{lt, rt},
					Result: widestNumericResult(result, lt, rt), Fn: arith(fn),
				})
			}
		}
	}
	numSig("+", addValues, sql.Integer)
	numSig("-", subValues, sql.Integer)
	numSig("*", mulValues, sql.Integer)
	numSig("/", divValues, sql.Integer)
	numSig("%", modValues, sql.Integer)

	r.Register(&sql.Signature{Name: "+", Args: []sql.DType{sql.Object, sql.String}, Result: sql.String, Fn: arith(addValues)})
	r.Register(&sql.Signature{Name: "+", Args: []sql.DType{sql.String, sql.Object}, Result: sql.String, Fn: arith(addValues)})
	r.Register(&sql.Signature{Name: "+", Args: []sql.DType{sql.DateTime, sql.Integer}, Result: sql.DateTime, Fn: arith(addValues)})
	r.Register(&sql.Signature{Name: "+", Args: []sql.DType{sql.DateTime, sql.Real}, Result: sql.DateTime, Fn: arith(addValues)})
	r.Register(&sql.Signature{Name: "+", Args: []sql.DType{sql.Integer, sql.DateTime}, Result: sql.DateTime, Fn: arith(addValues)})
	r.Register(&sql.Signature{Name: "+", Args: []sql.DType{sql.DateTime, sql.Duration}, Result: sql.DateTime, Fn: arith(addValues)})
	r.Register(&sql.Signature{Name: "+", Args: []sql.DType{sql.Duration, sql.Duration}, Result: sql.Duration, Fn: arith(addValues)})
	r.Register(&sql.Signature{Name: "-", Args: []sql.DType{sql.DateTime, sql.Integer}, Result: sql.DateTime, Fn: arith(subValues)})
	r.Register(&sql.Signature{Name: "-", Args: []sql.DType{sql.DateTime, sql.Duration}, Result: sql.DateTime, Fn: arith(subValues)})
	r.Register(&sql.Signature{Name: "-", Args: []sql.DType{sql.Duration, sql.Duration}, Result: sql.Duration, Fn: arith(subValues)})

	r.Register(&sql.Signature{
		Name: "-", Args: []sql.DType{sql.Integer}, Result: sql.Integer,
		Fn: func(ctx *sql.Context, args []sql.Value) (sql.Value, error) { return sql.NewInteger(-args[0].AsInteger()), nil },
	})
	r.Register(&sql.Signature{
		Name: "-", Args: []sql.DType{sql.Real}, Result: sql.Real,
		Fn: func(ctx *sql.Context, args []sql.Value) (sql.Value, error) { return sql.NewReal(-args[0].AsReal()), nil },
	})
	r.Register(&sql.Signature{
		Name: "-", Args: []sql.DType{sql.Decimal}, Result: sql.Decimal,
		Fn: func(ctx *sql.Context, args []sql.Value) (sql.Value, error) { return sql.NewDecimalValue(args[0].AsDecimal().Neg()), nil },
	})
}

func widestNumericResult(_ sql.DType, lt, rt sql.DType) sql.DType { return widestNumeric(lt, rt) }
