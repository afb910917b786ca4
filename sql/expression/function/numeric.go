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
	"math"

	"github.com/shopspring/decimal"

	"github.com/peaql/peaql/sql"
)

func registerNumeric(r *sql.FunctionRegistry) {
	r.Register(&sql.Signature{
		Name: "abs", Args: []sql.DType{sql.Integer}, Result: sql.Integer,
		Fn: func(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
			n := args[0].AsInteger()
			if n < 0 {
				n = -n
			}
			return sql.NewInteger(n), nil
		},
	})
	r.Register(&sql.Signature{
		Name: "abs", Args: []sql.DType{sql.Real}, Result: sql.Real,
		Fn: func(ctx *sql.Context, args []sql.Value) (sql.Value, error) { return sql.NewReal(math.Abs(args[0].AsReal())), nil },
	})
	r.Register(&sql.Signature{
		Name: "abs", Args: []sql.DType{sql.Decimal}, Result: sql.Decimal,
		Fn: func(ctx *sql.Context, args []sql.Value) (sql.Value, error) { return sql.NewDecimalValue(args[0].AsDecimal().Abs()), nil },
	})

	// round(x, d = 2) rounds to d fractional digits, default 2 per
	// spec.md §4.6 "round".
	roundFn := func(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
		d := int32(2)
		if len(args) > 1 {
			d = int32(args[1].AsInteger())
		}
		switch args[0].Type {
		case sql.Real:
			mult := math.Pow(10, float64(d))
			return sql.NewReal(math.Round(args[0].AsReal()*mult) / mult), nil
		case sql.Decimal:
			return sql.NewDecimalValue(args[0].AsDecimal().Round(d)), nil
		case sql.Integer:
			return args[0], nil
		}
		return sql.NullValue, nil
	}
	for _, t := range []sql.DType{sql.Integer, sql.Real, sql.Decimal} {
		r.Register(&sql.Signature{Name: "round", Args: []sql.DType{t}, Result: t, Fn: roundFn})
		r.Register(&sql.Signature{Name: "round", Args: []sql.DType{t, sql.Integer}, Result: t, Fn: roundFn})
	}

	toFixedFn := func(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
		d := int32(args[1].AsInteger())
		switch args[0].Type {
		case sql.Real:
			return sql.NewStringValue(decimal.NewFromFloat(args[0].AsReal()).StringFixed(d)), nil
		case sql.Decimal:
			return sql.NewStringValue(args[0].AsDecimal().StringFixed(d)), nil
		case sql.Integer:
			return sql.NewStringValue(decimal.NewFromInt(args[0].AsInteger()).StringFixed(d)), nil
		}
		return sql.NullValue, nil
	}
	for _, t := range []sql.DType{sql.Integer, sql.Real, sql.Decimal} {
		r.Register(&sql.Signature{Name: "toFixed", Args: []sql.DType{t, sql.Integer}, Result: sql.String, Fn: toFixedFn})
	}

	// safediv(a, b) returns NULL instead of erroring on divide-by-zero,
	// same semantics as the `/` operator already has, kept as an explicit
	// alias for readability (spec.md §4.6 "safediv").
	for _, lt := range []sql.DType{sql.Integer, sql.Real, sql.Decimal} {
		for _, rt := range []sql.DType{sql.Integer, sql.Real, sql.Decimal} {
			r.Register(&sql.Signature{
				Name: "safediv", Args: []sql.DType{lt, rt}, Result: widestNumeric(lt, rt),
				Fn: arith(divValues),
			})
		}
	}
}
