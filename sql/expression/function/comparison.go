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

import "github.com/peaql/peaql/sql"

// coerceCompare widens string/numeric operands against DateTime/Duration
// before comparing, per spec.md §4.6 "DateTime<->String/Number coercion
// and Duration<->String/Number coercion".
func coerceCompare(a, b sql.Value) (sql.Value, sql.Value, error) {
	if a.Type == sql.DateTime && (b.Type == sql.String || b.Type.IsNumber()) {
		v, err := castDateTime(b)
		return a, v, err
	}
	if b.Type == sql.DateTime && (a.Type == sql.String || a.Type.IsNumber()) {
		v, err := castDateTime(a)
		return v, b, err
	}
	if a.Type == sql.Duration && (b.Type == sql.String || b.Type.IsNumber()) {
		v, err := castDuration(b)
		return a, v, err
	}
	if b.Type == sql.Duration && (a.Type == sql.String || a.Type.IsNumber()) {
		v, err := castDuration(a)
		return v, b, err
	}
	return a, b, nil
}

func cmpSig(r *sql.FunctionRegistry, name string, result func(c int) bool) {
	for _, lt := range []sql.DType{sql.Integer, sql.Real, sql.Decimal, sql.String, sql.DateTime, sql.Duration, sql.Boolean} {
		for _, rt := range []sql.DType{sql.Integer, sql.Real, sql.Decimal, sql.String, sql.DateTime, sql.Duration, sql.Boolean} {
			if lt != rt && !(lt.IsNumber() && rt.IsNumber()) &&
				!(lt == sql.DateTime && (rt == sql.String || rt.IsNumber())) &&
				!(rt == sql.DateTime && (lt == sql.String || lt.IsNumber())) &&
				!(lt == sql.Duration && (rt == sql.String || rt.IsNumber())) &&
				!(rt == sql.Duration && (lt == sql.String || lt.IsNumber())) {
				continue
			}
			r.Register(&sql.Signature{
				Name: name, Args: []sql.DType{lt, rt}, Result: sql.Boolean,
				Fn: func(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
					a, b, err := coerceCompare(args[0], args[1])
					if err != nil {
						return sql.NullValue, nil
					}
					return sql.NewBoolean(result(sql.Compare(a, b))), nil
				},
			})
		}
	}
}

func registerComparison(r *sql.FunctionRegistry) {
	cmpSig(r, "<", func(c int) bool { return c < 0 })
	cmpSig(r, "<=", func(c int) bool { return c <= 0 })
	cmpSig(r, ">", func(c int) bool { return c > 0 })
	cmpSig(r, ">=", func(c int) bool { return c >= 0 })

	eqFn := func(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
		a, b, err := coerceCompare(args[0], args[1])
		if err != nil {
			return sql.NullValue, nil
		}
		return sql.NewBoolean(sql.Equal(a, b)), nil
	}
	neqFn := func(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
		a, b, err := coerceCompare(args[0], args[1])
		if err != nil {
			return sql.NullValue, nil
		}
		return sql.NewBoolean(!sql.Equal(a, b)), nil
	}
	for _, t := range []sql.DType{sql.Integer, sql.Real, sql.Decimal, sql.String, sql.DateTime, sql.Duration, sql.Boolean, sql.Object} {
		r.Register(&sql.Signature{Name: "=", Args: []sql.DType{t, t}, Result: sql.Boolean, Fn: eqFn})
		r.Register(&sql.Signature{Name: "!=", Args: []sql.DType{t, t}, Result: sql.Boolean, Fn: neqFn})
	}
}
