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
	"fmt"
	"strconv"
	"strings"

	"github.com/peaql/peaql/sql"
)

func s1(r *sql.FunctionRegistry, name string, result sql.DType, f func(string) sql.Value) {
	r.Register(&sql.Signature{
		Name: name, Args: []sql.DType{sql.String}, Result: result,
		Fn: func(ctx *sql.Context, args []sql.Value) (sql.Value, error) { return f(args[0].AsString()), nil },
	})
}

func registerStrings(r *sql.FunctionRegistry) {
	s1(r, "length", sql.Integer, func(s string) sql.Value { return sql.NewInteger(int64(len([]rune(s)))) })
	s1(r, "upper", sql.String, func(s string) sql.Value { return sql.NewStringValue(strings.ToUpper(s)) })
	s1(r, "lower", sql.String, func(s string) sql.Value { return sql.NewStringValue(strings.ToLower(s)) })

	r.Register(&sql.Signature{
		Name: "substr", Args: []sql.DType{sql.String, sql.Integer, sql.Integer}, Result: sql.String,
		Fn: func(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
			return sql.NewStringValue(substr(args[0].AsString(), int(args[1].AsInteger()), int(args[2].AsInteger()))), nil
		},
	})
	r.Register(&sql.Signature{
		Name: "substr", Args: []sql.DType{sql.String, sql.Integer}, Result: sql.String,
		Fn: func(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
			s := []rune(args[0].AsString())
			return sql.NewStringValue(substr(args[0].AsString(), int(args[1].AsInteger()), len(s))), nil
		},
	})

	r.Register(&sql.Signature{
		Name: "concat", Args: []sql.DType{sql.Object}, Variadic: true, Result: sql.String,
		Fn: func(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
			var sb strings.Builder
			for _, a := range args {
				if a.IsNull() {
					continue
				}
				sb.WriteString(renderValue(a))
			}
			return sql.NewStringValue(sb.String()), nil
		},
	})

	r.Register(&sql.Signature{
		Name: "maxwidth", Args: []sql.DType{sql.String, sql.Integer}, Result: sql.String,
		Fn: func(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
			s := []rune(args[0].AsString())
			w := int(args[1].AsInteger())
			if len(s) <= w {
				return sql.NewStringValue(string(s)), nil
			}
			return sql.NewStringValue(string(s[:w])), nil
		},
	})

	r.Register(&sql.Signature{
		Name: "splitcomp", Args: []sql.DType{sql.String, sql.String, sql.Integer}, Result: sql.String,
		Fn: func(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
			parts := strings.Split(args[0].AsString(), args[1].AsString())
			i := int(args[2].AsInteger())
			if i < 0 || i >= len(parts) {
				return sql.NullValue, nil
			}
			return sql.NewStringValue(parts[i]), nil
		},
	})

	r.Register(&sql.Signature{
		Name: "joinstr", Args: []sql.DType{sql.List, sql.String}, Result: sql.String,
		Fn: func(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
			parts := make([]string, 0, len(args[0].AsList()))
			for _, v := range args[0].AsList() {
				if v.IsNull() {
					continue
				}
				parts = append(parts, renderValue(v))
			}
			return sql.NewStringValue(strings.Join(parts, args[1].AsString())), nil
		},
	})

	for _, t := range []sql.DType{sql.Integer, sql.Real, sql.Decimal, sql.DateTime, sql.Duration} {
		r.Register(&sql.Signature{
			Name: "to_char", Args: []sql.DType{t, sql.String}, Result: sql.String,
			Fn: func(ctx *sql.Context, args []sql.Value) (sql.Value, error) { return toChar(args[0], args[1].AsString()) },
		})
	}

	// format is printf-like: %[flag][width].[prec][dfsx]
	r.Register(&sql.Signature{
		Name: "format", Args: []sql.DType{sql.String, sql.Object}, Variadic: true, Result: sql.String,
		Fn: func(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
			vals := make([]interface{}, len(args)-1)
			for i, a := range args[1:] {
				vals[i] = a.Raw()
			}
			return sql.NewStringValue(fmt.Sprintf(args[0].AsString(), vals...)), nil
		},
	})
}

func substr(s string, start, length int) string {
	r := []rune(s)
	if start < 1 {
		start = 1
	}
	start--
	if start > len(r) {
		return ""
	}
	end := start + length
	if end > len(r) {
		end = len(r)
	}
	if end < start {
		end = start
	}
	return string(r[start:end])
}

func toChar(v sql.Value, format string) (sql.Value, error) {
	switch v.Type {
	case sql.Integer, sql.Real, sql.Decimal:
		prec := strings.Count(format, "0") - strings.Count(strings.SplitN(format, ".", 2)[0], "0")
		if !strings.Contains(format, ".") {
			return sql.NewStringValue(strconv.FormatInt(int64(numericFloat(v)), 10)), nil
		}
		return sql.NewStringValue(strconv.FormatFloat(numericFloat(v), 'f', prec, 64)), nil
	case sql.DateTime:
		return sql.NewStringValue(v.AsDateTime().Instant.Format(goLayoutFromSQL(format))), nil
	case sql.Duration:
		d := v.AsDuration()
		return sql.NewStringValue(fmt.Sprintf("%dy %dm %dd %s", d.Years, d.Months, d.Days, d.Clock)), nil
	}
	return sql.NullValue, nil
}

// goLayoutFromSQL maps a handful of common SQL date-format tokens
// (YYYY, MM, DD, HH24, MI, SS) to the Go reference-time layout.
func goLayoutFromSQL(format string) string {
	replacer := strings.NewReplacer(
		"YYYY", "2006", "MM", "01", "DD", "02",
		"HH24", "15", "HH", "03", "MI", "04", "SS", "05",
	)
	return replacer.Replace(format)
}
