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
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"github.com/peaql/peaql/sql"
)

// dateLayouts are tried in order when parsing a string to DateTime,
// spanning SQL/ISO 8601 plus a handful of common human formats (spec.md
// §4.1 "Parsing rules for string->DateTime").
var dateLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"2006-01-02 15:04",
}

func castDateTime(v sql.Value) (sql.Value, error) {
	switch v.Type {
	case sql.DateTime:
		return v, nil
	case sql.String:
		s := strings.TrimSpace(v.AsString())
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return sql.NewDateTime(t, nil), nil
			}
		}
		return sql.NullValue, nil
	case sql.Integer:
		return sql.NewDateTime(time.UnixMilli(v.AsInteger()), nil), nil
	case sql.Real:
		return sql.NewDateTime(time.UnixMilli(int64(v.AsReal())), nil), nil
	}
	return sql.NullValue, nil
}

func castDuration(v sql.Value) (sql.Value, error) {
	switch v.Type {
	case sql.Duration:
		return v, nil
	case sql.String:
		return parseDurationString(v.AsString())
	case sql.Integer:
		return sql.NewDuration(sql.DurationValue{Clock: time.Duration(v.AsInteger()) * time.Second}), nil
	case sql.Real:
		return sql.NewDuration(sql.DurationValue{Clock: time.Duration(v.AsReal() * float64(time.Second))}), nil
	}
	return sql.NullValue, nil
}

// parseDurationString accepts ISO-8601 "PnYnMnDTnHnMnS" and Go's own
// "1h30m" shorthand, the two forms the datetime/duration builtins of
// spec.md §4.6 are expected to round-trip with to_char/format.
func parseDurationString(s string) (sql.Value, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "P") {
		return parseISODuration(s)
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return sql.NullValue, nil
	}
	return sql.NewDuration(sql.DurationValue{Clock: d}), nil
}

func parseISODuration(s string) (sql.Value, error) {
	var out sql.DurationValue
	s = strings.TrimPrefix(s, "P")
	datePart, timePart, hasTime := strings.Cut(s, "T")
	readNum := func(s string, unit byte) (int, string) {
		i := strings.IndexByte(s, unit)
		if i < 0 {
			return 0, s
		}
		n, _ := strconv.Atoi(s[:i])
		return n, s[i+1:]
	}
	out.Years, datePart = readNum(datePart, 'Y')
	out.Months, datePart = readNum(datePart, 'M')
	out.Days, _ = readNum(datePart, 'D')
	if hasTime {
		var h, m, sec int
		h, timePart = readNum(timePart, 'H')
		m, timePart = readNum(timePart, 'M')
		sec, _ = readNum(timePart, 'S')
		out.Clock = time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(sec)*time.Second
	}
	return sql.NewDuration(out), nil
}

func castInteger(v sql.Value) (sql.Value, error) {
	switch v.Type {
	case sql.Integer:
		return v, nil
	case sql.Real:
		return sql.NewInteger(int64(v.AsReal())), nil
	case sql.Decimal:
		return sql.NewInteger(v.AsDecimal().IntPart()), nil
	case sql.Boolean:
		if v.AsBoolean() {
			return sql.NewInteger(1), nil
		}
		return sql.NewInteger(0), nil
	case sql.String:
		n, err := cast.ToInt64E(strings.TrimSpace(v.AsString()))
		if err != nil {
			return sql.NullValue, nil
		}
		return sql.NewInteger(n), nil
	}
	return sql.NullValue, nil
}

func castReal(v sql.Value) (sql.Value, error) {
	switch v.Type {
	case sql.Real:
		return v, nil
	case sql.Integer:
		return sql.NewReal(float64(v.AsInteger())), nil
	case sql.Decimal:
		f, _ := v.AsDecimal().Float64()
		return sql.NewReal(f), nil
	case sql.Boolean:
		if v.AsBoolean() {
			return sql.NewReal(1), nil
		}
		return sql.NewReal(0), nil
	case sql.String:
		f, err := cast.ToFloat64E(strings.TrimSpace(v.AsString()))
		if err != nil {
			return sql.NullValue, nil
		}
		return sql.NewReal(f), nil
	}
	return sql.NullValue, nil
}

func castDecimal(v sql.Value) (sql.Value, error) {
	switch v.Type {
	case sql.Decimal:
		return v, nil
	case sql.Integer:
		return sql.NewDecimalValue(decimal.NewFromInt(v.AsInteger())), nil
	case sql.Real:
		return sql.NewDecimalValue(decimal.NewFromFloat(v.AsReal())), nil
	case sql.String:
		d, err := decimal.NewFromString(strings.TrimSpace(v.AsString()))
		if err != nil {
			return sql.NullValue, nil
		}
		return sql.NewDecimalValue(d), nil
	}
	return sql.NullValue, nil
}

func castBoolean(v sql.Value) (sql.Value, error) {
	switch v.Type {
	case sql.Boolean:
		return v, nil
	case sql.Integer:
		return sql.NewBoolean(v.AsInteger() != 0), nil
	case sql.Real:
		return sql.NewBoolean(v.AsReal() != 0), nil
	case sql.String:
		b, err := cast.ToBoolE(strings.TrimSpace(v.AsString()))
		if err != nil {
			return sql.NullValue, nil
		}
		return sql.NewBoolean(b), nil
	}
	return sql.NullValue, nil
}

func castString(v sql.Value) (sql.Value, error) {
	return sql.NewStringValue(renderValue(v)), nil
}

func registerCasts(r *sql.FunctionRegistry) {
	wrap := func(f func(sql.Value) (sql.Value, error)) sql.ScalarFn {
		return func(ctx *sql.Context, args []sql.Value) (sql.Value, error) { return f(args[0]) }
	}
	allTypes := []sql.DType{sql.Integer, sql.Real, sql.Decimal, sql.Boolean, sql.String, sql.DateTime, sql.Duration, sql.Object}

	register1 := func(names []string, result sql.DType, f func(sql.Value) (sql.Value, error)) {
		for _, name := range names {
			for _, t := range allTypes {
				r.Register(&sql.Signature{Name: name, Args: []sql.DType{t}, Result: result, Fn: wrap(f)})
			}
		}
	}

	register1([]string{"int", "integer"}, sql.Integer, castInteger)
	register1([]string{"real", "number"}, sql.Real, castReal)
	register1([]string{"numeric", "decimal"}, sql.Decimal, castDecimal)
	register1([]string{"boolean"}, sql.Boolean, castBoolean)
	register1([]string{"text", "string"}, sql.String, castString)
	register1([]string{"datetime", "timestamp"}, sql.DateTime, castDateTime)
	register1([]string{"interval"}, sql.Duration, castDuration)

	// timestamptz(v, zone?) is a 1- or 2-arg variant of the datetime cast
	// that additionally attaches a zone, spec.md §4.6 "Casts".
	for _, t := range allTypes {
		r.Register(&sql.Signature{
			Name: "timestamptz", Args: []sql.DType{t}, Result: sql.DateTime,
			Fn: func(ctx *sql.Context, args []sql.Value) (sql.Value, error) { return castDateTime(args[0]) },
		})
		r.Register(&sql.Signature{
			Name: "timestamptz", Args: []sql.DType{t, sql.String}, Result: sql.DateTime,
			Fn: func(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
				v, err := castDateTime(args[0])
				if err != nil || v.IsNull() {
					return v, err
				}
				loc, err := time.LoadLocation(args[1].AsString())
				if err != nil {
					return sql.NullValue, fmt.Errorf("unknown zone %q: %w", args[1].AsString(), err)
				}
				dt := v.AsDateTime()
				return sql.NewDateTime(dt.Instant, loc), nil
			},
		})
	}
}
