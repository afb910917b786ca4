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

	"github.com/peaql/peaql/sql"
)

func dtZone(d sql.DateTimeValue) *time.Location {
	if d.Zone != nil {
		return d.Zone
	}
	return time.UTC
}

func registerTemporal(r *sql.FunctionRegistry) {
	r.Register(&sql.Signature{
		Name: "now", Args: nil, Result: sql.DateTime,
		Fn: func(ctx *sql.Context, args []sql.Value) (sql.Value, error) { return sql.NewDateTime(ctx.QueryStarted(), nil), nil },
	})
	r.Register(&sql.Signature{
		Name: "today", Args: nil, Result: sql.DateTime,
		Fn: func(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
			t := ctx.QueryStarted()
			return sql.NewDateTime(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil), nil
		},
	})

	field := func(name string, f func(t time.Time) int64) {
		r.Register(&sql.Signature{
			Name: name, Args: []sql.DType{sql.DateTime}, Result: sql.Integer,
			Fn: func(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
				d := args[0].AsDateTime()
				return sql.NewInteger(f(d.Instant.In(dtZone(d)))), nil
			},
		})
	}
	field("year", func(t time.Time) int64 { return int64(t.Year()) })
	field("month", func(t time.Time) int64 { return int64(t.Month()) })
	field("day", func(t time.Time) int64 { return int64(t.Day()) })
	field("quarter", func(t time.Time) int64 { return int64((int(t.Month())-1)/3 + 1) })
	field("weekday", func(t time.Time) int64 { return int64(t.Weekday()) })
	field("hour", func(t time.Time) int64 { return int64(t.Hour()) })
	field("minute", func(t time.Time) int64 { return int64(t.Minute()) })
	field("second", func(t time.Time) int64 { return int64(t.Second()) })

	r.Register(&sql.Signature{
		Name: "yearmonth", Args: []sql.DType{sql.DateTime}, Result: sql.Integer,
		Fn: func(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
			d := args[0].AsDateTime().Instant
			return sql.NewInteger(int64(d.Year())*100 + int64(d.Month())), nil
		},
	})

	// date_diff(a, b) returns (a - b) expressed as a Duration.
	r.Register(&sql.Signature{
		Name: "date_diff", Args: []sql.DType{sql.DateTime, sql.DateTime}, Result: sql.Duration,
		Fn: func(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
			diff := args[0].AsDateTime().Instant.Sub(args[1].AsDateTime().Instant)
			return sql.NewDuration(sql.DurationValue{Clock: diff}), nil
		},
	})

	r.Register(&sql.Signature{
		Name: "date_add", Args: []sql.DType{sql.DateTime, sql.Duration}, Result: sql.DateTime,
		Fn: func(ctx *sql.Context, args []sql.Value) (sql.Value, error) { return addCalendar(args[0], args[1].AsDuration(), 1), nil },
	})

	truncUnits := map[string]func(t time.Time) time.Time{
		"year":    func(t time.Time) time.Time { return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, t.Location()) },
		"quarter": func(t time.Time) time.Time { m := ((int(t.Month())-1)/3)*3 + 1; return time.Date(t.Year(), time.Month(m), 1, 0, 0, 0, 0, t.Location()) },
		"month":   func(t time.Time) time.Time { return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()) },
		"day":     func(t time.Time) time.Time { return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()) },
		"hour":    func(t time.Time) time.Time { return t.Truncate(time.Hour) },
		"minute":  func(t time.Time) time.Time { return t.Truncate(time.Minute) },
		"second":  func(t time.Time) time.Time { return t.Truncate(time.Second) },
	}

	r.Register(&sql.Signature{
		Name: "date_trunc", Args: []sql.DType{sql.String, sql.DateTime}, Result: sql.DateTime,
		Fn: func(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
			d := args[1].AsDateTime()
			trunc, ok := truncUnits[args[0].AsString()]
			if !ok {
				return sql.NullValue, nil
			}
			return sql.NewDateTime(trunc(d.Instant.In(dtZone(d))), d.Zone), nil
		},
	})
	r.Register(&sql.Signature{
		Name: "date_start", Args: []sql.DType{sql.String, sql.DateTime}, Result: sql.DateTime,
		Fn: func(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
			d := args[1].AsDateTime()
			trunc, ok := truncUnits[args[0].AsString()]
			if !ok {
				return sql.NullValue, nil
			}
			return sql.NewDateTime(trunc(d.Instant.In(dtZone(d))), d.Zone), nil
		},
	})
	r.Register(&sql.Signature{
		Name: "date_end", Args: []sql.DType{sql.String, sql.DateTime}, Result: sql.DateTime,
		Fn: func(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
			d := args[1].AsDateTime()
			trunc, ok := truncUnits[args[0].AsString()]
			if !ok {
				return sql.NullValue, nil
			}
			start := trunc(d.Instant.In(dtZone(d)))
			var end time.Time
			switch args[0].AsString() {
			case "year":
				end = start.AddDate(1, 0, 0)
			case "quarter":
				end = start.AddDate(0, 3, 0)
			case "month":
				end = start.AddDate(0, 1, 0)
			case "day":
				end = start.AddDate(0, 0, 1)
			case "hour":
				end = start.Add(time.Hour)
			case "minute":
				end = start.Add(time.Minute)
			case "second":
				end = start.Add(time.Second)
			}
			return sql.NewDateTime(end.Add(-time.Nanosecond), d.Zone), nil
		},
	})

	r.Register(&sql.Signature{
		Name: "date_part", Args: []sql.DType{sql.String, sql.DateTime}, Result: sql.Integer,
		Fn: func(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
			d := args[1].AsDateTime()
			t := d.Instant.In(dtZone(d))
			switch args[0].AsString() {
			case "year":
				return sql.NewInteger(int64(t.Year())), nil
			case "quarter":
				return sql.NewInteger(int64((int(t.Month())-1)/3 + 1)), nil
			case "month":
				return sql.NewInteger(int64(t.Month())), nil
			case "day":
				return sql.NewInteger(int64(t.Day())), nil
			case "hour":
				return sql.NewInteger(int64(t.Hour())), nil
			case "minute":
				return sql.NewInteger(int64(t.Minute())), nil
			case "second":
				return sql.NewInteger(int64(t.Second())), nil
			case "dow":
				return sql.NewInteger(int64(t.Weekday())), nil
			}
			return sql.NullValue, nil
		},
	})

	// date_bin(width, value, origin) snaps value down to the nearest
	// multiple of width duration since origin, spec.md §4.6 "date_bin".
	r.Register(&sql.Signature{
		Name: "date_bin", Args: []sql.DType{sql.Duration, sql.DateTime, sql.DateTime}, Result: sql.DateTime,
		Fn: func(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
			width := args[0].AsDuration().Clock
			if width <= 0 {
				return sql.NullValue, nil
			}
			origin := args[2].AsDateTime().Instant
			value := args[1].AsDateTime().Instant
			elapsed := value.Sub(origin)
			bins := elapsed / width
			if elapsed < 0 && elapsed%width != 0 {
				bins--
			}
			return sql.NewDateTime(origin.Add(bins*width), args[1].AsDateTime().Zone), nil
		},
	})

	r.Register(&sql.Signature{
		Name: "parse_date", Args: []sql.DType{sql.String, sql.String}, Result: sql.DateTime,
		Fn: func(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
			t, err := time.Parse(goLayoutFromSQL(args[1].AsString()), args[0].AsString())
			if err != nil {
				return sql.NullValue, nil
			}
			return sql.NewDateTime(t, nil), nil
		},
	})
}
