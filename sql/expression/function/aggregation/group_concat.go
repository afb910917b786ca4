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
	"fmt"
	"strconv"
	"strings"

	"github.com/peaql/peaql/sql"
)

// groupConcatBuffer joins non-null string renderings of its first argument
// with the separator given as the second argument, spec.md §4.6
// "group_concat(x, sep)".
type groupConcatBuffer struct {
	parts []string
	sep   string
	set   bool
}

func (b *groupConcatBuffer) Update(ctx *sql.Context, args []sql.Value) error {
	if !b.set && len(args) > 1 {
		b.sep = args[1].AsString()
		b.set = true
	}
	if args[0].IsNull() {
		return nil
	}
	b.parts = append(b.parts, renderAggValue(args[0]))
	return nil
}

func (b *groupConcatBuffer) Eval(ctx *sql.Context) (sql.Value, error) {
	if len(b.parts) == 0 {
		return sql.NullValue, nil
	}
	return sql.NewStringValue(strings.Join(b.parts, b.sep)), nil
}

func (b *groupConcatBuffer) Dispose() { b.parts = nil }

type groupConcatAggregator struct{}

func (groupConcatAggregator) NewBuffer() sql.AggregatorBuffer { return &groupConcatBuffer{sep: ","} }

func renderAggValue(v sql.Value) string {
	switch v.Type {
	case sql.String:
		return v.AsString()
	case sql.Integer:
		return strconv.FormatInt(v.AsInteger(), 10)
	case sql.Real:
		return strconv.FormatFloat(v.AsReal(), 'g', -1, 64)
	case sql.Decimal:
		return v.AsDecimal().String()
	case sql.Boolean:
		return strconv.FormatBool(v.AsBoolean())
	case sql.DateTime:
		return v.AsDateTime().Instant.String()
	default:
		return fmt.Sprint(v.Raw())
	}
}
