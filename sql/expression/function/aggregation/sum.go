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
	"github.com/shopspring/decimal"

	"github.com/peaql/peaql/sql"
)

// sumBuffer accumulates in Decimal regardless of input DType, matching
// spec.md §4.6's "avg (Decimal-accumulating)" note — sum follows the same
// rule so repeated addition of Real inputs does not drift.
type sumBuffer struct {
	total decimal.Decimal
	any   bool
	typ   sql.DType
}

func (b *sumBuffer) Update(ctx *sql.Context, args []sql.Value) error {
	v := args[0]
	if v.IsNull() {
		return nil
	}
	b.any = true
	if b.typ == sql.Null {
		b.typ = v.Type
	} else if v.Type != b.typ {
		b.typ = sql.Real
	}
	b.total = b.total.Add(valueToDecimal(v))
	return nil
}

func (b *sumBuffer) Eval(ctx *sql.Context) (sql.Value, error) {
	if !b.any {
		return sql.NullValue, nil
	}
	switch b.typ {
	case sql.Integer:
		return sql.NewInteger(b.total.IntPart()), nil
	case sql.Decimal:
		return sql.NewDecimalValue(b.total), nil
	default:
		f, _ := b.total.Float64()
		return sql.NewReal(f), nil
	}
}

func (b *sumBuffer) Dispose() {}

type sumAggregator struct{}

func (sumAggregator) NewBuffer() sql.AggregatorBuffer { return &sumBuffer{} }

func valueToDecimal(v sql.Value) decimal.Decimal {
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
