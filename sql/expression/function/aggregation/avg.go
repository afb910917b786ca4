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

// avgBuffer accumulates a running Decimal sum and count, per spec.md §4.6
// ("avg (Decimal-accumulating)").
type avgBuffer struct {
	total decimal.Decimal
	n     int64
}

func (b *avgBuffer) Update(ctx *sql.Context, args []sql.Value) error {
	if args[0].IsNull() {
		return nil
	}
	b.total = b.total.Add(valueToDecimal(args[0]))
	b.n++
	return nil
}

func (b *avgBuffer) Eval(ctx *sql.Context) (sql.Value, error) {
	if b.n == 0 {
		return sql.NullValue, nil
	}
	return sql.NewDecimalValue(b.total.Div(decimal.NewFromInt(b.n))), nil
}

func (b *avgBuffer) Dispose() {}

type avgAggregator struct{}

func (avgAggregator) NewBuffer() sql.AggregatorBuffer { return &avgBuffer{} }
