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

import "github.com/peaql/peaql/sql"

type extremeBuffer struct {
	best bool
	v    sql.Value
	less bool // true => min, false => max
}

func (b *extremeBuffer) Update(ctx *sql.Context, args []sql.Value) error {
	v := args[0]
	if v.IsNull() {
		return nil
	}
	if !b.best {
		b.v, b.best = v, true
		return nil
	}
	c := sql.Compare(v, b.v)
	if (b.less && c < 0) || (!b.less && c > 0) {
		b.v = v
	}
	return nil
}

func (b *extremeBuffer) Eval(ctx *sql.Context) (sql.Value, error) {
	if !b.best {
		return sql.NullValue, nil
	}
	return b.v, nil
}

func (b *extremeBuffer) Dispose() {}

type extremeAggregator struct{ less bool }

func (a extremeAggregator) NewBuffer() sql.AggregatorBuffer { return &extremeBuffer{less: a.less} }
