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

// arrayAggBuffer collects every value seen (including NULLs) into a List
// value, spec.md §4.6 "array_agg".
type arrayAggBuffer struct {
	elems []sql.Value
}

func (b *arrayAggBuffer) Update(ctx *sql.Context, args []sql.Value) error {
	b.elems = append(b.elems, args[0])
	return nil
}

func (b *arrayAggBuffer) Eval(ctx *sql.Context) (sql.Value, error) {
	return sql.NewList(b.elems), nil
}

func (b *arrayAggBuffer) Dispose() { b.elems = nil }

type arrayAggAggregator struct{}

func (arrayAggAggregator) NewBuffer() sql.AggregatorBuffer { return &arrayAggBuffer{} }
