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

// countBuffer counts rows (count(*)) or non-null argument tuples
// (count(x)).
type countBuffer struct {
	star bool
	n    int64
}

func (b *countBuffer) Update(ctx *sql.Context, args []sql.Value) error {
	if b.star {
		b.n++
		return nil
	}
	for _, a := range args {
		if a.IsNull() {
			return nil
		}
	}
	b.n++
	return nil
}

func (b *countBuffer) Eval(ctx *sql.Context) (sql.Value, error) { return sql.NewInteger(b.n), nil }
func (b *countBuffer) Dispose()                                 {}

type countAggregator struct{ star bool }

func (a *countAggregator) NewBuffer() sql.AggregatorBuffer { return &countBuffer{star: a.star} }

// count(distinct x) needs no special aggregator: AggCall.Distinct is
// handled by groupby.go's per-call dedup set before Update is ever called,
// so countBuffer just counts the non-null tuples that get through (spec.md
// §4.6; DESIGN.md Open Question decision 1 excludes NULL from the distinct
// set, which countBuffer already does).
