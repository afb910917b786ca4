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

// firstLastBuffer keeps either the first or the last value Update saw,
// including NULLs (spec.md §4.6's "first"/"last" do not skip nulls the way
// min/max/sum do, matching first_value/last_value semantics for the
// non-window case).
type firstLastBuffer struct {
	set  bool
	v    sql.Value
	last bool
}

func (b *firstLastBuffer) Update(ctx *sql.Context, args []sql.Value) error {
	if b.last || !b.set {
		b.v = args[0]
		b.set = true
	}
	return nil
}

func (b *firstLastBuffer) Eval(ctx *sql.Context) (sql.Value, error) {
	if !b.set {
		return sql.NullValue, nil
	}
	return b.v, nil
}

func (b *firstLastBuffer) Dispose() {}

type firstLastAggregator struct{ last bool }

func (a firstLastAggregator) NewBuffer() sql.AggregatorBuffer { return &firstLastBuffer{last: a.last} }
