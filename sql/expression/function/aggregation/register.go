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

// Package aggregation implements PeaQL's aggregate and window-only
// functions plus the window-frame engine that drives them (spec.md §4.4,
// §4.5). Aggregator state is addressed through a stable handle into a
// per-group slot array rather than mutable node fields (spec.md §9
// "Aggregator state slots"); this package supplies the Aggregator/
// AggregatorBuffer implementations the compiler/evaluator allocate handles
// for.
package aggregation

import "github.com/peaql/peaql/sql"

func init() {
	sql.RegisterBuiltins(func(r *sql.FunctionRegistry) {
		r.RegisterAggregate("count", func(argType sql.DType) sql.Aggregator {
			return &countAggregator{star: argType == sql.Asterisk}
		})
		r.RegisterAggregate("sum", func(sql.DType) sql.Aggregator { return sumAggregator{} })
		r.RegisterAggregate("avg", func(sql.DType) sql.Aggregator { return avgAggregator{} })
		r.RegisterAggregate("min", func(sql.DType) sql.Aggregator { return extremeAggregator{less: true} })
		r.RegisterAggregate("max", func(sql.DType) sql.Aggregator { return extremeAggregator{less: false} })
		r.RegisterAggregate("first", func(sql.DType) sql.Aggregator { return firstLastAggregator{last: false} })
		r.RegisterAggregate("last", func(sql.DType) sql.Aggregator { return firstLastAggregator{last: true} })
		r.RegisterAggregate("group_concat", func(sql.DType) sql.Aggregator { return groupConcatAggregator{} })
		r.RegisterAggregate("array_agg", func(sql.DType) sql.Aggregator { return arrayAggAggregator{} })

		// row_number needs no compiled sub-expression, so it fits the
		// generic argType-keyed factory shape and is registered here.
		// rank/dense_rank/first_value/last_value/nth_value/lead/lag
		// (spec.md §4.6 "Window-only") each close over a compiled
		// expression or ORDER BY key the registry has no way to pass
		// through an AggregatorFactory(argType); sql/plan/window.go
		// recognizes those names directly and constructs them with the exported
		// NewRank/NewFirstValue/... constructors in window_functions.go
		// instead of going through FunctionRegistry.Aggregate.
		r.RegisterAggregate("row_number", func(sql.DType) sql.Aggregator { return NewRowNumber() })
	})
}
