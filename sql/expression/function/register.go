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

// Package function implements the built-in scalar operator and function
// library of spec.md §4.6: arithmetic, comparison, pattern matching,
// casts, string, temporal, numeric and miscellaneous functions. Each
// registers itself into a *sql.FunctionRegistry via sql.RegisterBuiltins,
// the same driver-registration idiom database/sql uses, so the sql
// package never imports this one.
package function

import "github.com/peaql/peaql/sql"

func init() {
	sql.RegisterBuiltins(func(r *sql.FunctionRegistry) {
		registerArithmetic(r)
		registerComparison(r)
		registerPattern(r)
		registerCasts(r)
		registerStrings(r)
		registerTemporal(r)
		registerNumeric(r)
		registerMisc(r)
	})
}
