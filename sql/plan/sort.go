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

package plan

import (
	"sort"

	"github.com/peaql/peaql/sql"
	"github.com/peaql/peaql/sql/expression"
)

// SortKey is one compiled ORDER BY term.
type SortKey struct {
	Expr       expression.Expression
	Desc       bool
	NullsFirst bool
}

// Sort orders Child's rows by Keys, stably, spec.md §4.4 "Ordering".
// Sort applies each key's NullsFirst flag as given. Open Question
// decision 2 (NULLS LAST for ASC and NULLS FIRST for DESC when a key's
// NULLS placement is unspecified) is applied by the compiler's
// defaultNullsFirst (sql/compiler/finish.go) when it builds the keys.
type Sort struct {
	Child Node
	Keys  []SortKey
}

func NewSort(child Node, keys []SortKey) *Sort { return &Sort{Child: child, Keys: keys} }

func (s *Sort) Schema() sql.Schema { return s.Child.Schema() }
func (s *Sort) Children() []Node   { return []Node{s.Child} }
func (s *Sort) String() string     { return "Sort" }

func (s *Sort) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	in, err := rows(ctx, s.Child)
	if err != nil {
		return nil, err
	}
	keyVals := make([][]sql.Value, len(in))
	var evalErr error
	for i, r := range in {
		vs := make([]sql.Value, len(s.Keys))
		for j, k := range s.Keys {
			v, err := k.Expr.Eval(ctx, r)
			if err != nil {
				evalErr = err
			}
			vs[j] = v
		}
		keyVals[i] = vs
	}
	if evalErr != nil {
		return nil, evalErr
	}
	idx := make([]int, len(in))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ia, ib := idx[a], idx[b]
		for j, k := range s.Keys {
			va, vb := keyVals[ia][j], keyVals[ib][j]
			if sql.Equal(va, vb) {
				continue
			}
			return sql.Less(va, vb, k.Desc, k.NullsFirst)
		}
		return false
	})
	out := make([]sql.Row, len(in))
	for i, pos := range idx {
		out[i] = in[pos]
	}
	return sql.RowsToRowIter(out...), nil
}
