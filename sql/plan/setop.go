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

import "github.com/peaql/peaql/sql"

// SetOpKind selects the combining rule of a UNION/INTERSECT/EXCEPT chain,
// spec.md §6.2's dialect grammar.
type SetOpKind int

const (
	Union SetOpKind = iota
	Intersect
	Except
)

// SetOp combines Left and Right's rows by Kind, deduplicating by whole-row
// equality unless All is set. Left and Right must share a schema shape;
// the output schema is Left's (column names follow the first arm, the
// common SQL convention spec.md leaves unstated).
type SetOp struct {
	Left, Right Node
	Kind        SetOpKind
	All         bool
}

func NewSetOp(left, right Node, kind SetOpKind, all bool) *SetOp {
	return &SetOp{Left: left, Right: right, Kind: kind, All: all}
}

func (s *SetOp) Schema() sql.Schema { return s.Left.Schema() }
func (s *SetOp) Children() []Node   { return []Node{s.Left, s.Right} }
func (s *SetOp) String() string     { return "SetOp" }

func (s *SetOp) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	left, err := rows(ctx, s.Left)
	if err != nil {
		return nil, err
	}
	right, err := rows(ctx, s.Right)
	if err != nil {
		return nil, err
	}

	var out []sql.Row
	switch s.Kind {
	case Union:
		out = append(out, left...)
		out = append(out, right...)
		if !s.All {
			out = dedupeRows(out)
		}
	case Intersect:
		mset := rowMultiset(right)
		for _, r := range left {
			h := argHash([]sql.Value(r))
			rc := findRowCount(mset[h], []sql.Value(r))
			if rc != nil && rc.count > 0 {
				out = append(out, r)
				if !s.All {
					rc.count = 0
				} else {
					rc.count--
				}
			}
		}
	case Except:
		mset := rowMultiset(right)
		for _, r := range left {
			h := argHash([]sql.Value(r))
			rc := findRowCount(mset[h], []sql.Value(r))
			if rc != nil && rc.count > 0 {
				if s.All {
					rc.count--
				}
				continue
			}
			out = append(out, r)
		}
		if !s.All {
			out = dedupeRows(out)
		}
	}
	return sql.RowsToRowIter(out...), nil
}

// rowCount pairs a row's full value tuple with its remaining multiplicity,
// so Intersect/Except can confirm a hash-bucket hit with Value-equality
// (spec.md §4.4's Value-equality relation) before consuming it.
type rowCount struct {
	values []sql.Value
	count  int
}

func rowMultiset(rows []sql.Row) map[uint64][]*rowCount {
	m := map[uint64][]*rowCount{}
	for _, r := range rows {
		h := argHash([]sql.Value(r))
		rc := findRowCount(m[h], []sql.Value(r))
		if rc == nil {
			rc = &rowCount{values: []sql.Value(r)}
			m[h] = append(m[h], rc)
		}
		rc.count++
	}
	return m
}

func findRowCount(bucket []*rowCount, values []sql.Value) *rowCount {
	for _, rc := range bucket {
		if keysEqual(rc.values, values) {
			return rc
		}
	}
	return nil
}

func dedupeRows(in []sql.Row) []sql.Row {
	seen := map[uint64][][]sql.Value{}
	out := make([]sql.Row, 0, len(in))
	for _, r := range in {
		h := argHash([]sql.Value(r))
		if keysEqual2D(seen[h], []sql.Value(r)) {
			continue
		}
		seen[h] = append(seen[h], []sql.Value(r))
		out = append(out, r)
	}
	return out
}
