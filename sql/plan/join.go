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
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/peaql/peaql/sql"
	"github.com/peaql/peaql/sql/expression"
)

// JoinKind selects a Join's combination semantics, spec.md §4.3's JOIN
// forms.
type JoinKind int

const (
	InnerJoin JoinKind = iota
	LeftJoin
	RightJoin
	FullJoin
	CrossJoin
	AntiJoin
)

// Join combines Left and Right rows under Cond. Equi-join conditions (a
// top-level AND of `left.col = right.col` comparisons) take a hash-probe
// fast path keyed by xxhash over the join key's canonical bytes; anything
// else falls back to a nested-loop scan evaluating Cond directly, spec.md
// §4.3 "JOIN ... ON".
type Join struct {
	Kind        JoinKind
	Left, Right Node
	Cond        expression.Expression
	// EquiLeft/EquiRight are compiled key expressions extracted from Cond
	// for the hash fast path; both nil when no equi-join shape is found.
	EquiLeft, EquiRight []expression.Expression
	schema              sql.Schema
}

func NewJoin(kind JoinKind, left, right Node, cond expression.Expression) *Join {
	schema := append(append(sql.Schema{}, left.Schema()...), right.Schema()...)
	j := &Join{Kind: kind, Left: left, Right: right, Cond: cond, schema: schema}
	if kind == InnerJoin || kind == LeftJoin {
		j.EquiLeft, j.EquiRight = extractEquiKeys(cond, left.Schema(), right.Schema())
	}
	return j
}

func (j *Join) Schema() sql.Schema { return j.schema }

func (j *Join) Children() []Node { return []Node{j.Left, j.Right} }
func (j *Join) String() string   { return "Join" }

func (j *Join) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	left, err := rows(ctx, j.Left)
	if err != nil {
		return nil, err
	}
	right, err := rows(ctx, j.Right)
	if err != nil {
		return nil, err
	}

	switch j.Kind {
	case CrossJoin:
		return sql.RowsToRowIter(j.crossJoin(left, right)...), nil
	case AntiJoin:
		return sql.RowsToRowIter(j.antiJoin(ctx, left, right)...), nil
	}

	if j.EquiLeft != nil {
		out, err := j.hashJoin(ctx, left, right)
		return sql.RowsToRowIter(out...), err
	}
	out, err := j.nestedLoopJoin(ctx, left, right)
	return sql.RowsToRowIter(out...), err
}

func (j *Join) crossJoin(left, right []sql.Row) []sql.Row {
	out := make([]sql.Row, 0, len(left)*len(right))
	for _, l := range left {
		for _, r := range right {
			out = append(out, combine(l, r))
		}
	}
	return out
}

func combine(l, r sql.Row) sql.Row {
	row := make(sql.Row, 0, len(l)+len(r))
	row = append(row, l...)
	row = append(row, r...)
	return row
}

func nullRow(n int) sql.Row {
	row := make(sql.Row, n)
	for i := range row {
		row[i] = sql.NullValue
	}
	return row
}

func (j *Join) nestedLoopJoin(ctx *sql.Context, left, right []sql.Row) ([]sql.Row, error) {
	var out []sql.Row
	rightNCols := len(j.Right.Schema())
	leftNCols := len(j.Left.Schema())
	rightMatched := make([]bool, len(right))
	for _, l := range left {
		matched := false
		for ri, r := range right {
			combined := combine(l, r)
			v, err := j.Cond.Eval(ctx, combined)
			if err != nil {
				return nil, err
			}
			if !v.IsNull() && v.AsBoolean() {
				out = append(out, combined)
				matched = true
				rightMatched[ri] = true
			}
		}
		if !matched && (j.Kind == LeftJoin || j.Kind == FullJoin) {
			out = append(out, combine(l, nullRow(rightNCols)))
		}
	}
	if j.Kind == FullJoin || j.Kind == RightJoin {
		for ri, r := range right {
			if !rightMatched[ri] {
				out = append(out, combine(nullRow(leftNCols), r))
			}
		}
	}
	return out, nil
}

func (j *Join) antiJoin(ctx *sql.Context, left, right []sql.Row) []sql.Row {
	var out []sql.Row
	for _, l := range left {
		matched := false
		for _, r := range right {
			v, err := j.Cond.Eval(ctx, combine(l, r))
			if err == nil && !v.IsNull() && v.AsBoolean() {
				matched = true
				break
			}
		}
		if !matched {
			out = append(out, l)
		}
	}
	return out
}

// hashJoin builds a bucket index on the right side keyed by xxhash of the
// join key's canonical byte encoding, then probes once per left row,
// re-checking Cond.Eval on each candidate pair so any additional
// non-equality conjuncts in the ON clause still apply.
func (j *Join) hashJoin(ctx *sql.Context, left, right []sql.Row) ([]sql.Row, error) {
	buckets := map[uint64][]int{}
	for ri, r := range right {
		keys := make([]sql.Value, len(j.EquiRight))
		for i, e := range j.EquiRight {
			v, err := e.Eval(ctx, r)
			if err != nil {
				return nil, err
			}
			keys[i] = v
		}
		h, ok := hashKey(keys)
		if !ok {
			continue // a null key never matches an equi-join condition
		}
		buckets[h] = append(buckets[h], ri)
	}

	var out []sql.Row
	rightNCols := len(j.Right.Schema())
	for _, l := range left {
		keys := make([]sql.Value, len(j.EquiLeft))
		matched := false
		valid := true
		for i, e := range j.EquiLeft {
			v, err := e.Eval(ctx, l)
			if err != nil {
				return nil, err
			}
			if v.IsNull() {
				valid = false
			}
			keys[i] = v
		}
		if valid {
			h, _ := hashKey(keys)
			for _, ri := range buckets[h] {
				combined := combine(l, right[ri])
				v, err := j.Cond.Eval(ctx, combined)
				if err != nil {
					return nil, err
				}
				if !v.IsNull() && v.AsBoolean() {
					out = append(out, combined)
					matched = true
				}
			}
		}
		if !matched && j.Kind == LeftJoin {
			out = append(out, combine(l, nullRow(rightNCols)))
		}
	}
	return out, nil
}

// hashKey renders a join key tuple to a stable uint64 digest. Returns
// false if any component is NULL (NULL never equals NULL in an equi-join
// probe).
func hashKey(keys []sql.Value) (uint64, bool) {
	var buf []byte
	for _, k := range keys {
		if k.IsNull() {
			return 0, false
		}
		buf = append(buf, []byte(fmt.Sprintf("%v|%T\x00", canonical(k), k.Type))...)
	}
	_ = binary.LittleEndian
	return xxhash.Sum64(buf), true
}

// canonical normalizes a Value to the representation used by Equal, so
// equal values hash identically regardless of numeric sub-type.
func canonical(v sql.Value) interface{} {
	switch v.Type {
	case sql.Integer, sql.Real, sql.Decimal:
		return v.AsDecimal().String()
	case sql.DateTime, sql.Duration:
		return v.Raw()
	default:
		return v.Raw()
	}
}

// extractEquiKeys walks a top-level conjunction looking for `=`
// comparisons between a column from leftSchema and a column from
// rightSchema, returning the compiled key expressions on each side in
// matching order. Returns nil, nil if Cond is not purely such a
// conjunction (the nested-loop fallback then evaluates Cond directly).
func extractEquiKeys(cond expression.Expression, leftSchema, rightSchema sql.Schema) ([]expression.Expression, []expression.Expression) {
	if cond == nil {
		return nil, nil
	}
	var conjuncts []expression.Expression
	var walk func(e expression.Expression)
	walk = func(e expression.Expression) {
		if and, ok := e.(*expression.And); ok {
			walk(and.Left)
			walk(and.Right)
			return
		}
		conjuncts = append(conjuncts, e)
	}
	walk(cond)

	var lks, rks []expression.Expression
	for _, c := range conjuncts {
		call, ok := c.(*expression.Call)
		if !ok || call.Name != "=" || len(call.Args) != 2 {
			return nil, nil
		}
		lSide, rSide := sideOf(call.Args[0], leftSchema, rightSchema), sideOf(call.Args[1], leftSchema, rightSchema)
		switch {
		case lSide == 1 && rSide == 2:
			lks = append(lks, call.Args[0])
			rks = append(rks, localizeRightKey(call.Args[1], len(leftSchema)))
		case lSide == 2 && rSide == 1:
			lks = append(lks, call.Args[1])
			rks = append(rks, localizeRightKey(call.Args[0], len(leftSchema)))
		default:
			return nil, nil
		}
	}
	if len(lks) == 0 {
		return nil, nil
	}
	return lks, rks
}

// localizeRightKey rewrites a right-side equi-join key, resolved at compile
// time against the combined left++right schema (sql/compiler/select.go,
// sql/compiler/env.go's resolveDefault), into a GetField indexed against the
// right child's row alone, the shape hashJoin evaluates it against. e is
// always a *expression.GetField here: sideOf only returns a non-zero side
// for GetField expressions.
func localizeRightKey(e expression.Expression, leftLen int) expression.Expression {
	gf := e.(*expression.GetField)
	return expression.NewGetField(gf.Source, gf.Name, gf.Index-leftLen, gf.Typ)
}

// sideOf reports whether e reads only from leftSchema (1), only from
// rightSchema (2), or neither/mixed (0).
func sideOf(e expression.Expression, leftSchema, rightSchema sql.Schema) int {
	gf, ok := e.(*expression.GetField)
	if !ok {
		return 0
	}
	if leftSchema.IndexOf(gf.Name, gf.Source) >= 0 {
		return 1
	}
	if rightSchema.IndexOf(gf.Name, gf.Source) >= 0 {
		return 2
	}
	return 0
}
