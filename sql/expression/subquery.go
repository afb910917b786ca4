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

package expression

import "github.com/peaql/peaql/sql"

// SubqueryPlan is the minimal surface Subquery expressions need from a
// compiled plan.Query node, named separately to avoid an import cycle
// between sql/expression and sql/plan (plan.Query itself holds
// expression.Expression targets).
type SubqueryPlan interface {
	Schema() sql.Schema
	RowIter(ctx *sql.Context, outerRow sql.Row, outerSchema sql.Schema, outerTable string) (sql.RowIter, error)
}

// subqueryBase captures a subquery adapter's one compiled plan, re-run per
// outer row; no result is cached, not even for a non-correlated subquery
// (spec.md §1 in-memory scope keeps the data small).
type subqueryBase struct {
	Plan        SubqueryPlan
	OuterTable  string
	OuterSchema sql.Schema
}

func (s *subqueryBase) rows(ctx *sql.Context, row sql.Row) ([]sql.Row, error) {
	iter, err := s.Plan.RowIter(ctx, row, s.OuterSchema, s.OuterTable)
	if err != nil {
		return nil, err
	}
	return sql.CollectRows(ctx, iter)
}

// SubqueryValue adapts a 1x1 subquery result to a scalar Value, erroring
// if more than one row comes back (spec.md GLOSSARY "SubqueryValue").
type SubqueryValue struct {
	subqueryBase
	Typ sql.DType
}

func NewSubqueryValue(plan SubqueryPlan, outerTable string, outerSchema sql.Schema, typ sql.DType) *SubqueryValue {
	return &SubqueryValue{subqueryBase{plan, outerTable, outerSchema}, typ}
}

func (s *SubqueryValue) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	rows, err := s.rows(ctx, row)
	if err != nil {
		return sql.NullValue, err
	}
	if len(rows) == 0 {
		return sql.NullValue, nil
	}
	if len(rows) > 1 {
		return sql.NullValue, sql.ErrTooManyRows.New()
	}
	if len(rows[0]) != 1 {
		return sql.NullValue, sql.ErrScalarSubquery.New(len(rows[0]))
	}
	return rows[0][0], nil
}

func (s *SubqueryValue) Type() sql.DType        { return s.Typ }
func (s *SubqueryValue) Children() []Expression { return nil }
func (s *SubqueryValue) String() string         { return "(subquery)" }

// SubqueryList adapts a single-column subquery result to a List Value, for
// use as the right-hand side of IN (spec.md GLOSSARY "SubqueryList").
type SubqueryList struct {
	subqueryBase
	Typ sql.DType
}

func NewSubqueryList(plan SubqueryPlan, outerTable string, outerSchema sql.Schema, typ sql.DType) *SubqueryList {
	return &SubqueryList{subqueryBase{plan, outerTable, outerSchema}, typ}
}

func (s *SubqueryList) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	rows, err := s.rows(ctx, row)
	if err != nil {
		return sql.NullValue, err
	}
	vals := make([]sql.Value, 0, len(rows))
	for _, r := range rows {
		if len(r) != 1 {
			return sql.NullValue, sql.ErrScalarSubquery.New(len(r))
		}
		vals = append(vals, r[0])
	}
	return sql.NewList(vals), nil
}

func (s *SubqueryList) Type() sql.DType        { return sql.List }
func (s *SubqueryList) Children() []Expression { return nil }
func (s *SubqueryList) String() string         { return "(subquery list)" }
