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
	"github.com/peaql/peaql/sql"
	"github.com/peaql/peaql/sql/expression"
)

// Project evaluates a fixed list of target expressions per input row,
// spec.md §4.3 "the target list" / §4.4's final re-project to visible
// columns.
type Project struct {
	Child   Node
	Targets []expression.Expression
	schema  sql.Schema
}

// NewProject builds a Project whose output schema is schema, paired
// column-by-column with Targets; schema must be the same length as targets.
func NewProject(child Node, targets []expression.Expression, schema sql.Schema) *Project {
	return &Project{Child: child, Targets: targets, schema: schema}
}

func (p *Project) Schema() sql.Schema { return p.schema }

func (p *Project) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	in, err := rows(ctx, p.Child)
	if err != nil {
		return nil, err
	}
	out := make([]sql.Row, len(in))
	for i, r := range in {
		if err := ctx.CheckCancelled(); err != nil {
			return nil, err
		}
		row := make(sql.Row, len(p.Targets))
		for j, t := range p.Targets {
			v, err := t.Eval(ctx, r)
			if err != nil {
				return nil, err
			}
			row[j] = v
		}
		out[i] = row
	}
	return sql.RowsToRowIter(out...), nil
}

func (p *Project) Children() []Node { return []Node{p.Child} }
func (p *Project) String() string   { return "Project" }

// VisibleProject drops the compiler's hidden helper columns (those added
// for GROUP BY/ORDER BY/PARTITION BY/PIVOT BY keys not present in the
// original SELECT list) from a row already shaped by an upstream node,
// spec.md §4.3 steps 6-7.
type VisibleProject struct {
	Child   Node
	Indices []int
	schema  sql.Schema
}

func NewVisibleProject(child Node) *VisibleProject {
	full := child.Schema()
	var idx []int
	schema := make(sql.Schema, 0, len(full))
	for i, c := range full {
		if c.Hidden {
			continue
		}
		idx = append(idx, i)
		schema = append(schema, c)
	}
	return &VisibleProject{Child: child, Indices: idx, schema: schema}
}

func (v *VisibleProject) Schema() sql.Schema { return v.schema }

func (v *VisibleProject) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	in, err := rows(ctx, v.Child)
	if err != nil {
		return nil, err
	}
	out := make([]sql.Row, len(in))
	for i, r := range in {
		row := make(sql.Row, len(v.Indices))
		for j, idx := range v.Indices {
			row[j] = r[idx]
		}
		out[i] = row
	}
	return sql.RowsToRowIter(out...), nil
}

func (v *VisibleProject) Children() []Node { return []Node{v.Child} }
func (v *VisibleProject) String() string   { return "VisibleProject" }
