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

package sql

// Column is a named resolver over a Row: Source identifies which table
// (possibly a join alias) the column belongs to, Index is its position in
// that relation's underlying row, and Type is its declared DType. A base
// column just reads Index from the row; an attribute column (Parent set)
// computes its value from a structured parent column at evaluation time,
// so the Index/Parent pair is interpreted by the expression layer
// (expression.GetField), not by Column itself.
type Column struct {
	Name   string
	Source string
	Type   DType
	Index  int

	// Parent is non-empty when this Column is an attribute projection of a
	// structured column (e.g. "created_at.year"); it names the parent
	// column so the compiler can rewrite v.field into a typed attribute
	// access (spec.md §4.3 "Attribute access").
	Parent string

	Nullable bool
	Hidden   bool
}

// Schema is the ordered column vector of a plan node's output, invariant
// (ii) of spec.md §3: it matches the row shape the node actually produces.
type Schema []*Column

func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}

// IndexOf returns the position of a column by name, or -1. When source is
// non-empty, only columns from that source match.
func (s Schema) IndexOf(name, source string) int {
	for i, c := range s {
		if c.Name == name && (source == "" || c.Source == source) {
			return i
		}
	}
	return -1
}

// Visible returns the subset of the schema not marked Hidden, preserving
// order; hidden targets are columns appended by the compiler to satisfy
// GROUP BY/ORDER BY/PARTITION BY/PIVOT BY references that aren't already
// in the SELECT list (spec.md §4.3 steps 6-7, §4.4 "Ordering... Project to
// visible columns").
func (s Schema) Visible() Schema {
	out := make(Schema, 0, len(s))
	for _, c := range s {
		if !c.Hidden {
			out = append(out, c)
		}
	}
	return out
}
