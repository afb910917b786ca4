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

import "io"

// Row is a single result tuple: one Value per column of the owning Schema.
type Row []Value

// NewRow builds a Row from already-tagged Values.
func NewRow(values ...Value) Row { return Row(values) }

// Copy returns a shallow copy of the row, safe to retain across iterations
// that reuse a buffer.
func (r Row) Copy() Row {
	out := make(Row, len(r))
	copy(out, r)
	return out
}

// RowIter is the pull-based row source every plan node exposes. Next
// returns io.EOF (value nil) once exhausted. Close releases any resources
// (materialized buffers, subquery caches) the iterator holds.
type RowIter interface {
	Next(ctx *Context) (Row, error)
	Close(ctx *Context) error
}

// sliceRowIter adapts a fixed, already-materialized row slice to RowIter.
type sliceRowIter struct {
	rows []Row
	pos  int
}

func (i *sliceRowIter) Next(ctx *Context) (Row, error) {
	if i.pos >= len(i.rows) {
		return nil, io.EOF
	}
	r := i.rows[i.pos]
	i.pos++
	return r, nil
}

func (i *sliceRowIter) Close(ctx *Context) error { return nil }

// RowsToRowIter returns a RowIter over a fixed slice of rows, the
// materialized-data equivalent of a scan.
func RowsToRowIter(rows ...Row) RowIter {
	return &sliceRowIter{rows: rows}
}

// CollectRows drains iter into a slice, closing it once exhausted or on
// the first error.
func CollectRows(ctx *Context, iter RowIter) ([]Row, error) {
	var out []Row
	for {
		r, err := iter.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			iter.Close(ctx)
			return nil, err
		}
		out = append(out, r)
	}
	return out, iter.Close(ctx)
}
