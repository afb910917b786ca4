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

import (
	"fmt"

	"github.com/peaql/peaql/sql"
)

// Parameter reads a prepared statement's bound placeholder value at
// execution time, spec.md §4.2 "text -> prepared statement (parse +
// capture SET options) -> compile ... -> resolve()". Index is 1-based,
// matching the parser's left-to-right `?` numbering.
type Parameter struct {
	Index int
	Typ   sql.DType
}

func NewParameter(index int, typ sql.DType) *Parameter { return &Parameter{Index: index, Typ: typ} }

func (p *Parameter) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	return ctx.Param(p.Index)
}

func (p *Parameter) Type() sql.DType        { return p.Typ }
func (p *Parameter) Children() []Expression { return nil }
func (p *Parameter) String() string         { return fmt.Sprintf("$%d", p.Index) }
