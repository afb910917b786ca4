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

package compiler

import (
	"fmt"

	"github.com/peaql/peaql/sql"
	"github.com/peaql/peaql/sql/expression"
	"github.com/peaql/peaql/sql/parser"
	"github.com/peaql/peaql/sql/parser/ast"
)

// CompileStandaloneExpr parses and compiles a bare expression (not a full
// statement) against schema, for contexts outside an ordinary query: a
// persisted table model's constraint text, re-parsed and compiled on load
// (spec.md §6.3 "expr is re-parsed and compiled on load"). There is no
// exported single-expression parser entry point, so exprText rides in as
// a trivial one-target SELECT and the compiled target expression is
// returned, discarding the wrapper.
func CompileStandaloneExpr(settings sql.Settings, catalog *sql.Catalog, schema sql.Schema, exprText string) (expression.Expression, error) {
	p := parser.New("SELECT (" + exprText + ")")
	stmt := p.Parse()
	if errs := p.Errors(); len(errs) > 0 {
		return nil, sql.ErrParse.New(exprText, errs[0])
	}
	sel, ok := stmt.(*ast.SelectStatement)
	if !ok || len(sel.Targets) != 1 {
		return nil, sql.ErrCompilation.New(fmt.Sprintf("invalid constraint expression %q", exprText))
	}
	c := New(settings)
	env := newExprEnv(c, catalog, schema, nil)
	return env.compile(sel.Targets[0].Expr)
}
