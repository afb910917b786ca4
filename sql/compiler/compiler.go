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
	"strings"

	"github.com/peaql/peaql/sql"
	"github.com/peaql/peaql/sql/parser/ast"
	"github.com/peaql/peaql/sql/plan"
)

// Compiler lowers parsed statements into a plan.Node tree against a fixed
// Catalog/Settings pair, spec.md §4.2 "compile" / §4.3.
type Compiler struct {
	Settings sql.Settings
}

// New builds a Compiler under settings. The catalog a statement compiles
// against is supplied per call to Compile, since a query's DDL-free
// compile isolates it from concurrent catalog mutation via
// Catalog.ShallowCopy (spec.md §4.2).
func New(settings sql.Settings) *Compiler {
	return &Compiler{Settings: settings}
}

// Compile lowers a batch of parsed statements into a single plan.Node,
// wrapping more than one in plan.Statements (spec.md §4.4 "A Statements
// root executes its children sequentially and returns the last result").
func (c *Compiler) Compile(catalog *sql.Catalog, stmts []ast.Statement) (plan.Node, error) {
	if len(stmts) == 0 {
		return nil, sql.ErrCompilation.New("no statement to compile")
	}
	if len(stmts) == 1 {
		return c.compileStatement(catalog, stmts[0])
	}
	nodes := make([]plan.Node, len(stmts))
	for i, s := range stmts {
		n, err := c.compileStatement(catalog, s)
		if err != nil {
			return nil, err
		}
		nodes[i] = n
	}
	return plan.NewStatements(nodes), nil
}

func (c *Compiler) compileStatement(catalog *sql.Catalog, s ast.Statement) (plan.Node, error) {
	switch v := s.(type) {
	case *ast.SelectStatement:
		return c.compileSelect(catalog, v, nil)
	case *ast.CreateTableStatement:
		return c.compileCreateTable(catalog, v)
	case *ast.InsertStatement:
		return c.compileInsert(catalog, v)
	case *ast.UpdateStatement:
		return c.compileUpdate(catalog, v)
	default:
		return nil, sql.ErrInternal.New(fmt.Sprintf("unhandled statement %T", s))
	}
}

// TypeByName is the exported form of typeByName, used by the root peaql
// package to resolve a persisted table model's column type strings
// (spec.md §6.3 "type from the cast-name registry") without duplicating
// the keyword/DType/cast-name mapping.
func TypeByName(name string) (typ sql.DType, castName string, ok bool) {
	return typeByName(name)
}

// typeByName maps a CREATE TABLE column type keyword to its DType and to
// the canonical cast function name that coerces a value into it, mirroring
// the exact aliases registered by sql/expression/function/casts.go
// registerCasts. castName is what ddl.go's per-value INSERT coercion calls
// through compileCall.
func typeByName(name string) (typ sql.DType, castName string, ok bool) {
	switch strings.ToLower(name) {
	case "int", "integer":
		return sql.Integer, "integer", true
	case "real", "number":
		return sql.Real, "real", true
	case "numeric", "decimal":
		return sql.Decimal, "decimal", true
	case "boolean":
		return sql.Boolean, "boolean", true
	case "text", "string":
		return sql.String, "string", true
	case "datetime", "timestamp":
		return sql.DateTime, "datetime", true
	case "timestamptz":
		return sql.DateTime, "timestamptz", true
	case "interval":
		return sql.Duration, "interval", true
	default:
		return sql.Object, "", false
	}
}
