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

// Package peaql is the embeddable entry point: build a Catalog, Prepare
// and Compile query text against it, Execute the resulting plan, spec.md
// §6.1's conceptual public API (Context.prepare/compile/execute).
package peaql

import (
	"sync"
	"time"

	"github.com/peaql/peaql/sql"
	"github.com/peaql/peaql/sql/compiler"
	"github.com/peaql/peaql/sql/parser"
	"github.com/peaql/peaql/sql/parser/ast"
	"github.com/peaql/peaql/sql/plan"

	_ "github.com/peaql/peaql/sql/expression/function"
	_ "github.com/peaql/peaql/sql/expression/function/aggregation"
)

// Config carries engine-wide feature toggles, spec.md §4.2 "Settings
// recognized", mirroring the teacher's sqle.Config shape.
type Config struct {
	// IsReadOnly rejects CREATE TABLE/INSERT/UPDATE at Execute time.
	IsReadOnly bool
	// Settings seeds every PreparedStatement's default Settings (spec.md
	// §4.2); a statement-local "SET name = value" (when the grammar
	// grows one) would override these per call.
	Settings sql.Settings
	// SlowQueryThresholdMillis logs (logrus.WarnLevel) any Execute whose
	// wall time exceeds it, 0 disables the check (SPEC_FULL.md §4.7).
	SlowQueryThresholdMillis int64
}

// PreparedStatement is the output of Prepare: parsed statements plus the
// settings that scope their compilation, spec.md §4.2
// "PreparedStatement{query, ast, parseErrors, settings}".
type PreparedStatement struct {
	Query      string
	Statements []ast.Statement
	ParseErrs  []string
	Settings   sql.Settings
}

// PreparedDataCache caches a PreparedStatement by its exact query text, so
// repeated Execute calls against the same text skip re-parsing, mirroring
// the teacher's session-keyed sqle.PreparedDataCache collapsed to PeaQL's
// session-less, single-catalog model.
type PreparedDataCache struct {
	mu   sync.Mutex
	data map[string]*PreparedStatement
}

func NewPreparedDataCache() *PreparedDataCache {
	return &PreparedDataCache{data: make(map[string]*PreparedStatement)}
}

func (c *PreparedDataCache) get(query string) (*PreparedStatement, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.data[query]
	return p, ok
}

func (c *PreparedDataCache) put(query string, p *PreparedStatement) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[query] = p
}

// Uncache drops a cached PreparedStatement for query, if any.
func (c *PreparedDataCache) Uncache(query string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, query)
}

// Engine ties a Catalog to a Config and a PreparedDataCache, spec.md
// §4.2's prepare/compile/execute pipeline.
type Engine struct {
	Catalog           *sql.Catalog
	Config            Config
	PreparedDataCache *PreparedDataCache
}

// New builds an Engine over catalog with cfg. A nil cfg is read-write with
// no slow-query threshold; a nil cfg, or one whose Settings.Extra is nil,
// gets sql.DefaultSettings().
func New(catalog *sql.Catalog, cfg *Config) *Engine {
	if cfg == nil {
		cfg = &Config{Settings: sql.DefaultSettings()}
	}
	if cfg.Settings.Extra == nil {
		cfg.Settings = sql.DefaultSettings()
	}
	return &Engine{
		Catalog:           catalog,
		Config:            *cfg,
		PreparedDataCache: NewPreparedDataCache(),
	}
}

// NewDefault builds an Engine over a fresh, empty Catalog.
func NewDefault() *Engine {
	return New(sql.NewCatalog(), nil)
}

// Prepare parses query into a PreparedStatement and caches it by its
// exact text, spec.md §4.2 "prepare(text) -> PreparedStatement {...}; do
// not touch the catalog". No SET statement exists in this grammar
// (DESIGN.md Open Question Decision 8), so Settings is always a copy of
// e.Config.Settings; the field is carried for forward compatibility with
// a future statement-scoped SET.
func (e *Engine) Prepare(query string) (*PreparedStatement, error) {
	if cached, ok := e.PreparedDataCache.get(query); ok {
		return cached, nil
	}
	stmts, errs := parser.ParseStatements(query)
	if len(errs) > 0 {
		return nil, sql.ErrParse.New(query, errs[0])
	}
	prep := &PreparedStatement{
		Query:      query,
		Statements: stmts,
		ParseErrs:  errs,
		Settings:   e.Config.Settings,
	}
	e.PreparedDataCache.put(query, prep)
	return prep, nil
}

// Compile lowers a PreparedStatement into a plan.Node against e.Catalog,
// spec.md §4.2 "compile(prepared|ast, parameters?, options?) -> Plan".
// A batch made only of SELECTs compiles against e.Catalog.ShallowCopy();
// a batch holding any DDL/DML compiles against the live e.Catalog (so a
// later statement in the same prepared batch observes an earlier CREATE
// TABLE).
func (e *Engine) Compile(prep *PreparedStatement) (plan.Node, error) {
	if len(prep.ParseErrs) > 0 {
		return nil, sql.ErrParse.New(prep.Query, prep.ParseErrs[0])
	}
	if e.Config.IsReadOnly {
		for _, s := range prep.Statements {
			switch s.(type) {
			case *ast.CreateTableStatement, *ast.InsertStatement, *ast.UpdateStatement:
				return nil, sql.ErrProgramming.New("engine is read-only")
			}
		}
	}
	catalog := e.Catalog.ShallowCopy()
	for _, s := range prep.Statements {
		if _, ok := s.(*ast.SelectStatement); !ok {
			catalog = e.Catalog
			break
		}
	}
	c := compiler.New(prep.Settings)
	return c.Compile(catalog, prep.Statements)
}

// Execute compiles query (reusing a cached PreparedStatement when
// available) and resolves the resulting plan, binding params (positional,
// 1-indexed, spec.md §4.2 "Placeholders") to the execution Context.
// Execute returns the plan's output schema and materialized rows; for
// plain DML/DDL with no RETURNING that is the single `rows_affected` row
// plan.Insert/plan.Update/plan.CreateTable already produce.
func (e *Engine) Execute(ctx *sql.Context, query string, params ...sql.Value) (sql.Schema, []sql.Row, error) {
	start := time.Now()
	prep, err := e.Prepare(query)
	if err != nil {
		return nil, nil, err
	}
	node, err := e.Compile(prep)
	if err != nil {
		return nil, nil, err
	}

	runCtx := ctx
	if len(params) > 0 {
		runCtx = ctx.WithParams(params)
	}

	iter, err := node.RowIter(runCtx)
	if err != nil {
		return nil, nil, err
	}
	rows, err := sql.CollectRows(runCtx, iter)
	if err != nil {
		return nil, nil, err
	}

	if elapsed := time.Since(start).Milliseconds(); e.Config.SlowQueryThresholdMillis > 0 && elapsed > e.Config.SlowQueryThresholdMillis {
		runCtx.Logger.WithField("query", query).WithField("elapsed_ms", elapsed).Warn("slow query")
	}

	return node.Schema(), rows, nil
}
