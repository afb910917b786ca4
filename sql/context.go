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

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Context carries a query's execution-scoped state: cancellation, outer
// scope frames for correlated subquery resolution (spec.md §9 "Subquery
// correlation"), and diagnostics. One Context may be passed to several
// Engine.Execute calls in turn; it is not safe to share across concurrent
// queries.
type Context struct {
	context.Context

	Logger *logrus.Logger

	// scopes is a stack of outer evaluation frames, innermost last. A
	// correlated subquery's inner Context pushes the outer row keyed by
	// the outer table's name so GetField can resolve a reference to it
	// (spec.md §9: "implement as a stack of scope frames, not a global").
	scopes []scopeFrame

	// started is when this Context was created; Elapsed and QueryStarted
	// measure from it.
	started time.Time

	// Params holds a prepared statement's bound placeholder values,
	// 1-indexed by expression.Parameter against Params[i-1] (spec.md
	// §4.2 "Prepare").
	Params []Value
}

// WithParams returns a child Context bound to params for one Execute call.
func (c *Context) WithParams(params []Value) *Context {
	child := *c
	child.Params = params
	return &child
}

// Param returns the i'th (1-based) bound placeholder value.
func (c *Context) Param(i int) (Value, error) {
	if i < 1 || i > len(c.Params) {
		return NullValue, ErrProgramming.New(fmt.Sprintf("placeholder $%d has no bound value", i))
	}
	return c.Params[i-1], nil
}

type scopeFrame struct {
	table string
	row   Row
	cols  Schema
}

// NewContext wraps a standard context.Context for a single query
// execution.
func NewContext(parent context.Context) *Context {
	if parent == nil {
		parent = context.Background()
	}
	return &Context{
		Context: parent,
		Logger:  logrus.StandardLogger(),
		started: time.Now(),
	}
}

// NewEmptyContext returns a Context with no deadline and no outer scope,
// for use outside of Engine.Execute (tests, REPLs).
func NewEmptyContext() *Context {
	return NewContext(context.Background())
}

// WithScope returns a child Context with one more outer-scope frame
// pushed, used when entering a correlated subquery.
func (c *Context) WithScope(table string, cols Schema, row Row) *Context {
	child := &Context{
		Context: c.Context,
		Logger:  c.Logger,
		scopes:  append(append([]scopeFrame(nil), c.scopes...), scopeFrame{table, row, cols}),
		started: c.started,
		Params:  c.Params,
	}
	return child
}

// ResolveOuter looks up name against the outer scope frames, innermost
// first, returning the value and whether it was found.
func (c *Context) ResolveOuter(table, name string) (Value, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		f := c.scopes[i]
		if table != "" && f.table != table {
			continue
		}
		if idx := f.cols.IndexOf(name, ""); idx >= 0 {
			return f.row[idx], true
		}
	}
	return NullValue, false
}

// CheckCancelled returns ErrQueryCanceled if the underlying context has
// been canceled, per spec.md §5. Called per input row by Filter, Project,
// GroupBy, Insert and Update, once per group finalize, and once per
// RowIter call of Scan and Window.
func (c *Context) CheckCancelled() error {
	select {
	case <-c.Done():
		return ErrQueryCanceled.New()
	default:
		return nil
	}
}

// Elapsed reports wall time since this Context was created.
func (c *Context) Elapsed() time.Duration { return time.Since(c.started) }

// QueryStarted returns the instant this Context was created, used by the
// now()/today() builtins so a single statement observes one consistent
// wall-clock value (spec.md §4.6 "now/today are constant within a query").
func (c *Context) QueryStarted() time.Time { return c.started }
