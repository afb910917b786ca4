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

import "gopkg.in/src-d/go-errors.v1"

// Error kinds raised by the engine. Each is a stable, matchable kind rather
// than an ad-hoc string, so callers can branch on kind with ErrX.Is(err).
var (
	// ErrParse is raised for a lexical/syntactic error in query text. The
	// message carries the offending token and its source position.
	ErrParse = errors.NewKind("parse error at %s: %s")

	// ErrCompilation is raised for a semantic error discovered while
	// compiling an AST into a plan: unknown names, ambiguous identifiers,
	// type mismatches, bad GROUP/ORDER indices, invalid window frames,
	// and structural misuse (DISTINCT on a non-aggregate, aggregate
	// in WHERE/FROM, nested aggregates).
	ErrCompilation = errors.NewKind("%s")

	// ErrUnknownColumn is raised when an identifier does not resolve
	// against the current table or any joined table.
	ErrUnknownColumn = errors.NewKind("unknown column %q")

	// ErrUnknownTable is raised when a FROM/JOIN source does not resolve
	// against the catalog.
	ErrUnknownTable = errors.NewKind("unknown table %q")

	// ErrAmbiguousColumn is raised when an unqualified identifier matches
	// columns from more than one joined relation.
	ErrAmbiguousColumn = errors.NewKind("ambiguous column %q")

	// ErrInvalidGroupIndex is raised for a GROUP BY/ORDER BY/PIVOT BY
	// positional reference outside the target list.
	ErrInvalidGroupIndex = errors.NewKind("index %d out of range for %d target columns")

	// ErrNestedAggregate is raised when an aggregate expression appears as
	// a direct argument to another aggregate.
	ErrNestedAggregate = errors.NewKind("aggregate function calls cannot be nested")

	// ErrInvalidDistinct is raised when DISTINCT decorates a non-aggregate
	// call.
	ErrInvalidDistinct = errors.NewKind("DISTINCT is only valid on an aggregate function")

	// ErrInvalidFilter is raised when FILTER (WHERE ...) decorates a
	// non-aggregate call.
	ErrInvalidFilter = errors.NewKind("FILTER is only valid on an aggregate function")

	// ErrInvalidRangeFrame is raised when a RANGE frame carries an offset
	// bound over an ORDER BY key whose type does not support it.
	ErrInvalidRangeFrame = errors.NewKind("RANGE with offset PRECEDING/FOLLOWING is not supported for column type %s")

	// ErrScalarSubquery is raised when a subquery used in scalar position
	// returns more than one column.
	ErrScalarSubquery = errors.NewKind("subquery returned %d columns, expected exactly one")

	// ErrTooManyRows is raised when a scalar subquery's adapter observes
	// more than one row at resolve time.
	ErrTooManyRows = errors.NewKind("subquery returned more than one row")

	// ErrProgramming is raised for invalid API usage: mixed placeholder
	// styles, missing parameters, arity mismatches supplied by the caller.
	ErrProgramming = errors.NewKind("%s")

	// ErrNotSupported is raised when no registered overload matches the
	// argument types of an operator or function call.
	ErrNotSupported = errors.NewKind("%s(%s) is not supported")

	// ErrDataConstraint is raised when an INSERT/UPDATE row violates a
	// NOT NULL or CHECK constraint.
	ErrDataConstraint = errors.NewKind("Failing row contains (%s). new row for relation %q violates %s %q")

	// ErrInternal signals a broken compiler/evaluator invariant. It should
	// never surface in a correctly compiled plan.
	ErrInternal = errors.NewKind("internal error: %s")

	// ErrQueryCanceled is raised when a cooperative cancellation token is
	// observed mid-scan or mid-finalize.
	ErrQueryCanceled = errors.NewKind("query canceled")

	// ErrTableExists is raised by CREATE TABLE without IF NOT EXISTS
	// against a name already registered in the catalog.
	ErrTableExists = errors.NewKind("table %q already exists")

	// ErrMixedPlaceholders is raised when a prepared statement mixes named
	// (:name) and positional (?) placeholders.
	ErrMixedPlaceholders = errors.NewKind("cannot mix named and positional placeholders in one statement")
)
