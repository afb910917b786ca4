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

// Package parser implements a Pratt expression parser plus recursive-
// descent statement parser for the SQL-like dialect of spec.md §6.2,
// following the retrieval pack's tsqlparser package split and
// precedence-table style (lexer → token stream → Pratt parser whose
// prefix/infix steps switch on token.Type).
package parser

import (
	"fmt"
	"strings"

	"github.com/peaql/peaql/sql/parser/ast"
	"github.com/peaql/peaql/sql/parser/lexer"
	"github.com/peaql/peaql/sql/parser/token"
)

// precedence levels, lowest to highest, mirroring tsqlparser's
// iota-based precedence table.
const (
	_ int = iota
	precLowest
	precOr
	precAnd
	precNot
	precCompare
	precAdd
	precMul
	precUnary
	precCast
	precPostfix // [] . ::
)

var precedences = map[token.Type]int{
	token.EQ: precCompare, token.NEQ: precCompare,
	token.LT: precCompare, token.GT: precCompare,
	token.LTE: precCompare, token.GTE: precCompare,
	token.TILDE_MATCH: precCompare, token.TILDE_MATCH_CI: precCompare,
	token.NOT_MATCH: precCompare, token.NOT_MATCH_CI: precCompare,
	token.SWAP_MATCH: precCompare, token.SWAP_MATCH_CI: precCompare,
	token.PLUS: precAdd, token.MINUS: precAdd,
	token.ASTERISK: precMul, token.SLASH: precMul, token.PERCENT: precMul,
	token.LBRACKET: precPostfix, token.DOT: precPostfix, token.SCOPE: precPostfix,
}

// Parser turns one statement's token stream into an ast.Statement.
type Parser struct {
	l         *lexer.Lexer
	cur, peek token.Token
	errs      []string
	phCount   int
}

func New(input string) *Parser {
	p := &Parser{l: lexer.New(input)}
	p.next()
	p.next()
	return p
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) errorf(format string, args ...interface{}) {
	p.errs = append(p.errs, fmt.Sprintf(format, args...)+fmt.Sprintf(" (at pos %d)", p.cur.Pos))
}

// Errors returns accumulated parse errors, if any.
func (p *Parser) Errors() []string { return p.errs }

func (p *Parser) expect(t token.Type, what string) bool {
	if p.cur.Type != t {
		p.errorf("expected %s, found %q", what, p.cur.Literal)
		return false
	}
	return true
}

func (p *Parser) accept(t token.Type) bool {
	if p.cur.Type == t {
		p.next()
		return true
	}
	return false
}

// Parse parses exactly one statement.
func (p *Parser) Parse() ast.Statement {
	switch p.cur.Type {
	case token.CREATE:
		return p.parseCreateTable()
	case token.INSERT:
		return p.parseInsert()
	case token.UPDATE:
		return p.parseUpdate()
	default:
		return p.parseSelect()
	}
}

// ---- SELECT ----

func (p *Parser) parseSelect() *ast.SelectStatement {
	return p.parseSelectStatement()
}

func (p *Parser) parseSelectStatement() *ast.SelectStatement {
	s := &ast.SelectStatement{}
	s.P = p.cur.Pos

	if p.cur.Type == token.WITH {
		p.next()
		for {
			name := p.cur.Literal
			p.next()
			p.expect(token.AS, "AS")
			p.next()
			p.expect(token.LPAREN, "(")
			p.next()
			sub := p.parseSelectStatement()
			p.expect(token.RPAREN, ")")
			p.next()
			s.With = append(s.With, ast.CTE{Name: name, Query: sub})
			if !p.accept(token.COMMA) {
				break
			}
		}
	}

	p.expect(token.SELECT, "SELECT")
	s.P = p.cur.Pos
	p.next()

	if p.cur.Type == token.DISTINCT {
		s.Distinct = true
		p.next()
	}

	s.Targets = p.parseSelectTargets()

	if p.cur.Type == token.FROM {
		p.next()
		s.From = p.parseTableExpr()
	}

	if p.cur.Type == token.WHERE {
		p.next()
		s.Where = p.parseExpr(precLowest)
	}

	if p.cur.Type == token.GROUP {
		p.next()
		p.expect(token.BY, "BY")
		p.next()
		s.GroupBy = p.parseExprList()
	}

	if p.cur.Type == token.HAVING {
		p.next()
		s.Having = p.parseExpr(precLowest)
	}

	if p.cur.Type == token.WINDOW {
		p.next()
		for {
			name := p.cur.Literal
			p.next()
			p.expect(token.AS, "AS")
			p.next()
			spec := p.parseWindowSpec()
			s.Windows = append(s.Windows, ast.NamedWindow{Name: name, Spec: spec})
			if !p.accept(token.COMMA) {
				break
			}
		}
	}

	if p.cur.Type == token.PIVOT {
		p.next()
		p.expect(token.BY, "BY")
		p.next()
		s.PivotBy = p.parseExprList()
	}

	if p.cur.Type == token.ORDER {
		p.next()
		p.expect(token.BY, "BY")
		p.next()
		s.OrderBy = p.parseOrderTerms()
	}

	if p.cur.Type == token.LIMIT {
		p.next()
		s.Limit = p.parseExpr(precLowest)
	}
	if p.cur.Type == token.OFFSET {
		p.next()
		s.Offset = p.parseExpr(precLowest)
	}

	if op, ok := setOpName(p.cur.Type); ok {
		p.next()
		all := p.accept(token.ALL)
		other := p.parseSelectStatement()
		s.Combine = &ast.CombineClause{Op: op, All: all, Other: other}
	}

	return s
}

func setOpName(t token.Type) (string, bool) {
	switch t {
	case token.UNION:
		return "UNION", true
	case token.INTERSECT:
		return "INTERSECT", true
	case token.EXCEPT:
		return "EXCEPT", true
	}
	return "", false
}

func (p *Parser) parseSelectTargets() []ast.SelectTarget {
	var out []ast.SelectTarget
	for {
		pos := p.cur.Pos
		if p.cur.Type == token.ASTERISK {
			p.next()
			out = append(out, ast.SelectTarget{Expr: &ast.Star{Base: ast.Base{P: pos}}})
		} else {
			expr := p.parseExpr(precLowest)
			target := ast.SelectTarget{Expr: expr}
			if p.cur.Type == token.AS {
				p.next()
				target.Alias = p.cur.Literal
				p.next()
			} else if p.cur.Type == token.IDENT {
				target.Alias = p.cur.Literal
				p.next()
			}
			out = append(out, target)
		}
		if !p.accept(token.COMMA) {
			break
		}
	}
	return out
}

func (p *Parser) parseExprList() []ast.Expression {
	var out []ast.Expression
	for {
		out = append(out, p.parseExpr(precLowest))
		if !p.accept(token.COMMA) {
			break
		}
	}
	return out
}

func (p *Parser) parseOrderTerms() []ast.OrderTerm {
	var out []ast.OrderTerm
	for {
		e := p.parseExpr(precLowest)
		t := ast.OrderTerm{Expr: e}
		if p.cur.Type == token.ASC {
			p.next()
		} else if p.cur.Type == token.DESC {
			t.Desc = true
			p.next()
		}
		if p.cur.Type == token.NULLS {
			p.next()
			if p.cur.Type == token.FIRST {
				v := true
				t.NullsFirst = &v
				p.next()
			} else if p.cur.Type == token.LAST {
				v := false
				t.NullsFirst = &v
				p.next()
			}
		}
		out = append(out, t)
		if !p.accept(token.COMMA) {
			break
		}
	}
	return out
}

// ---- FROM / JOIN ----

func (p *Parser) parseTableExpr() ast.TableExpr {
	left := p.parseTablePrimary()
	for {
		kind, ok := p.peekJoinKind()
		if !ok {
			break
		}
		_ = kind
		j := p.parseJoinTail(left)
		left = j
	}
	return left
}

func (p *Parser) peekJoinKind() (string, bool) {
	switch p.cur.Type {
	case token.JOIN:
		return "INNER", true
	case token.INNER, token.LEFT, token.RIGHT, token.FULL, token.CROSS, token.ANTI:
		return "", true
	case token.COMMA:
		return "CROSS", true
	}
	return "", false
}

func (p *Parser) parseJoinTail(left ast.TableExpr) ast.TableExpr {
	pos := p.cur.Pos
	kind := "INNER"
	switch p.cur.Type {
	case token.COMMA:
		kind = "CROSS"
		p.next()
	case token.INNER:
		p.next()
		p.accept(token.JOIN)
	case token.LEFT:
		kind = "LEFT"
		p.next()
		p.accept(token.OUTER)
		p.accept(token.JOIN)
	case token.RIGHT:
		kind = "RIGHT"
		p.next()
		p.accept(token.OUTER)
		p.accept(token.JOIN)
	case token.FULL:
		kind = "FULL"
		p.next()
		p.accept(token.OUTER)
		p.accept(token.JOIN)
	case token.CROSS:
		kind = "CROSS"
		p.next()
		p.accept(token.JOIN)
	case token.ANTI:
		kind = "ANTI"
		p.next()
		p.accept(token.JOIN)
	case token.JOIN:
		p.next()
	}
	right := p.parseTablePrimary()
	j := &ast.JoinExpr{Kind: kind, Left: left, Right: right}
	j.P = pos
	if p.cur.Type == token.ON {
		p.next()
		j.On = p.parseExpr(precLowest)
	} else if p.cur.Type == token.USING {
		p.next()
		p.expect(token.LPAREN, "(")
		p.next()
		for {
			j.Using = append(j.Using, p.cur.Literal)
			p.next()
			if !p.accept(token.COMMA) {
				break
			}
		}
		p.expect(token.RPAREN, ")")
		p.next()
	}
	return j
}

func (p *Parser) parseTablePrimary() ast.TableExpr {
	pos := p.cur.Pos
	if p.cur.Type == token.LPAREN {
		p.next()
		sub := p.parseSelectStatement()
		p.expect(token.RPAREN, ")")
		p.next()
		alias := ""
		if p.cur.Type == token.AS {
			p.next()
			alias = p.cur.Literal
			p.next()
		} else if p.cur.Type == token.IDENT {
			alias = p.cur.Literal
			p.next()
		}
		st := &ast.SubqueryTable{Query: sub, Alias: alias}
		st.P = pos
		return st
	}
	name := p.cur.Literal
	p.next()
	alias := ""
	if p.cur.Type == token.AS {
		p.next()
		alias = p.cur.Literal
		p.next()
	} else if p.cur.Type == token.IDENT {
		alias = p.cur.Literal
		p.next()
	}
	t := &ast.TableName{Name: name, Alias: alias}
	t.P = pos
	return t
}

// ---- Window spec ----

func (p *Parser) parseWindowSpec() ast.WindowSpec {
	var spec ast.WindowSpec
	p.expect(token.LPAREN, "(")
	p.next()
	if p.cur.Type == token.IDENT {
		spec.BaseName = p.cur.Literal
		p.next()
	}
	if p.cur.Type == token.PARTITION {
		p.next()
		p.expect(token.BY, "BY")
		p.next()
		spec.PartitionBy = p.parseExprList()
	}
	if p.cur.Type == token.ORDER {
		p.next()
		p.expect(token.BY, "BY")
		p.next()
		spec.OrderBy = p.parseOrderTerms()
	}
	if p.cur.Type == token.ROWS || p.cur.Type == token.GROUPS || p.cur.Type == token.RANGE {
		spec.Frame = p.parseFrameSpec()
	}
	p.expect(token.RPAREN, ")")
	p.next()
	return spec
}

func (p *Parser) parseFrameSpec() *ast.FrameSpec {
	f := &ast.FrameSpec{}
	switch p.cur.Type {
	case token.ROWS:
		f.Type = "ROWS"
	case token.GROUPS:
		f.Type = "GROUPS"
	case token.RANGE:
		f.Type = "RANGE"
	}
	p.next()
	if p.accept(token.BETWEEN) {
		f.Preceding = p.parseBound()
		p.expectKeyword("AND")
		f.Following = p.parseBound()
	} else {
		f.Preceding = p.parseBound()
		f.Following = ast.BoundSpec{Current: true}
	}
	if p.cur.Type == token.EXCLUDE {
		p.next()
		switch {
		case p.cur.Type == token.CURRENT:
			p.next()
			p.accept(token.ROW)
			f.Exclude = "CURRENT ROW"
		case p.cur.Type == token.GROUPS || strings.EqualFold(p.cur.Literal, "group"):
			p.next()
			f.Exclude = "GROUP"
		case p.cur.Type == token.TIES:
			p.next()
			f.Exclude = "TIES"
		case p.cur.Type == token.NO:
			p.next()
			p.accept(token.OTHERS)
			f.Exclude = "NO OTHERS"
		}
	}
	return f
}

// expectKeyword accepts a contextual keyword token (AND/ROW/etc. reused
// outside their usual grammar position) by literal text.
func (p *Parser) expectKeyword(word string) {
	if strings.EqualFold(p.cur.Literal, word) {
		p.next()
		return
	}
	p.errorf("expected %s, found %q", word, p.cur.Literal)
}

func (p *Parser) parseBound() ast.BoundSpec {
	if p.cur.Type == token.UNBOUNDED {
		p.next()
		if p.cur.Type == token.PRECEDING {
			p.next()
		} else if p.cur.Type == token.FOLLOWING {
			p.next()
		}
		return ast.BoundSpec{Unbounded: true}
	}
	if p.cur.Type == token.CURRENT {
		p.next()
		p.accept(token.ROW)
		return ast.BoundSpec{Current: true}
	}
	offset := p.parseExpr(precAdd)
	if p.cur.Type == token.PRECEDING {
		p.next()
	} else if p.cur.Type == token.FOLLOWING {
		p.next()
	}
	return ast.BoundSpec{Offset: offset}
}

// ---- Expressions (Pratt) ----

func (p *Parser) parseExpr(prec int) ast.Expression {
	left := p.parsePrefix()
	for prec < p.curPrecedence() {
		left = p.parseInfix(left)
	}
	return left
}

func (p *Parser) curPrecedence() int {
	switch p.cur.Type {
	case token.AND:
		return precAnd
	case token.OR:
		return precOr
	case token.NOT:
		return precNot // for "x NOT BETWEEN"/"x NOT IN"
	case token.BETWEEN:
		return precCompare
	case token.IN:
		return precCompare
	case token.IS:
		return precCompare
	}
	if pr, ok := precedences[p.cur.Type]; ok {
		return pr
	}
	return precLowest
}

func (p *Parser) parsePrefix() ast.Expression {
	pos := p.cur.Pos
	switch p.cur.Type {
	case token.MINUS, token.PLUS:
		op := p.cur.Literal
		p.next()
		operand := p.parseExpr(precUnary)
		e := &ast.UnaryExpr{Op: op, Operand: operand}
		e.P = pos
		return e
	case token.NOT:
		p.next()
		e := &ast.NotExpr{Operand: p.parseExpr(precNot)}
		e.P = pos
		return e
	case token.INT:
		lit := p.cur.Literal
		p.next()
		return &ast.Literal{Base: ast.Base{P: pos}, Kind: "int", Value: lit}
	case token.FLOAT:
		lit := p.cur.Literal
		p.next()
		return &ast.Literal{Base: ast.Base{P: pos}, Kind: "float", Value: lit}
	case token.STRING:
		lit := p.cur.Literal
		p.next()
		return &ast.Literal{Base: ast.Base{P: pos}, Kind: "string", Value: lit}
	case token.TRUE:
		p.next()
		return &ast.Literal{Base: ast.Base{P: pos}, Kind: "bool", Value: "true"}
	case token.FALSE:
		p.next()
		return &ast.Literal{Base: ast.Base{P: pos}, Kind: "bool", Value: "false"}
	case token.NULL:
		p.next()
		return &ast.Literal{Base: ast.Base{P: pos}, Kind: "null"}
	case token.PLACEHOLDER:
		p.phCount++
		n := p.phCount
		p.next()
		return &ast.Placeholder{Base: ast.Base{P: pos}, Index: n}
	case token.LPAREN:
		p.next()
		if isSelectStart(p.cur.Type) {
			sub := p.parseSelectStatement()
			p.expect(token.RPAREN, ")")
			p.next()
			return &ast.ScalarSubquery{Base: ast.Base{P: pos}, Query: sub}
		}
		first := p.parseExpr(precLowest)
		if p.cur.Type == token.COMMA {
			elems := []ast.Expression{first}
			for p.accept(token.COMMA) {
				elems = append(elems, p.parseExpr(precLowest))
			}
			p.expect(token.RPAREN, ")")
			p.next()
			return &ast.CollectionExpr{Base: ast.Base{P: pos}, IsTuple: true, Elems: elems}
		}
		p.expect(token.RPAREN, ")")
		p.next()
		return first
	case token.LBRACKET:
		p.next()
		var elems []ast.Expression
		if p.cur.Type != token.RBRACKET {
			elems = p.parseExprList()
		}
		p.expect(token.RBRACKET, "]")
		p.next()
		return &ast.CollectionExpr{Base: ast.Base{P: pos}, Elems: elems}
	case token.CASE:
		return p.parseCase()
	case token.IDENT:
		return p.parseIdentOrCall()
	}
	p.errorf("unexpected token %q in expression", p.cur.Literal)
	p.next()
	return &ast.Literal{Base: ast.Base{P: pos}, Kind: "null"}
}

func isSelectStart(t token.Type) bool {
	return t == token.SELECT || t == token.WITH
}

func (p *Parser) parseCase() ast.Expression {
	pos := p.cur.Pos
	p.next() // CASE
	e := &ast.CaseExpr{}
	e.P = pos
	if p.cur.Type != token.WHEN {
		e.Operand = p.parseExpr(precLowest)
	}
	for p.cur.Type == token.WHEN {
		p.next()
		cond := p.parseExpr(precLowest)
		p.expect(token.THEN, "THEN")
		p.next()
		result := p.parseExpr(precLowest)
		e.Whens = append(e.Whens, ast.WhenClause{Cond: cond, Result: result})
	}
	if p.cur.Type == token.ELSE {
		p.next()
		e.Else = p.parseExpr(precLowest)
	}
	p.expect(token.END, "END")
	p.next()
	return e
}

func (p *Parser) parseIdentOrCall() ast.Expression {
	pos := p.cur.Pos
	name := p.cur.Literal
	p.next()
	if p.cur.Type == token.DOT {
		// could be table.column or table.* ; disambiguate after consuming dot
		p.next()
		if p.cur.Type == token.ASTERISK {
			p.next()
			return &ast.Star{Base: ast.Base{P: pos}, Table: name}
		}
		field := p.cur.Literal
		p.next()
		if p.cur.Type == token.LPAREN {
			// not valid SQL normally, but treat ident.field( as unsupported; fall through as column ref
		}
		return &ast.ColumnRef{Base: ast.Base{P: pos}, Table: name, Name: field}
	}
	if p.cur.Type == token.LPAREN {
		return p.parseCallTail(pos, name)
	}
	return &ast.ColumnRef{Base: ast.Base{P: pos}, Name: name}
}

func (p *Parser) parseCallTail(pos int, name string) ast.Expression {
	p.next() // (
	call := &ast.FuncCall{Name: strings.ToLower(name)}
	call.P = pos
	if p.cur.Type == token.DISTINCT {
		call.Distinct = true
		p.next()
	}
	if p.cur.Type != token.RPAREN {
		if p.cur.Type == token.ASTERISK {
			p.next()
			call.Args = []ast.Expression{&ast.Star{}}
		} else {
			call.Args = p.parseExprList()
		}
	}
	p.expect(token.RPAREN, ")")
	p.next()

	if p.cur.Type == token.FILTER {
		p.next()
		p.expect(token.LPAREN, "(")
		p.next()
		p.expect(token.WHERE, "WHERE")
		p.next()
		call.Filter = p.parseExpr(precLowest)
		p.expect(token.RPAREN, ")")
		p.next()
	}
	if p.cur.Type == token.OVER {
		p.next()
		over := &ast.OverClause{}
		if p.cur.Type == token.IDENT {
			over.WindowName = p.cur.Literal
			p.next()
		} else {
			over.Spec = p.parseWindowSpec()
		}
		call.Over = over
	}
	return call
}

func (p *Parser) parseInfix(left ast.Expression) ast.Expression {
	pos := p.cur.Pos
	switch p.cur.Type {
	case token.DOT:
		p.next()
		field := p.cur.Literal
		p.next()
		return &ast.Attribute{Base: ast.Base{P: pos}, Target: left, Field: field}
	case token.LBRACKET:
		p.next()
		idx := p.parseExpr(precLowest)
		p.expect(token.RBRACKET, "]")
		p.next()
		return &ast.Subscript{Base: ast.Base{P: pos}, Target: left, Index: idx}
	case token.SCOPE:
		p.next()
		typ := p.cur.Literal
		p.next()
		return &ast.Cast{Base: ast.Base{P: pos}, Target: left, Type: typ}
	case token.AND:
		p.next()
		return &ast.AndExpr{Base: ast.Base{P: pos}, Left: left, Right: p.parseExpr(precAnd)}
	case token.OR:
		p.next()
		return &ast.OrExpr{Base: ast.Base{P: pos}, Left: left, Right: p.parseExpr(precOr)}
	case token.IS:
		p.next()
		negate := p.accept(token.NOT)
		p.expect(token.NULL, "NULL")
		p.next()
		return &ast.IsNullExpr{Base: ast.Base{P: pos}, Operand: left, Negate: negate}
	case token.BETWEEN:
		p.next()
		lo := p.parseExpr(precAdd)
		p.expectKeyword("AND")
		hi := p.parseExpr(precAdd)
		return &ast.BetweenExpr{Base: ast.Base{P: pos}, Operand: left, Lo: lo, Hi: hi}
	case token.NOT:
		p.next()
		switch p.cur.Type {
		case token.BETWEEN:
			p.next()
			lo := p.parseExpr(precAdd)
			p.expectKeyword("AND")
			hi := p.parseExpr(precAdd)
			return &ast.BetweenExpr{Base: ast.Base{P: pos}, Operand: left, Lo: lo, Hi: hi, Negate: true}
		case token.IN:
			return p.parseInTail(pos, left, true)
		}
		p.errorf("unexpected NOT in expression")
		return left
	case token.IN:
		return p.parseInTail(pos, left, false)
	default:
		op := p.cur.Literal
		t := p.cur.Type
		prec := p.curPrecedence()
		p.next()
		right := p.parseExpr(prec)
		switch t {
		case token.TILDE_MATCH, token.TILDE_MATCH_CI, token.NOT_MATCH, token.NOT_MATCH_CI,
			token.SWAP_MATCH, token.SWAP_MATCH_CI,
			token.PLUS, token.MINUS, token.ASTERISK, token.SLASH, token.PERCENT,
			token.EQ, token.NEQ, token.LT, token.GT, token.LTE, token.GTE:
			return &ast.BinaryExpr{Base: ast.Base{P: pos}, Op: op, Left: left, Right: right}
		}
		return &ast.BinaryExpr{Base: ast.Base{P: pos}, Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseInTail(pos int, left ast.Expression, negate bool) ast.Expression {
	p.next() // IN
	p.expect(token.LPAREN, "(")
	p.next()
	e := &ast.InExpr{Base: ast.Base{P: pos}, Operand: left, Negate: negate}
	if isSelectStart(p.cur.Type) {
		e.Query = p.parseSelectStatement()
	} else {
		e.List = p.parseExprList()
	}
	p.expect(token.RPAREN, ")")
	p.next()
	return e
}

// ---- DDL/DML ----

func (p *Parser) parseCreateTable() ast.Statement {
	pos := p.cur.Pos
	p.next() // CREATE
	p.expect(token.TABLE, "TABLE")
	p.next()
	s := &ast.CreateTableStatement{}
	s.P = pos
	if p.cur.Type == token.IF {
		p.next()
		p.accept(token.NOT)
		p.expect(token.EXISTS, "EXISTS")
		p.next()
		s.IfNotExists = true
	}
	s.Name = p.cur.Literal
	p.next()
	if p.cur.Type == token.AS {
		p.next()
		s.As = p.parseSelectStatement()
		return s
	}
	p.expect(token.LPAREN, "(")
	p.next()
	for p.cur.Type != token.RPAREN {
		switch p.cur.Type {
		case token.PRIMARY:
			p.next()
			p.expect(token.KEY, "KEY")
			p.next()
			s.Constraints = append(s.Constraints, p.parseColumnListConstraint("PRIMARY KEY"))
		case token.UNIQUE:
			p.next()
			s.Constraints = append(s.Constraints, p.parseColumnListConstraint("UNIQUE"))
		case token.FOREIGN:
			p.next()
			p.expect(token.KEY, "KEY")
			p.next()
			c := p.parseColumnListConstraint("FOREIGN KEY")
			if p.cur.Type == token.REFERENCES {
				p.next()
				p.next() // ref table
				if p.cur.Type == token.LPAREN {
					p.next()
					for p.cur.Type != token.RPAREN {
						p.next()
						p.accept(token.COMMA)
					}
					p.next()
				}
			}
			s.Constraints = append(s.Constraints, c)
		case token.CHECK:
			p.next()
			p.expect(token.LPAREN, "(")
			p.next()
			expr := p.parseExpr(precLowest)
			p.expect(token.RPAREN, ")")
			p.next()
			s.Constraints = append(s.Constraints, ast.TableConstraint{Kind: "CHECK", Check: expr})
		default:
			s.Columns = append(s.Columns, p.parseColumnDef())
		}
		if !p.accept(token.COMMA) {
			break
		}
	}
	p.expect(token.RPAREN, ")")
	p.next()
	return s
}

func (p *Parser) parseColumnListConstraint(kind string) ast.TableConstraint {
	c := ast.TableConstraint{Kind: kind}
	p.expect(token.LPAREN, "(")
	p.next()
	for {
		c.Columns = append(c.Columns, p.cur.Literal)
		p.next()
		if !p.accept(token.COMMA) {
			break
		}
	}
	p.expect(token.RPAREN, ")")
	p.next()
	return c
}

func (p *Parser) parseColumnDef() ast.ColumnDef {
	c := ast.ColumnDef{Name: p.cur.Literal}
	p.next()
	c.Type = p.cur.Literal
	p.next()
	if p.cur.Type == token.LBRACKET {
		p.next()
		p.expect(token.RBRACKET, "]")
		p.next()
		c.IsArray = true
	}
	for {
		switch p.cur.Type {
		case token.NOT:
			p.next()
			p.expect(token.NULL, "NULL")
			p.next()
			c.NotNull = true
		case token.DEFAULT:
			p.next()
			c.Default = p.parseExpr(precAdd)
		case token.CHECK:
			p.next()
			p.expect(token.LPAREN, "(")
			p.next()
			c.Checks = append(c.Checks, p.parseExpr(precLowest))
			p.expect(token.RPAREN, ")")
			p.next()
		default:
			return c
		}
	}
}

func (p *Parser) parseInsert() ast.Statement {
	pos := p.cur.Pos
	p.next() // INSERT
	p.expect(token.INTO, "INTO")
	p.next()
	s := &ast.InsertStatement{}
	s.P = pos
	s.Table = p.cur.Literal
	p.next()
	if p.cur.Type == token.LPAREN {
		p.next()
		for {
			s.Columns = append(s.Columns, p.cur.Literal)
			p.next()
			if !p.accept(token.COMMA) {
				break
			}
		}
		p.expect(token.RPAREN, ")")
		p.next()
	}
	if p.cur.Type == token.VALUES {
		p.next()
		for {
			p.expect(token.LPAREN, "(")
			p.next()
			row := p.parseExprList()
			p.expect(token.RPAREN, ")")
			p.next()
			s.Values = append(s.Values, row)
			if !p.accept(token.COMMA) {
				break
			}
		}
		return s
	}
	s.Query = p.parseSelectStatement()
	return s
}

func (p *Parser) parseUpdate() ast.Statement {
	pos := p.cur.Pos
	p.next() // UPDATE
	s := &ast.UpdateStatement{}
	s.P = pos
	s.Table = p.cur.Literal
	p.next()
	p.expect(token.SET, "SET")
	p.next()
	for {
		col := p.cur.Literal
		p.next()
		p.expect(token.EQ, "=")
		p.next()
		val := p.parseExpr(precLowest)
		s.Sets = append(s.Sets, ast.UpdateSet{Column: col, Value: val})
		if !p.accept(token.COMMA) {
			break
		}
	}
	if p.cur.Type == token.WHERE {
		p.next()
		s.Where = p.parseExpr(precLowest)
	}
	return s
}

// ParseStatements splits input on top-level statement boundaries (";")
// and parses each one, per spec.md §6.1's "text -> ... -> compile" entry
// point accepting a batch of statements. Empty statements between/after
// semicolons (trailing ";", blank input) are skipped.
func ParseStatements(input string) ([]ast.Statement, []string) {
	p := New(input)
	var stmts []ast.Statement
	for {
		for p.cur.Type == token.SEMICOLON {
			p.next()
		}
		if p.cur.Type == token.EOF {
			break
		}
		stmts = append(stmts, p.Parse())
		if p.cur.Type == token.SEMICOLON {
			p.next()
			continue
		}
		if p.cur.Type != token.EOF {
			p.errorf("expected ';' or end of input, found %q", p.cur.Literal)
			break
		}
	}
	return stmts, p.Errors()
}
