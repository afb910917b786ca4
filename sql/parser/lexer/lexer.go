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

// Package lexer tokenizes PeaQL source text, following the hand-written
// scanner of the retrieval pack's tsqlparser (no scanner generator, single
// rune lookahead held in ch).
package lexer

import (
	"strings"
	"unicode"

	"github.com/peaql/peaql/sql/parser/token"
)

// Lexer scans one statement's source text into tokens on demand.
type Lexer struct {
	input        string
	pos          int
	readPos      int
	ch           rune
}

func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = rune(l.input[l.readPos])
	}
	l.pos = l.readPos
	l.readPos++
}

func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	return rune(l.input[l.readPos])
}

// NextToken scans and returns the next token, advancing the cursor.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	pos := l.pos
	var tok token.Token
	tok.Pos = pos

	switch l.ch {
	case 0:
		tok.Type, tok.Literal = token.EOF, ""
		return tok
	case '+':
		tok.Type, tok.Literal = token.PLUS, "+"
	case '-':
		tok.Type, tok.Literal = token.MINUS, "-"
	case '*':
		tok.Type, tok.Literal = token.ASTERISK, "*"
	case '/':
		tok.Type, tok.Literal = token.SLASH, "/"
	case '%':
		tok.Type, tok.Literal = token.PERCENT, "%"
	case ',':
		tok.Type, tok.Literal = token.COMMA, ","
	case ';':
		tok.Type, tok.Literal = token.SEMICOLON, ";"
	case '(':
		tok.Type, tok.Literal = token.LPAREN, "("
	case ')':
		tok.Type, tok.Literal = token.RPAREN, ")"
	case '[':
		tok.Type, tok.Literal = token.LBRACKET, "["
	case ']':
		tok.Type, tok.Literal = token.RBRACKET, "]"
	case '?':
		if l.peekChar() == '~' {
			l.readChar()
			if l.peekChar() == '*' {
				l.readChar()
				tok.Type, tok.Literal = token.SWAP_MATCH_CI, "?~*"
			} else {
				tok.Type, tok.Literal = token.SWAP_MATCH, "?~"
			}
		} else {
			tok.Type, tok.Literal = token.PLACEHOLDER, "?"
		}
	case '.':
		if unicode.IsDigit(l.peekChar()) {
			tok.Type, tok.Literal = token.FLOAT, l.readNumber()
			return tok
		}
		tok.Type, tok.Literal = token.DOT, "."
	case ':':
		if l.peekChar() == ':' {
			l.readChar()
			tok.Type, tok.Literal = token.SCOPE, "::"
		} else {
			tok.Type, tok.Literal = token.ILLEGAL, ":"
		}
	case '=':
		tok.Type, tok.Literal = token.EQ, "="
	case '!':
		switch l.peekChar() {
		case '=':
			l.readChar()
			tok.Type, tok.Literal = token.NEQ, "!="
		case '~':
			l.readChar()
			if l.peekChar() == '*' {
				l.readChar()
				tok.Type, tok.Literal = token.NOT_MATCH_CI, "!~*"
			} else {
				tok.Type, tok.Literal = token.NOT_MATCH, "!~"
			}
		default:
			tok.Type, tok.Literal = token.ILLEGAL, "!"
		}
	case '<':
		switch l.peekChar() {
		case '=':
			l.readChar()
			tok.Type, tok.Literal = token.LTE, "<="
		case '>':
			l.readChar()
			tok.Type, tok.Literal = token.NEQ, "<>"
		default:
			tok.Type, tok.Literal = token.LT, "<"
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok.Type, tok.Literal = token.GTE, ">="
		} else {
			tok.Type, tok.Literal = token.GT, ">"
		}
	case '~':
		if l.peekChar() == '*' {
			l.readChar()
			tok.Type, tok.Literal = token.TILDE_MATCH_CI, "~*"
		} else {
			tok.Type, tok.Literal = token.TILDE_MATCH, "~"
		}
	case '\'':
		tok.Type, tok.Literal = token.STRING, l.readString('\'')
		return tok
	case '"':
		tok.Type, tok.Literal = token.IDENT, l.readString('"')
		return tok
	default:
		if isIdentStart(l.ch) {
			lit := l.readIdentifier()
			tok.Literal = lit
			tok.Type = token.Lookup(strings.ToLower(lit))
			return tok
		}
		if unicode.IsDigit(l.ch) {
			lit := l.readNumber()
			tok.Literal = lit
			if strings.ContainsAny(lit, ".eE") {
				tok.Type = token.FLOAT
			} else {
				tok.Type = token.INT
			}
			return tok
		}
		tok.Type, tok.Literal = token.ILLEGAL, string(l.ch)
	}
	l.readChar()
	return tok
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
			l.readChar()
		}
		if l.ch == '-' && l.peekChar() == '-' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}
		break
	}
}

func isIdentStart(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}

func isIdentPart(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_'
}

func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isIdentPart(l.ch) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

func (l *Lexer) readNumber() string {
	start := l.pos
	for unicode.IsDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && unicode.IsDigit(l.peekChar()) {
		l.readChar()
		for unicode.IsDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		save := l.pos
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		if unicode.IsDigit(l.ch) {
			for unicode.IsDigit(l.ch) {
				l.readChar()
			}
		} else {
			l.pos, l.readPos, l.ch = save, save+1, rune(l.input[save])
		}
	}
	return l.input[start:l.pos]
}

// readString scans a quoted literal, treating a doubled quote character as
// an escaped literal quote (the SQL-standard escaping convention).
func (l *Lexer) readString(quote rune) string {
	var sb strings.Builder
	l.readChar() // consume opening quote
	for {
		if l.ch == 0 {
			break
		}
		if l.ch == quote {
			if l.peekChar() == quote {
				sb.WriteRune(quote)
				l.readChar()
				l.readChar()
				continue
			}
			l.readChar()
			break
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}
	return sb.String()
}
