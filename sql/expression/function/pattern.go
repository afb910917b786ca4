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

package function

import (
	"regexp"
	"strings"

	"github.com/peaql/peaql/sql"
)

func compileRegex(pattern string, caseInsensitive bool) (*regexp.Regexp, error) {
	if caseInsensitive {
		pattern = "(?i)" + pattern
	}
	return regexp.Compile(pattern)
}

func regexMatch(name string, negate, caseInsensitive bool) sql.ScalarFn {
	return func(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
		re, err := compileRegex(args[1].AsString(), caseInsensitive)
		if err != nil {
			return sql.NullValue, err
		}
		m := re.MatchString(args[0].AsString())
		if negate {
			m = !m
		}
		return sql.NewBoolean(m), nil
	}
}

// swappedRegexMatch implements ?~ / ?~* : the pattern (possibly carrying
// an embedded (?flags) prefix) is the left operand and the subject is the
// right one, spec.md §4.6 "Pattern".
func swappedRegexMatch(caseInsensitive bool) sql.ScalarFn {
	return func(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
		re, err := compileRegex(args[0].AsString(), caseInsensitive)
		if err != nil {
			return sql.NullValue, err
		}
		return sql.NewBoolean(re.MatchString(args[1].AsString())), nil
	}
}

func registerPattern(r *sql.FunctionRegistry) {
	ops := []struct {
		name            string
		negate, ci      bool
	}{
		{"~", false, false}, {"~*", false, true},
		{"!~", true, false}, {"!~*", true, true},
	}
	for _, op := range ops {
		r.Register(&sql.Signature{Name: op.name, Args: []sql.DType{sql.String, sql.String}, Result: sql.Boolean, Fn: regexMatch(op.name, op.negate, op.ci)})
	}
	r.Register(&sql.Signature{Name: "?~", Args: []sql.DType{sql.String, sql.String}, Result: sql.Boolean, Fn: swappedRegexMatch(false)})
	r.Register(&sql.Signature{Name: "?~*", Args: []sql.DType{sql.String, sql.String}, Result: sql.Boolean, Fn: swappedRegexMatch(true)})

	// grep returns the matched substrings joined together, grepn the number
	// of matches; findFirst returns the leftmost match or NULL.
	r.Register(&sql.Signature{
		Name: "grep", Args: []sql.DType{sql.String, sql.String}, Result: sql.String,
		Fn: func(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
			re, err := regexp.Compile(args[1].AsString())
			if err != nil {
				return sql.NullValue, err
			}
			return sql.NewStringValue(strings.Join(re.FindAllString(args[0].AsString(), -1), "")), nil
		},
	})
	r.Register(&sql.Signature{
		Name: "grepn", Args: []sql.DType{sql.String, sql.String}, Result: sql.Integer,
		Fn: func(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
			re, err := regexp.Compile(args[1].AsString())
			if err != nil {
				return sql.NullValue, err
			}
			return sql.NewInteger(int64(len(re.FindAllString(args[0].AsString(), -1)))), nil
		},
	})
	r.Register(&sql.Signature{
		Name: "findFirst", Args: []sql.DType{sql.String, sql.String}, Result: sql.String,
		Fn: func(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
			re, err := regexp.Compile(args[1].AsString())
			if err != nil {
				return sql.NullValue, err
			}
			m := re.FindString(args[0].AsString())
			if m == "" && !re.MatchString("") {
				return sql.NullValue, nil
			}
			return sql.NewStringValue(m), nil
		},
	})
	r.Register(&sql.Signature{
		Name: "subst", Args: []sql.DType{sql.String, sql.String, sql.String}, Result: sql.String,
		Fn: func(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
			re, err := regexp.Compile(args[1].AsString())
			if err != nil {
				return sql.NullValue, err
			}
			return sql.NewStringValue(re.ReplaceAllString(args[0].AsString(), args[2].AsString())), nil
		},
	})
}
