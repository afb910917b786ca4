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
	"github.com/google/uuid"

	"github.com/peaql/peaql/sql"
)

func registerMisc(r *sql.FunctionRegistry) {
	r.Register(&sql.Signature{
		Name: "uuid", Args: nil, Result: sql.String,
		Fn: func(ctx *sql.Context, args []sql.Value) (sql.Value, error) { return sql.NewStringValue(uuid.New().String()), nil },
	})

	r.Register(&sql.Signature{
		Name: "coalesce_type", Args: []sql.DType{sql.Object}, Result: sql.String,
		Fn: func(ctx *sql.Context, args []sql.Value) (sql.Value, error) { return sql.NewStringValue(args[0].Type.String()), nil },
	})

	for _, t := range []sql.DType{sql.Integer, sql.Real, sql.Decimal, sql.String, sql.Boolean, sql.DateTime, sql.Duration, sql.List, sql.Object} {
		r.Register(&sql.Signature{
			Name: "isnull", Args: []sql.DType{t}, Result: sql.Boolean, NullSafe: true,
			Fn: func(ctx *sql.Context, args []sql.Value) (sql.Value, error) { return sql.NewBoolean(args[0].IsNull()), nil },
		})
	}
}
