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

package peaql_test

import (
	"fmt"

	"github.com/peaql/peaql"
)

func Example() {
	engine, ctx, err := peaql.NewContext(map[string]peaql.TableModel{
		"mytable": {
			Name: "mytable",
			Columns: []peaql.ColumnModel{
				{Name: "name", Type: "string"},
				{Name: "email", Type: "string"},
			},
			Data: []map[string]interface{}{
				{"name": "John Doe", "email": "john@doe.com"},
				{"name": "John Doe", "email": "johnalt@doe.com"},
				{"name": "Jane Doe", "email": "jane@doe.com"},
				{"name": "Evil Bob", "email": "evilbob@gmail.com"},
			},
		},
	})
	checkIfError(err)

	_, rows, err := engine.Execute(ctx,
		"SELECT name, count(*) FROM mytable WHERE name = 'John Doe' GROUP BY name")
	checkIfError(err)

	for _, row := range rows {
		fmt.Println(row[0].AsString(), row[1].AsInteger())
	}

	// Output: John Doe 2
}

func checkIfError(err error) {
	if err != nil {
		panic(err)
	}
}
