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

package sql_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/peaql/peaql/sql"
)

func TestNullValueIsNull(t *testing.T) {
	require.New(t).True(sql.NullValue.IsNull())
}

func TestNewRealNormalizesNaNAndInf(t *testing.T) {
	require := require.New(t)

	require.True(sql.NewReal(math.NaN()).IsNull())
	require.True(sql.NewReal(math.Inf(1)).IsNull())
	require.True(sql.NewReal(math.Inf(-1)).IsNull())
	require.False(sql.NewReal(1.5).IsNull())
	require.Equal(1.5, sql.NewReal(1.5).AsReal())
}

func TestNewSetDedupsPreservingOrder(t *testing.T) {
	require := require.New(t)

	set := sql.NewSet([]sql.Value{
		sql.NewInteger(1),
		sql.NewInteger(2),
		sql.NewInteger(1),
		sql.NewInteger(3),
		sql.NewInteger(2),
	})

	elems := set.AsList()
	require.Len(elems, 3)
	require.Equal(int64(1), elems[0].AsInteger())
	require.Equal(int64(2), elems[1].AsInteger())
	require.Equal(int64(3), elems[2].AsInteger())
}

func TestValueAccessorsRoundTrip(t *testing.T) {
	require := require.New(t)

	require.Equal(int64(42), sql.NewInteger(42).AsInteger())
	require.True(sql.NewBoolean(true).AsBoolean())
	require.Equal("hi", sql.NewStringValue("hi").AsString())
}
