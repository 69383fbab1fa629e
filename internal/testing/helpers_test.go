// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package testing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felix-ide/felix/pkg/felix/types"
)

func TestSetupTestStore(t *testing.T) {
	s := SetupTestStore(t)
	require.NotNil(t, s)

	rows := QueryComponents(t, s)
	require.NotNil(t, rows)
	assert.Empty(t, rows.Rows, "should start with no components")
}

func TestInsertTestComponent(t *testing.T) {
	s := SetupTestStore(t)

	InsertTestComponent(t, s, "func_123", "HandleAuth", types.KindFunction, "auth.go", 10, 25)

	rows := QueryComponents(t, s)
	require.Len(t, rows.Rows, 1)
	assert.Equal(t, "func_123", rows.Rows[0][0])
	assert.Equal(t, "HandleAuth", rows.Rows[0][1])
}

func TestInsertTestComponentWithCode(t *testing.T) {
	s := SetupTestStore(t)

	InsertTestComponentWithCode(t, s, "type_123", "UserService", types.KindStruct, "type UserService struct{}", "user.go", 10, 50)

	rows := QueryComponentsByFile(t, s, "user.go")
	require.Len(t, rows.Rows, 1)
	assert.Equal(t, "type_123", rows.Rows[0][0])
	assert.Equal(t, "UserService", rows.Rows[0][1])
	assert.Equal(t, "struct", rows.Rows[0][2])
}

func TestMultipleComponentsOnSameFile(t *testing.T) {
	s := SetupTestStore(t)

	InsertTestComponent(t, s, "func1", "main", types.KindFunction, "main.go", 1, 10)
	InsertTestComponent(t, s, "func2", "helper", types.KindFunction, "main.go", 12, 15)

	rows := QueryComponentsByFile(t, s, "main.go")
	require.Len(t, rows.Rows, 2, "inserting a second component for the same file must not retract the first")
}

func TestInsertTestRelationship(t *testing.T) {
	s := SetupTestStore(t)

	InsertTestComponent(t, s, "func1", "main", types.KindFunction, "main.go", 1, 10)
	InsertTestComponent(t, s, "func2", "helper", types.KindFunction, "main.go", 12, 15)
	InsertTestRelationship(t, s, "call1", "func1", "func2", types.RelCalls)

	rows := QueryRelationships(t, s)
	require.Len(t, rows.Rows, 1)
	assert.Equal(t, "call1", rows.Rows[0][0])
	assert.Equal(t, "func1", rows.Rows[0][1])
	assert.Equal(t, "func2", rows.Rows[0][2])
	assert.Equal(t, "calls", rows.Rows[0][3])
}

func TestStoreIsolation(t *testing.T) {
	s1 := SetupTestStore(t)
	InsertTestComponent(t, s1, "func1", "Test1", types.KindFunction, "file1.go", 1, 10)

	s2 := SetupTestStore(t)
	rows := QueryComponents(t, s2)
	assert.Empty(t, rows.Rows, "second store should be isolated from the first")

	rows1 := QueryComponents(t, s1)
	assert.Len(t, rows1.Rows, 1)
}
