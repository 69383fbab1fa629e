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

// Package testing provides test helpers for Felix integration tests.
//
// This package wraps pkg/felix/store with convenience seeding and
// query utilities so package tests across the module don't each
// reimplement CozoScript boilerplate.
//
// # Quick Start
//
// Use SetupTestStore to create an in-memory graph store:
//
//	func TestMyFeature(t *testing.T) {
//	    s := testing.SetupTestStore(t)
//
//	    testing.InsertTestComponent(t, s, "func1", "TestFunc", types.KindFunction, "test.go", 10, 20)
//
//	    rows := testing.QueryComponents(t, s)
//	    require.Len(t, rows.Rows, 1)
//	}
//
// # Seeding Test Data
//
// The package provides helpers for inserting common test entities:
//   - InsertTestComponent: Add a component to the store
//   - InsertTestComponentWithCode: Add a component with its source text attached
//   - InsertTestRelationship: Add an edge between two components
//
// # Querying Test Data
//
// Helper functions for common queries:
//   - QueryComponents: Get every component
//   - QueryComponentsByFile: Get the components for one file path
//   - QueryRelationships: Get every relationship
package testing
