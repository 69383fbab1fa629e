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

package types

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
)

// NormalizePath normalizes a file path for consistent ID generation:
// strips a leading "./", cleans redundant separators, converts to
// forward slashes, and drops a leading slash so absolute and relative
// paths hash identically across platforms.
func NormalizePath(path string) string {
	if len(path) >= 2 && path[0:2] == "./" {
		path = path[2:]
	}
	path = filepath.Clean(path)
	path = filepath.ToSlash(path)
	if len(path) > 0 && path[0] == '/' {
		path = path[1:]
	}
	return path
}

// ComponentID derives the ID for a component: hash(filePath,
// canonicalName, kind, startLine) (spec.md §3 Component identity).
// The start line is always part of the hash, so the ID changes when
// the component moves to another line, even if path, name and kind
// are unchanged.
func ComponentID(filePath, canonicalName string, kind ComponentKind, startLine int) string {
	normalized := NormalizePath(filePath)
	idStr := fmt.Sprintf("%s|%s|%s|%d", normalized, canonicalName, kind, startLine)
	hash := sha256.Sum256([]byte(idStr))
	return fmt.Sprintf("%s:%s", kind, hex.EncodeToString(hash[:16]))
}

// FileComponentID derives the ID for a file component. File IDs omit the
// kind/line disambiguation other components need since a file path is
// already unique within a project.
func FileComponentID(filePath string) string {
	normalized := NormalizePath(filePath)
	if len(normalized) <= 256 {
		return fmt.Sprintf("file:%s", normalized)
	}
	hash := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("file:%s", hex.EncodeToString(hash[:16]))
}

// RelationshipID derives the stable ID for an edge: hash(sourceId,
// targetId, kind, locationOrOrdinal). ordinal disambiguates multiple
// edges of the same kind between the same pair at no location (e.g.
// repeated calls inlined by the optimizer pass), per spec.md §3
// Relationship identity.
func RelationshipID(sourceID, targetID string, kind RelationshipKind, locationOrOrdinal string) string {
	idStr := fmt.Sprintf("%s|%s|%s|%s", sourceID, targetID, kind, locationOrOrdinal)
	hash := sha256.Sum256([]byte(idStr))
	return fmt.Sprintf("rel:%s", hex.EncodeToString(hash[:16]))
}
