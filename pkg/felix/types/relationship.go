// Copyright 2025 KrakLabs
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
//
// SPDX-License-Identifier: Apache-2.0

package types

import "strings"

// ResolvePrefix marks a relationship target that has not yet been
// resolved to a concrete component ID (spec.md glossary: "Resolver
// placeholder").
const ResolvePrefix = "RESOLVE:"

// ExternalPrefix marks a relationship target synthesized for a symbol
// outside the indexed project, e.g. "external:module:npm:lodash".
const ExternalPrefix = "external:"

// Relationship is a typed directed edge between two components
// (spec.md §3).
type Relationship struct {
	ID       string                `json:"id"`
	SourceID string                `json:"sourceId"`
	TargetID string                `json:"targetId"`
	Kind     RelationshipKind      `json:"kind"`
	Location *Location             `json:"location,omitempty"`
	Metadata RelationshipMetadata  `json:"metadata"`
	Capability CapabilityBlock     `json:"capability"`
}

// IsPlaceholder reports whether the target is an unresolved
// "RESOLVE:<specifier>" sentinel.
func (r Relationship) IsPlaceholder() bool {
	return strings.HasPrefix(r.TargetID, ResolvePrefix)
}

// IsExternalTarget reports whether the target is an
// "external:module:<scheme>:<name>" placeholder.
func (r Relationship) IsExternalTarget() bool {
	return strings.HasPrefix(r.TargetID, ExternalPrefix)
}

// Specifier returns the raw specifier carried by a RESOLVE: placeholder,
// or "" if the target is not a placeholder.
func (r Relationship) Specifier() string {
	if !r.IsPlaceholder() {
		return ""
	}
	return strings.TrimPrefix(r.TargetID, ResolvePrefix)
}

// Valid reports whether r satisfies the Relationship invariants from
// spec.md §3: non-empty source/target, confidence in [0,1], and the
// semantic-tier confidence floor (testable property 9 in spec.md §8).
// Kind is not checked against the closed set.
func (r Relationship) Valid() bool {
	if r.ID == "" || r.SourceID == "" || r.TargetID == "" {
		return false
	}
	if r.Metadata.Confidence < 0 || r.Metadata.Confidence > 1 {
		return false
	}
	if r.Capability.ParsingLevel == LevelSemantic && r.Metadata.Confidence < MinSemanticConfidence {
		return false
	}
	return true
}
