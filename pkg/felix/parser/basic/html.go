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

package basic

import (
	"regexp"
	"strings"

	"github.com/felix-ide/felix/pkg/felix/parser"
	"github.com/felix-ide/felix/pkg/felix/types"
)

var htmlHeadingTag = regexp.MustCompile(`(?i)^<h[1-6][^>]*>(.*)`)

// HTMLBackend extracts an outline from <h1>-<h6> tags line by line.
func HTMLBackend() parser.Backend {
	return parser.Backend{
		Name: "detectors-only", Tier: types.LevelBasic, Priority: 5,
		ParseContent: func(content []byte, path string, opts parser.Options) (types.ParseResult, error) {
			return parseHeadingOutline(content, path, "html", isHTMLHeading, htmlHeadingText)
		},
		SupportedExtensions: func() []string { return []string{".html", ".htm"} },
		CanParseFile:        extMatcher(".html", ".htm"),
	}
}

func isHTMLHeading(trimmed string) bool {
	return htmlHeadingTag.MatchString(trimmed)
}

func htmlHeadingText(trimmed string) string {
	m := htmlHeadingTag.FindStringSubmatch(trimmed)
	if m == nil {
		return ""
	}
	text := m[1]
	if idx := strings.Index(text, "<"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
