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

// Package segment implements the language-agnostic block splitter
// activated when no language-specific parser exists for a file
// (spec.md §4.3 Segmenter). Its own contribution is always tagged
// backend=detectors-only, parsingLevel=basic, and is never preferred
// over a registered semantic or structural parser.
package segment

import (
	"bufio"
	"bytes"
	"strings"
)

// Block is one language-agnostic slice of a file, bounded by 1-based
// inclusive line numbers, ready for re-submission to detection with a
// narrower content sample.
type Block struct {
	StartLine int
	EndLine   int
	Text      string
}

// headingPrefixes are the line prefixes that mark a Markdown/reST-style
// heading line used as a split point.
var headingPrefixes = []string{"#", "==", "--", "***"}

// Split divides content into blocks using heading markers, bracket
// balance, and blank-line separators — whichever signal fires first
// for a given line (spec.md §4.3). Indentation is not used as a split
// signal. A file with no
// recognizable structure comes back as a single block spanning the
// whole file.
func Split(content []byte) []Block {
	lines := splitLines(content)
	if len(lines) == 0 {
		return nil
	}

	var blocks []Block
	start := 1
	var buf strings.Builder
	depth := 0
	flush := func(end int) {
		if buf.Len() == 0 {
			return
		}
		blocks = append(blocks, Block{StartLine: start, EndLine: end, Text: buf.String()})
		buf.Reset()
		start = end + 1
	}

	for i, line := range lines {
		lineNo := i + 1
		trimmed := strings.TrimSpace(line)

		if depth == 0 && trimmed == "" && buf.Len() > 0 {
			flush(lineNo - 1)
			start = lineNo + 1
			continue
		}
		if depth == 0 && trimmed == "" {
			start = lineNo + 1
			continue
		}
		if depth == 0 && isHeading(trimmed) && buf.Len() > 0 {
			flush(lineNo - 1)
		}

		buf.WriteString(line)
		buf.WriteByte('\n')
		depth += bracketDelta(line)
		if depth < 0 {
			depth = 0
		}
	}
	flush(len(lines))
	return blocks
}

func isHeading(trimmed string) bool {
	for _, p := range headingPrefixes {
		if strings.HasPrefix(trimmed, p) {
			return true
		}
	}
	return false
}

func bracketDelta(line string) int {
	delta := 0
	for _, r := range line {
		switch r {
		case '{', '(', '[':
			delta++
		case '}', ')', ']':
			delta--
		}
	}
	return delta
}

func splitLines(content []byte) []string {
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines
}
