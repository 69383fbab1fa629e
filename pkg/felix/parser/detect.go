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

package parser

import (
	"path/filepath"
	"sort"
	"strings"
)

// extensionLanguage is the extension → language map consulted first in
// the detection order (spec.md §4.1).
var extensionLanguage = map[string]string{
	".go":    "go",
	".py":    "python",
	".pyi":   "python",
	".js":    "javascript",
	".mjs":   "javascript",
	".cjs":   "javascript",
	".jsx":   "javascript",
	".ts":    "typescript",
	".tsx":   "typescript",
	".java":  "java",
	".cs":    "csharp",
	".php":   "php",
	".md":    "markdown",
	".markdown": "markdown",
	".html":  "html",
	".htm":   "html",
	".proto": "protobuf",
	".txt":   "text",
}

// shebangLanguage maps an interpreter named on a #! line to a
// language, used when the extension map misses (e.g. extensionless
// scripts).
var shebangLanguage = map[string]string{
	"python":  "python",
	"python3": "python",
	"node":    "javascript",
	"php":     "php",
}

// Method records which detection rule produced a Detection.
type Method string

const (
	MethodOverride  Method = "override"
	MethodExtension Method = "extension"
	MethodShebang   Method = "shebang"
	MethodContent   Method = "content"
	MethodNone      Method = "none"
)

// Detection is the result of resolving a path (and optional content
// sample) to a language and detection method (spec.md §4.1).
type Detection struct {
	Language string
	Method   Method
}

// DetectLanguage implements the detection order from spec.md §4.1:
// explicit override, extension map, shebang, then a content-heuristic
// fallback. override is the empty string when the caller has none.
func DetectLanguage(path string, contentSample []byte, override string) Detection {
	if override != "" {
		return Detection{Language: override, Method: MethodOverride}
	}
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := extensionLanguage[ext]; ok {
		return Detection{Language: lang, Method: MethodExtension}
	}
	if lang, ok := detectShebang(contentSample); ok {
		return Detection{Language: lang, Method: MethodShebang}
	}
	if lang, ok := detectByContent(contentSample); ok {
		return Detection{Language: lang, Method: MethodContent}
	}
	return Detection{Language: "", Method: MethodNone}
}

func detectShebang(content []byte) (string, bool) {
	line := firstLine(content)
	if !strings.HasPrefix(line, "#!") {
		return "", false
	}
	interpreter := filepath.Base(strings.Fields(line)[len(strings.Fields(line))-1])
	lang, ok := shebangLanguage[interpreter]
	return lang, ok
}

func firstLine(content []byte) string {
	for i, b := range content {
		if b == '\n' {
			return string(content[:i])
		}
	}
	return string(content)
}

// contentToken pairs a language-distinctive substring with the
// language it votes for. Density of matches breaks ties per spec.md
// §4.1 ("scored by density of language-specific tokens").
var contentTokens = []struct {
	token    string
	language string
}{
	{"package main", "go"},
	{"func (", "go"},
	{"def __init__", "python"},
	{"import numpy", "python"},
	{"public static void main", "java"},
	{"namespace ", "csharp"},
	{"<?php", "php"},
	{"<!DOCTYPE html", "html"},
	{"syntax = \"proto", "protobuf"},
}

func detectByContent(content []byte) (string, bool) {
	if len(content) == 0 {
		return "", false
	}
	text := string(content)
	counts := make(map[string]int)
	for _, ct := range contentTokens {
		if strings.Contains(text, ct.token) {
			counts[ct.language] += strings.Count(text, ct.token)
		}
	}
	if len(counts) == 0 {
		return "", false
	}
	type candidate struct {
		lang  string
		count int
	}
	var ranked []candidate
	for lang, count := range counts {
		ranked = append(ranked, candidate{lang, count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].lang < ranked[j].lang
	})
	return ranked[0].lang, true
}
