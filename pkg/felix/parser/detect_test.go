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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectLanguage_OverrideWins(t *testing.T) {
	d := DetectLanguage("main.go", nil, "python")
	assert.Equal(t, Detection{Language: "python", Method: MethodOverride}, d)
}

func TestDetectLanguage_Extension(t *testing.T) {
	d := DetectLanguage("src/app.tsx", nil, "")
	assert.Equal(t, Detection{Language: "typescript", Method: MethodExtension}, d)
}

func TestDetectLanguage_Shebang(t *testing.T) {
	d := DetectLanguage("run", []byte("#!/usr/bin/env python3\nprint(1)\n"), "")
	assert.Equal(t, Detection{Language: "python", Method: MethodShebang}, d)
}

func TestDetectLanguage_ContentFallback(t *testing.T) {
	d := DetectLanguage("noext", []byte("package main\n\nfunc (r *T) M() {}\n"), "")
	assert.Equal(t, "go", d.Language)
	assert.Equal(t, MethodContent, d.Method)
}

func TestDetectLanguage_None(t *testing.T) {
	d := DetectLanguage("noext", []byte("just some prose"), "")
	assert.Equal(t, MethodNone, d.Method)
}
