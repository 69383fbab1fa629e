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

// Package catalog loads the per-language stdlib/vendor module lists the
// resolver consults to classify an unresolved import specifier as
// internal, external, or junk (spec.md §5 Resolver, classification
// rules).
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// languageFile is the on-disk shape of catalogs/<lang>.yaml.
type languageFile struct {
	Language       string   `yaml:"language"`
	Stdlib         []string `yaml:"stdlib"`
	VendorPrefixes []string `yaml:"vendorPrefixes"`
}

// Catalog is a read-only, built-once lookup table of known standard
// library module names and vendor directory prefixes, keyed by
// language. A Catalog is safe for concurrent reads from multiple
// resolver workers since nothing mutates it after Load/Default returns.
type Catalog struct {
	stdlib  map[string]map[string]bool
	vendors map[string][]string
}

// Load builds a Catalog from every catalogs/<lang>.yaml file found in
// dir, falling back to the built-in seed for any language dir does not
// cover. A dir of "" returns the built-in seed unmodified.
func Load(dir string) (*Catalog, error) {
	c := Default()
	if dir == "" {
		return c, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("catalog: read dir %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("catalog: read %s: %w", path, err)
		}
		var lf languageFile
		if err := yaml.Unmarshal(raw, &lf); err != nil {
			return nil, fmt.Errorf("catalog: parse %s: %w", path, err)
		}
		if lf.Language == "" {
			return nil, fmt.Errorf("catalog: %s missing language field", path)
		}
		c.merge(lf)
	}
	return c, nil
}

func (c *Catalog) merge(lf languageFile) {
	set := c.stdlib[lf.Language]
	if set == nil {
		set = make(map[string]bool, len(lf.Stdlib))
	}
	for _, m := range lf.Stdlib {
		set[m] = true
	}
	c.stdlib[lf.Language] = set
	c.vendors[lf.Language] = append(c.vendors[lf.Language], lf.VendorPrefixes...)
}

// IsStdlib reports whether specifier names a standard library module
// for language.
func (c *Catalog) IsStdlib(language, specifier string) bool {
	set := c.stdlib[language]
	if set == nil {
		return false
	}
	if set[specifier] {
		return true
	}
	// Go stdlib imports are often sub-packages of a cataloged root, e.g.
	// "net/http/httptest" under "net/http" — fall back to a longest-
	// prefix check so the seed file doesn't need to enumerate every leaf.
	for root := range set {
		if specifier == root || strings.HasPrefix(specifier, root+"/") {
			return true
		}
	}
	return false
}

// IsVendored reports whether path falls under a known vendor directory
// convention for language (e.g. Go's vendor/, Node's node_modules/).
func (c *Catalog) IsVendored(language, path string) bool {
	for _, prefix := range c.vendors[language] {
		if strings.Contains(path, prefix) {
			return true
		}
	}
	return false
}

// Languages returns the set of languages the catalog has stdlib
// entries for, sorted is not guaranteed.
func (c *Catalog) Languages() []string {
	out := make([]string, 0, len(c.stdlib))
	for lang := range c.stdlib {
		out = append(out, lang)
	}
	return out
}
