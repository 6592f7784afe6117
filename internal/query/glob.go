// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

package query

import (
	"strings"

	"github.com/gobwas/glob"
	lru "github.com/hashicorp/golang-lru"
)

// DefaultCacheSize is the number of compiled patterns a Matcher keeps.
const DefaultCacheSize = 1024

// escaper neutralizes every glob metacharacter except ? and *.
var escaper = strings.NewReplacer(
	`\`, `\\`,
	`[`, `\[`,
	`]`, `\]`,
	`{`, `\{`,
	`}`, `\}`,
)

// Matcher matches case-insensitive globs where ? is exactly one character and
// * is any run of characters. Compiled patterns are cached.
type Matcher struct {
	cache *lru.ARCCache
}

// NewMatcher creates a Matcher caching up to size patterns; size <= 0 uses DefaultCacheSize.
func NewMatcher(size int) (*Matcher, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.NewARC(size)
	if err != nil {
		return nil, err
	}
	return &Matcher{cache: cache}, nil
}

// Match reports whether s matches pattern, ignoring case.
func (m *Matcher) Match(pattern, s string) bool {
	return m.compile(strings.ToLower(pattern)).Match(strings.ToLower(s))
}

func (m *Matcher) compile(pattern string) glob.Glob {
	if cached, ok := m.cache.Get(pattern); ok {
		return cached.(glob.Glob)
	}
	g, err := glob.Compile(escaper.Replace(pattern))
	if err != nil {
		// Escaped patterns always compile; fall back to a literal match anyway.
		g = literal(pattern)
	}
	m.cache.Add(pattern, g)
	return g
}

type literal string

func (l literal) Match(s string) bool { return string(l) == s }
