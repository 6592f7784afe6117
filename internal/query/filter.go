// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

package query

import (
	"regexp"
	"strings"

	"github.com/samber/oops"

	"github.com/scmprops/scmprops/internal/multivalue"
	"github.com/scmprops/scmprops/internal/property"
)

var pairPattern = regexp.MustCompile(`^.+=.+$`)

// Filter selects repositories by their properties. Empty fields do not restrict.
type Filter struct {
	// Key is a glob matched against property keys.
	Key string
	// Value holds tab separated globs; every glob must match one value of the same property.
	Value string
	// KeyValuePair is "<keyGlob>=<valueGlobs>".
	KeyValuePair    string
	ExcludeArchived bool
}

// Validate checks the shape of KeyValuePair.
func (f Filter) Validate() error {
	if f.KeyValuePair != "" && !pairPattern.MatchString(f.KeyValuePair) {
		return oops.Code(CodeInvalidFilter).
			With("property", f.KeyValuePair).
			Wrapf(ErrInvalidFilter, "property must match the format <key>=<value>")
	}
	return nil
}

func (f Filter) hasPropertyPredicate() bool {
	return f.Key != "" || f.Value != "" || f.KeyValuePair != ""
}

// predicate is one of the three filter families.
type predicate func(property.CustomProperty) bool

func always(property.CustomProperty) bool { return true }

func (f Filter) keyPredicate(m *Matcher) predicate {
	if f.Key == "" {
		return always
	}
	return func(p property.CustomProperty) bool { return m.Match(f.Key, p.Key) }
}

func (f Filter) valuePredicate(m *Matcher) predicate {
	if f.Value == "" {
		return always
	}
	return valueGlobs(m, f.Value)
}

func (f Filter) pairPredicate(m *Matcher) predicate {
	if f.KeyValuePair == "" {
		return always
	}
	keyGlob, valueTerms, _ := strings.Cut(f.KeyValuePair, "=")
	matchValue := valueGlobs(m, valueTerms)
	return func(p property.CustomProperty) bool {
		return m.Match(keyGlob, p.Key) && matchValue(p)
	}
}

// valueGlobs ANDs the globs in terms; each glob is satisfied by any value of the property.
func valueGlobs(m *Matcher, terms string) predicate {
	globs := multivalue.Split(terms)
	return func(p property.CustomProperty) bool {
		values := p.Values()
		for _, g := range globs {
			if !anyMatch(m, g, values) {
				return false
			}
		}
		return true
	}
}

func anyMatch(m *Matcher, pattern string, values []string) bool {
	for _, v := range values {
		if m.Match(pattern, v) {
			return true
		}
	}
	return false
}
