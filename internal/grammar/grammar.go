// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

// Package grammar holds the regular expressions that recognize OpenSearch
// template parameters and URI schemes.
//
// The syntax, from the OpenSearch 1.1 specification:
//
//	tparameter = "{" tqname [ tmodifier ] "}"
//	tqname     = [ tprefix ":" ] tlname
//	tprefix    = *pchar
//	tlname     = *pchar
//	tmodifier  = "?"
//
// pchar is restricted here to unreserved, pct-encoded and sub-delims
// characters, so that ":" can separate the prefix from the local name.
package grammar

import (
	"regexp"
)

const (
	pchar      = `(?:[A-Za-z0-9._~!$&'()*+,;=-]|%[0-9A-Fa-f]{2})*`
	scheme     = `[A-Za-z0-9+.-]+`
	tparameter = `\{(?:(?P<tprefix>` + pchar + `):)?(?P<tlname>` + pchar + `)(?P<tmodifier>\?)?\}`
)

var (
	// Scheme matches, at the start of a template, either a literal scheme
	// or exactly one template parameter, followed by ":".
	Scheme = regexp.MustCompile(`^(?:` + scheme + `|` + tparameter + `):`)

	// Placeholder matches a single template parameter.
	Placeholder = regexp.MustCompile(tparameter)

	// Terms matches either a template parameter or a run of text that
	// contains no "{".
	Terms = regexp.MustCompile(tparameter + `|[^{]+`)
)

var (
	prefixGroup   = Placeholder.SubexpIndex("tprefix")
	nameGroup     = Placeholder.SubexpIndex("tlname")
	modifierGroup = Placeholder.SubexpIndex("tmodifier")
)

// Token is one template parameter occurrence.
type Token struct {
	// Prefix is the namespace prefix, if HasPrefix is set.
	Prefix    string
	HasPrefix bool

	Name     string
	Optional bool
}

// TokenAt interprets the submatch indices returned for s by one of the
// patterns in this package. The second result is false if the match was
// literal text rather than a template parameter.
//
// All three patterns share the parameter subexpressions, and in each of them
// the parameter groups are the only capturing groups, so the same group
// numbering applies.
func TokenAt(s string, loc []int) (Token, bool) {
	if loc[2*nameGroup] < 0 {
		return Token{}, false
	}
	tok := Token{
		Name:     s[loc[2*nameGroup]:loc[2*nameGroup+1]],
		Optional: loc[2*modifierGroup] >= 0,
	}
	if loc[2*prefixGroup] >= 0 {
		tok.HasPrefix = true
		tok.Prefix = s[loc[2*prefixGroup]:loc[2*prefixGroup+1]]
	}
	return tok, true
}

// Split breaks s into literal runs and template parameters, in order.
// Each element is either a literal or, with IsToken set, a token.
func Split(s string) []Part {
	var parts []Part
	for _, loc := range Terms.FindAllStringSubmatchIndex(s, -1) {
		if tok, ok := TokenAt(s, loc); ok {
			parts = append(parts, Part{Token: tok, IsToken: true})
			continue
		}
		parts = append(parts, Part{Text: s[loc[0]:loc[1]]})
	}
	return parts
}

// Part is one element of the result of [Split].
type Part struct {
	Text    string
	Token   Token
	IsToken bool
}
