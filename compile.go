// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package ostemplate

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/opentofu/ostemplate/internal/grammar"
)

// Compile parses an OpenSearch URL template.
//
// The template must be an absolute URL with an authority, such as
// "https://{country}.example.com/search?q={searchTerms}&page={startPage?}".
// Template parameters may appear anywhere except that:
//   - the scheme may be a single required parameter, or literal text;
//   - the host may mix literal text with required parameters only;
//   - the port may be a number or a single parameter, optional or not.
//
// Parameters with a namespace prefix, such as "{geo:box?}", are rejected
// with [ErrUnsupportedFeature].
func Compile(text string) (*Template, error) {
	// Delimiters are located in a copy of the template in which every
	// parameter is replaced by filler of the same length, so that
	// characters inside parameter names can't be mistaken for structure.
	masked, err := mask(text)
	if err != nil {
		return nil, err
	}

	start, terms, err := parseScheme(text)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(text[start:], "//") {
		return nil, &ErrTemplateSyntax{Template: text, Msg: "missing required \"//\" after the scheme (a scheme and host must be given)"}
	}
	terms = appendTerms(terms, literal("//"))
	start += len("//")

	end := len(masked)
	if i := strings.IndexAny(masked[start:], "/?#"); i >= 0 {
		end = start + i
	}
	authority, err := parseAuthority(text, text[start:end], masked[start:end])
	if err != nil {
		return nil, err
	}
	terms = appendTerms(terms, authority...)
	terms = appendTerms(terms, parseSegments(text[end:], ComponentPath)...)

	return &Template{
		text:  text,
		terms: terms,
	}, nil
}

// mask returns text with each template parameter replaced by "X"s, after
// checking that no stray braces remain and that every parameter is usable.
func mask(text string) (string, error) {
	locs := grammar.Placeholder.FindAllStringSubmatchIndex(text, -1)

	var sb strings.Builder
	sb.Grow(len(text))
	last := 0
	for _, loc := range locs {
		sb.WriteString(text[last:loc[0]])
		sb.WriteString(strings.Repeat("X", loc[1]-loc[0]))
		last = loc[1]
	}
	sb.WriteString(text[last:])
	masked := sb.String()

	if i := strings.IndexAny(masked, "{}"); i >= 0 {
		return "", &ErrTemplateSyntax{
			Template: text,
			Pos:      position(masked, i),
			Msg:      fmt.Sprintf("unexpected %q", masked[i]),
		}
	}

	for _, loc := range locs {
		if tok, _ := grammar.TokenAt(text, loc); tok.Name == "" {
			return "", &ErrTemplateSyntax{
				Template: text,
				Pos:      position(text, loc[0]),
				Msg:      fmt.Sprintf("empty template parameter name in %s", text[loc[0]:loc[1]]),
			}
		}
	}
	for _, loc := range locs {
		if tok, _ := grammar.TokenAt(text, loc); tok.HasPrefix {
			return "", &ErrUnsupportedFeature{Template: text, Parameter: text[loc[0]:loc[1]]}
		}
	}
	return masked, nil
}

// position converts a byte offset into a 1-based character position.
func position(s string, offset int) int {
	return utf8.RuneCountInString(s[:offset]) + 1
}
