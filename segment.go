// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package ostemplate

import (
	"net/url"
	"strings"

	"github.com/opentofu/ostemplate/internal/grammar"
)

// parseSegments compiles the userinfo, or everything after the authority.
// Literal text is kept as written; parameter values are form-encoded.
func parseSegments(text string, c Component) []term {
	var terms []term
	for _, p := range grammar.Split(text) {
		if !p.IsToken {
			terms = append(terms, literal(p.Text))
			continue
		}
		terms = append(terms, term{kind: termSegment, component: c, token: p.Token})
	}
	return terms
}

func evalSegment(sb *strings.Builder, tok grammar.Token, c Component, params Params) error {
	s, ok, err := value(params, tok, c)
	if err != nil || !ok {
		return err
	}
	sb.WriteString(url.QueryEscape(s))
	return nil
}
