// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package ostemplate

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/opentofu/ostemplate/internal/grammar"
)

// parseScheme parses the "http:" or "{scheme}:" prefix of text and returns
// the offset just after the colon.
func parseScheme(text string) (int, []term, error) {
	loc := grammar.Scheme.FindStringSubmatchIndex(text)
	if loc == nil {
		if strings.Contains(text, ":") {
			return 0, nil, &ErrScheme{Template: text, Msg: "URI scheme must be either text or a single template parameter"}
		}
		return 0, nil, &ErrScheme{Template: text, Msg: "missing or unparsable URI scheme"}
	}

	tok, ok := grammar.TokenAt(text, loc)
	if !ok {
		return loc[1], []term{literal(text[:loc[1]])}, nil
	}
	if tok.Optional {
		return 0, nil, &ErrScheme{Template: text, Msg: "URI scheme cannot be an optional template parameter"}
	}
	return loc[1], []term{
		{kind: termScheme, component: ComponentScheme, token: tok},
		literal(":"),
	}, nil
}

func evalScheme(sb *strings.Builder, tok grammar.Token, params Params) error {
	s, _, err := value(params, tok, ComponentScheme)
	if err != nil {
		return err
	}
	if s == "" {
		return &ErrEncoding{Name: tok.Name, Component: ComponentScheme, Err: errors.New("scheme must not be empty")}
	}
	if !isASCII(s) {
		return &ErrEncoding{Name: tok.Name, Component: ComponentScheme, Err: fmt.Errorf("scheme %q contains non-ASCII characters", s)}
	}
	sb.WriteString(s)
	return nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
