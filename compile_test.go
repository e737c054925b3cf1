// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package ostemplate

import (
	"errors"
	"strings"
	"testing"
)

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		template string
		check    func(error) bool
		err      string
	}{
		// Braces and parameter names
		{"http://example.com/{id", isErr[*ErrTemplateSyntax], `unexpected '{' at position 20`},
		{"http://example.com/id}", isErr[*ErrTemplateSyntax], `unexpected '}' at position 22`},
		{"http://example.com/{a b}", isErr[*ErrTemplateSyntax], `unexpected '{' at position 20`},
		{"http://exämple.com/{a}}", isErr[*ErrTemplateSyntax], `unexpected '}' at position 23`},
		{"http://example.com/{}", isErr[*ErrTemplateSyntax], `empty template parameter name in {} at position 20`},
		{"http://example.com/{?}", isErr[*ErrTemplateSyntax], `empty template parameter name`},
		{"http://example.com/{ns:}", isErr[*ErrTemplateSyntax], `empty template parameter name`},

		// Namespaced parameters
		{"http://example.com?q={a:localname?}", isErr[*ErrUnsupportedFeature], `template prefix not supported in {a:localname?}`},
		{"http://example.com/search?color={custom:color?}", isErr[*ErrUnsupportedFeature], `{custom:color?}`},

		// Scheme
		{"example.com/{id}", isErr[*ErrScheme], `missing or unparsable URI scheme`},
		{"{a}{b}://example.com/", isErr[*ErrScheme], `URI scheme must be either text or a single template parameter`},
		{"ht tp://example.com/", isErr[*ErrScheme], `URI scheme must be either text or a single template parameter`},
		{"{scheme?}://x/", isErr[*ErrScheme], `URI scheme cannot be an optional template parameter`},

		// Authority
		{"mailto:someone@example.com", isErr[*ErrTemplateSyntax], `missing required "//"`},
		{"http:/example.com/", isErr[*ErrTemplateSyntax], `missing required "//"`},
		{"http:///path", isErr[*ErrHost], `a host is required`},
		{"http://user@/path", isErr[*ErrHost], `a host is required`},
		{"http://:8080/path", isErr[*ErrHost], `a host is required`},
		{"http://{host?}/", isErr[*ErrHost], `host cannot contain the optional template parameter "host"`},
		{"http://www.{domain?}.com/", isErr[*ErrHost], `optional template parameter "domain"`},
		{"http://[::1/", isErr[*ErrHost], `missing ']'`},
		{"http://[::1]x/", isErr[*ErrHost], `unexpected text after IP literal`},
		{"http://[{addr}]/", isErr[*ErrHost], `cannot contain template parameters`},
		{"http://a\ue000b.example/", isErr[*ErrHost], `invalid host`},

		// Port
		{"http://example.com:/", isErr[*ErrPort], `must be either a number or a template parameter`},
		{"http://example.com:http/", isErr[*ErrPort], `must be either a number or a template parameter`},
		{"http://example.com:8{p}/", isErr[*ErrPort], `must be either a number or a template parameter`},
		{"http://example.com:{p}0/", isErr[*ErrPort], `may not contain anything after the template parameter`},
		{"http://example.com:{p}{q}/", isErr[*ErrPort], `may not contain anything after the template parameter`},
	}

	for _, test := range tests {
		t.Run(test.template, func(t *testing.T) {
			tmpl, err := Compile(test.template)
			if err == nil {
				t.Fatalf("unexpected success; want error")
			}
			if tmpl != nil {
				t.Errorf("template returned with error")
			}
			if !test.check(err) {
				t.Errorf("wrong error type %T: %s", err, err)
			}
			if !strings.Contains(err.Error(), test.err) {
				t.Errorf("wrong error\ngot:  %s\nwant substring: %s", err, test.err)
			}
		})
	}
}

func TestCompileSyntaxErrorPosition(t *testing.T) {
	_, err := Compile("http://example.com/{id")
	var synErr *ErrTemplateSyntax
	if !errors.As(err, &synErr) {
		t.Fatalf("wrong error %T: %v", err, err)
	}
	if got, want := synErr.Pos, 20; got != want {
		t.Errorf("wrong position %d; want %d", got, want)
	}
}

func TestCompileDelimitersInsideParameters(t *testing.T) {
	// Sub-delims are allowed in parameter names and must not move the
	// component boundaries.
	tmpl, err := Compile("http://{a=b}.example.com:{p$}/x?{q!}")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	got, err := tmpl.Render(Params{"a=b": "host", "p$": 81, "q!": "v"})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if want := "http://host.example.com:81/x?v"; got != want {
		t.Errorf("wrong result\ngot:  %s\nwant: %s", got, want)
	}
}

func TestCompileLiteralRoundTrip(t *testing.T) {
	for _, text := range []string{
		"http://example.com/",
		"https://example.com:8443/a/b?c=d&e=f#g",
		"ftp://user:pw@ftp.example.com/pub/",
		"svn+ssh://example.com",
		"http://example.com?x",
		"http://example.com#top",
		"http://Example.COM/Path",
		"http://WWW.example.com:8080/",
		"HTTP://Example.com/A?B=C",
		"http://example.com/naïve?q=π",
	} {
		t.Run(text, func(t *testing.T) {
			tmpl, err := Compile(text)
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if len(tmpl.terms) != 1 {
				t.Errorf("literal template compiled to %d terms; want 1", len(tmpl.terms))
			}
			got, err := tmpl.Render(Params{})
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if got != text {
				t.Errorf("wrong result\ngot:  %s\nwant: %s", got, text)
			}
		})
	}
}
