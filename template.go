// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package ostemplate

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/opentofu/ostemplate/internal/grammar"
)

// Component identifies the part of a URL that a template parameter
// appears in. Each component has its own encoding rules.
type Component int

const (
	ComponentScheme Component = iota + 1
	ComponentUserinfo
	ComponentHost
	ComponentPort

	// ComponentPath covers everything after the authority: the path, the
	// query string and the fragment.
	ComponentPath
)

func (c Component) String() string {
	switch c {
	case ComponentScheme:
		return "scheme"
	case ComponentUserinfo:
		return "userinfo"
	case ComponentHost:
		return "host"
	case ComponentPort:
		return "port"
	case ComponentPath:
		return "path"
	default:
		return fmt.Sprintf("Component(%d)", int(c))
	}
}

// Placeholder describes one template parameter occurrence in a compiled
// template.
type Placeholder struct {
	Name      string
	Optional  bool
	Component Component
}

// Template is a compiled URL template. Use [Compile] to obtain one.
//
// A Template is immutable and may be rendered concurrently from any number
// of goroutines.
type Template struct {
	text  string
	terms []term
}

// MustCompile is like [Compile] but panics if the template cannot be
// compiled. It is intended for templates held in package-level variables.
func MustCompile(text string) *Template {
	t, err := Compile(text)
	if err != nil {
		panic(fmt.Sprintf("ostemplate: Compile(%q): %s", text, err))
	}
	return t
}

// String returns the source text of the template.
func (t *Template) String() string {
	return t.text
}

// Render substitutes params into the template and returns the resulting
// URL string.
//
// If any parameter cannot be substituted then Render returns an error and
// no partial result. The error is one of [ErrMissingParameter],
// [ErrEncoding], [ErrPort] or [ErrHost].
func (t *Template) Render(params Params) (string, error) {
	var sb strings.Builder
	for i := range t.terms {
		if err := t.terms[i].eval(&sb, params); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

// RenderURL is like [Template.Render] but parses the result.
func (t *Template) RenderURL(params Params) (*url.URL, error) {
	s, err := t.Render(params)
	if err != nil {
		return nil, err
	}
	u, err := url.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("rendered template is not a valid URL: %w", err)
	}
	return u, nil
}

// Placeholders returns the template parameters in the order they appear in
// the template source.
func (t *Template) Placeholders() []Placeholder {
	var ret []Placeholder
	for _, tm := range t.terms {
		switch tm.kind {
		case termLiteral:
		case termHost:
			for _, p := range tm.host {
				if p.IsToken {
					ret = append(ret, Placeholder{Name: p.Token.Name, Optional: p.Token.Optional, Component: ComponentHost})
				}
			}
		default:
			ret = append(ret, Placeholder{Name: tm.token.Name, Optional: tm.token.Optional, Component: tm.component})
		}
	}
	return ret
}

type termKind int

const (
	termLiteral termKind = iota
	termScheme
	termHost
	termPort
	termSegment
)

// term is one element of a compiled template. Literal terms carry their
// text; every other kind is a substitution bound to a single token, except
// termHost which carries the literal runs and tokens of the whole host so
// that they can be joined before IDNA encoding.
type term struct {
	kind      termKind
	component Component
	text      string
	token     grammar.Token
	host      []grammar.Part
}

func literal(text string) term {
	return term{kind: termLiteral, text: text}
}

func (t *term) eval(sb *strings.Builder, params Params) error {
	switch t.kind {
	case termLiteral:
		sb.WriteString(t.text)
		return nil
	case termScheme:
		return evalScheme(sb, t.token, params)
	case termHost:
		return evalHost(sb, t.host, params)
	case termPort:
		return evalPort(sb, t.token, params)
	case termSegment:
		return evalSegment(sb, t.token, t.component, params)
	default:
		panic(fmt.Sprintf("unhandled term kind %d", t.kind))
	}
}

// value returns the text of the parameter named by tok. The second result is
// false if tok is optional and has no value.
func value(params Params, tok grammar.Token, c Component) (string, bool, error) {
	v, ok := params.lookup(tok.Name)
	if !ok {
		if tok.Optional {
			return "", false, nil
		}
		return "", false, &ErrMissingParameter{Name: tok.Name, Component: c}
	}
	s, ok := textValue(v)
	if !ok {
		return "", false, &ErrEncoding{Name: tok.Name, Component: c, Err: fmt.Errorf("unsupported value type %T", v)}
	}
	return s, true, nil
}

// appendTerms appends terms to dst, merging adjacent literals.
func appendTerms(dst []term, terms ...term) []term {
	for _, t := range terms {
		if t.kind == termLiteral && len(dst) > 0 && dst[len(dst)-1].kind == termLiteral {
			dst[len(dst)-1].text += t.text
			continue
		}
		dst = append(dst, t)
	}
	return dst
}
