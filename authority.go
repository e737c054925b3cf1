// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package ostemplate

import (
	"fmt"
	"strings"

	"golang.org/x/net/idna"

	"github.com/opentofu/ostemplate/internal/grammar"
)

// hostProfile converts internationalized labels to their ASCII-compatible
// form. It uses transitional processing so that results agree with IDNA
// 2003, which is what OpenSearch clients generally implement, and it accepts
// characters such as "_" that are not strictly valid in domain names.
var hostProfile = idna.New(
	idna.MapForLookup(),
	idna.Transitional(true),
	idna.StrictDomainName(false),
)

// parseAuthority compiles the [userinfo "@"] host [":" port] part of a
// template. xnetloc is netloc with all template parameters masked out, and
// is used only to find the delimiters.
func parseAuthority(tmpl, netloc, xnetloc string) ([]term, error) {
	var terms []term

	hostport, xhostport := netloc, xnetloc
	if i := strings.IndexByte(xnetloc, '@'); i >= 0 {
		terms = appendTerms(terms, parseSegments(netloc[:i], ComponentUserinfo)...)
		terms = appendTerms(terms, literal("@"))
		hostport, xhostport = netloc[i+1:], xnetloc[i+1:]
	}

	host, port, hasPort, err := splitHostPort(tmpl, hostport, xhostport)
	if err != nil {
		return nil, err
	}
	if host == "" {
		return nil, &ErrHost{Template: tmpl, Msg: "a host is required"}
	}

	hostTerm, err := parseHost(tmpl, host)
	if err != nil {
		return nil, err
	}
	terms = appendTerms(terms, hostTerm)

	if !hasPort {
		return terms, nil
	}
	portTerm, err := parsePort(tmpl, port)
	if err != nil {
		return nil, err
	}
	return appendTerms(terms, portTerm), nil
}

func splitHostPort(tmpl, hostport, xhostport string) (host, port string, hasPort bool, err error) {
	from := 0
	if strings.HasPrefix(xhostport, "[") {
		end := strings.IndexByte(xhostport, ']')
		if end < 0 {
			return "", "", false, &ErrHost{Template: tmpl, Msg: "missing ']' after IP literal host"}
		}
		from = end + 1
	}
	i := strings.IndexByte(xhostport[from:], ':')
	if i < 0 {
		return hostport, "", false, nil
	}
	i += from
	return hostport[:i], hostport[i+1:], true, nil
}

func parseHost(tmpl, host string) (term, error) {
	if strings.HasPrefix(host, "[") {
		if !strings.HasSuffix(host, "]") {
			return term{}, &ErrHost{Template: tmpl, Msg: fmt.Sprintf("unexpected text after IP literal host %q", host)}
		}
		if grammar.Placeholder.MatchString(host) {
			return term{}, &ErrHost{Template: tmpl, Msg: "an IP literal host cannot contain template parameters"}
		}
		return literal(host), nil
	}

	parts := grammar.Split(host)
	dynamic := false
	for _, p := range parts {
		if !p.IsToken {
			continue
		}
		if p.Token.Optional {
			return term{}, &ErrHost{Template: tmpl, Msg: fmt.Sprintf("host cannot contain the optional template parameter %q", p.Token.Name)}
		}
		dynamic = true
	}

	if !dynamic {
		encoded, err := encodeHost(host)
		if err != nil {
			return term{}, &ErrHost{Template: tmpl, Msg: fmt.Sprintf("invalid host %q: %s", host, err)}
		}
		return literal(encoded), nil
	}
	return term{kind: termHost, component: ComponentHost, host: parts}, nil
}

// evalHost joins the literal and substituted parts of the host before
// encoding, since a literal part such as ".españa.com" is not a valid
// hostname on its own.
func evalHost(sb *strings.Builder, parts []grammar.Part, params Params) error {
	var hb strings.Builder
	for _, p := range parts {
		if !p.IsToken {
			hb.WriteString(p.Text)
			continue
		}
		s, _, err := value(params, p.Token, ComponentHost)
		if err != nil {
			return err
		}
		hb.WriteString(s)
	}

	host := hb.String()
	if host == "" {
		return &ErrHost{Msg: "template rendered an empty host"}
	}
	encoded, err := encodeHost(host)
	if err != nil {
		return &ErrEncoding{Component: ComponentHost, Err: err}
	}
	sb.WriteString(encoded)
	return nil
}

// encodeHost converts each non-ASCII label of host to punycode. ASCII labels
// are kept exactly as written, case included.
func encodeHost(host string) (string, error) {
	labels := strings.Split(host, ".")
	for i, label := range labels {
		if isASCII(label) {
			continue
		}
		encoded, err := hostProfile.ToASCII(label)
		if err != nil {
			return "", err
		}
		labels[i] = encoded
	}
	return strings.Join(labels, "."), nil
}

func parsePort(tmpl, port string) (term, error) {
	if isDigits(port) {
		return literal(":" + port), nil
	}

	loc := grammar.Placeholder.FindStringSubmatchIndex(port)
	if loc == nil || loc[0] != 0 {
		return term{}, &ErrPort{Template: tmpl, Msg: fmt.Sprintf("port %q must be either a number or a template parameter", port)}
	}
	if loc[1] != len(port) {
		return term{}, &ErrPort{Template: tmpl, Msg: fmt.Sprintf("port %q may not contain anything after the template parameter", port)}
	}
	tok, _ := grammar.TokenAt(port, loc)
	return term{kind: termPort, component: ComponentPort, token: tok}, nil
}

// evalPort writes ":" and the port number. An absent optional port, or an
// empty one, writes nothing at all so that the scheme's default port
// applies.
func evalPort(sb *strings.Builder, tok grammar.Token, params Params) error {
	v, ok := params.lookup(tok.Name)
	if !ok {
		if tok.Optional {
			return nil
		}
		return &ErrMissingParameter{Name: tok.Name, Component: ComponentPort}
	}

	if s, ok := integerValue(v); ok {
		if strings.HasPrefix(s, "-") {
			return &ErrPort{Name: tok.Name, Msg: fmt.Sprintf("is negative (%s)", s)}
		}
		sb.WriteString(":" + s)
		return nil
	}

	s, ok := v.(string)
	if !ok {
		return &ErrPort{Name: tok.Name, Msg: fmt.Sprintf("is not an integer (%T)", v)}
	}
	if s == "" {
		return nil
	}
	if !isDigits(s) {
		return &ErrPort{Name: tok.Name, Msg: fmt.Sprintf("is not an integer (%q)", s)}
	}
	sb.WriteString(":" + s)
	return nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
