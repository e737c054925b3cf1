// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package ostemplate

import (
	"fmt"
)

// ErrTemplateSyntax is returned by [Compile] when the template has unbalanced
// braces, an empty parameter name, or no "//" after the scheme.
type ErrTemplateSyntax struct {
	Template string

	// Pos is the 1-based character position of the offending character,
	// or zero if the problem is not tied to a single position.
	Pos int
	Msg string
}

func (e *ErrTemplateSyntax) Error() string {
	if e.Pos > 0 {
		return fmt.Sprintf("invalid URL template %q: %s at position %d", e.Template, e.Msg, e.Pos)
	}
	return fmt.Sprintf("invalid URL template %q: %s", e.Template, e.Msg)
}

// ErrScheme is returned by [Compile] when the scheme is missing, cannot be
// parsed, or is an optional template parameter.
type ErrScheme struct {
	Template string
	Msg      string
}

func (e *ErrScheme) Error() string {
	return fmt.Sprintf("invalid URL template %q: %s", e.Template, e.Msg)
}

// ErrHost is returned when the host is empty or contains an optional
// template parameter. It is also returned by [Template.Render] when the
// substituted host is empty.
type ErrHost struct {
	Template string
	Msg      string
}

func (e *ErrHost) Error() string {
	if e.Template == "" {
		return e.Msg
	}
	return fmt.Sprintf("invalid URL template %q: %s", e.Template, e.Msg)
}

// ErrPort is returned by [Compile] for a port that is neither a number nor
// a single template parameter, and by [Template.Render] when the port
// parameter value is not an integer.
type ErrPort struct {
	Template string
	Name     string
	Msg      string
}

func (e *ErrPort) Error() string {
	if e.Template == "" {
		return fmt.Sprintf("port template parameter %q %s", e.Name, e.Msg)
	}
	return fmt.Sprintf("invalid URL template %q: %s", e.Template, e.Msg)
}

// ErrUnsupportedFeature is returned by [Compile] for template parameters
// with a namespace prefix, such as "{geo:box}".
type ErrUnsupportedFeature struct {
	Template  string
	Parameter string
}

func (e *ErrUnsupportedFeature) Error() string {
	return fmt.Sprintf("invalid URL template %q: template prefix not supported in %s", e.Template, e.Parameter)
}

// ErrMissingParameter is returned by [Template.Render] when a required
// template parameter has no value.
type ErrMissingParameter struct {
	Name      string
	Component Component
}

func (e *ErrMissingParameter) Error() string {
	return fmt.Sprintf("missing value for required %s parameter %q", e.Component, e.Name)
}

// ErrEncoding is returned by [Template.Render] when a parameter value cannot
// be encoded for the URL component it appears in.
type ErrEncoding struct {
	Name      string
	Component Component
	Err       error
}

func (e *ErrEncoding) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("cannot encode %s: %s", e.Component, e.Err)
	}
	return fmt.Sprintf("cannot encode %s parameter %q: %s", e.Component, e.Name, e.Err)
}

// Unwrap returns the underlying encoding failure.
func (e *ErrEncoding) Unwrap() error {
	return e.Err
}
