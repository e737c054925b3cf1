// Copyright (c) The OpenTofu Authors
// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package svchost deals with the representations of the hostnames that
// publish OpenSearch service templates, so that hosts given in different
// forms can be compared and used as cache keys.
package svchost

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"golang.org/x/net/idna"
)

// Hostname is a host in its normalized comparison form: lowercase ASCII,
// with internationalized labels in punycode, plus a port if a non-default
// one was given.
//
// Use [ForComparison] to obtain a Hostname from user input.
type Hostname string

var comparisonProfile = idna.New(
	idna.MapForLookup(),
	idna.Transitional(true),
)

// ForComparison takes a hostname, optionally with a port, and returns its
// comparison form. The default HTTPS port 443 is removed.
func ForComparison(given string) (Hostname, error) {
	host, port, err := splitPort(given)
	if err != nil {
		return Hostname(""), err
	}
	if host == "" {
		return Hostname(""), errors.New("empty string is not a valid hostname")
	}

	ascii, err := comparisonProfile.ToASCII(host)
	if err != nil {
		return Hostname(""), fmt.Errorf("invalid hostname %q: %w", given, err)
	}
	if port != "" {
		return Hostname(ascii + ":" + port), nil
	}
	return Hostname(ascii), nil
}

// MustForComparison is like [ForComparison] but panics on error.
func MustForComparison(given string) Hostname {
	h, err := ForComparison(given)
	if err != nil {
		panic(err)
	}
	return h
}

// ForDisplay returns a version of the receiver that is appropriate for
// showing to an end-user, with punycode labels decoded.
func (h Hostname) ForDisplay() string {
	host, port, err := splitPort(string(h))
	if err != nil {
		return string(h)
	}
	display, err := idna.Display.ToUnicode(host)
	if err != nil {
		display = host
	}
	if port != "" {
		return display + ":" + port
	}
	return display
}

// String returns the comparison form, which is also the form to use in a
// URL authority.
func (h Hostname) String() string {
	return string(h)
}

func (h Hostname) GoString() string {
	return fmt.Sprintf("svchost.Hostname(%q)", string(h))
}

func splitPort(given string) (string, string, error) {
	if strings.HasPrefix(given, "[") || strings.Count(given, ":") > 1 {
		return "", "", fmt.Errorf("IP literal hostnames are not supported: %q", given)
	}
	host, port, err := net.SplitHostPort(given)
	if err != nil {
		// Without a port, SplitHostPort complains about the missing colon.
		if !strings.Contains(given, ":") {
			return given, "", nil
		}
		return "", "", fmt.Errorf("invalid hostname %q: %w", given, err)
	}
	n, err := strconv.ParseUint(port, 10, 16)
	if err != nil || n == 0 {
		return "", "", fmt.Errorf("invalid port %q in hostname %q", port, given)
	}
	if n == 443 {
		return host, "", nil
	}
	return host, strconv.FormatUint(n, 10), nil
}
