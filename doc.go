// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

// Package ostemplate implements the URL templates used by OpenSearch
// description documents, such as
//
//	http://example.com/search?q={searchTerms}&page={startPage?}
//
// A template is compiled once with [Compile] and can then be rendered any
// number of times, concurrently, with [Template.Render].
//
// Each part of the URL is encoded according to its own rules. A scheme
// parameter must be ASCII. The host, including any literal text around host
// parameters, is converted with IDNA as a whole. A port parameter must be an
// integer. Everything else is form-encoded, so that spaces become "+".
//
// The API of this package is currently experimental. We may make breaking
// changes to the API before blessing this module with a stable version
// number, so third-party callers should be prepared to make adjustments if
// they choose to use this library before then.
package ostemplate
