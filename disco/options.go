// Copyright (c) The OpenTofu Authors
// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package disco

import (
	"net/http"
)

type DiscoOption interface {
	applyOption(disco *Disco)
}

type discoOption func(disco *Disco)

func (o discoOption) applyOption(disco *Disco) {
	o(disco)
}

// WithHTTPClient makes discovery requests use the given client.
func WithHTTPClient(client *http.Client) DiscoOption {
	return discoOption(func(disco *Disco) {
		disco.httpClient = client
	})
}

// WithCredentials makes discovery requests carry credentials from src.
func WithCredentials(src CredentialsSource) DiscoOption {
	return discoOption(func(disco *Disco) {
		disco.credsSrc = src
	})
}
