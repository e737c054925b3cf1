// Copyright (c) The OpenTofu Authors
// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package disco

import (
	"context"
	"net/http"
	"sync"

	"github.com/opentofu/ostemplate/svchost"
)

// Credentials authenticate a discovery request.
type Credentials interface {
	// PrepareRequest modifies req in place, usually by adding an
	// Authorization header. It must not make unrelated changes.
	PrepareRequest(req *http.Request)
}

// CredentialsSource may be able to provide credentials for a host.
type CredentialsSource interface {
	// ForHost returns nil, nil if the source has no credentials for host.
	ForHost(ctx context.Context, host svchost.Hostname) (Credentials, error)
}

// BearerToken is sent as an "Authorization: Bearer" header.
type BearerToken string

var _ Credentials = BearerToken("")

func (t BearerToken) PrepareRequest(req *http.Request) {
	if req.Header == nil {
		req.Header = http.Header{}
	}
	req.Header.Set("Authorization", "Bearer "+string(t))
}

// StaticCredentials is a [CredentialsSource] backed by a fixed map. The map
// must not be modified once in use.
type StaticCredentials map[svchost.Hostname]Credentials

var _ CredentialsSource = StaticCredentials(nil)

func (s StaticCredentials) ForHost(_ context.Context, host svchost.Hostname) (Credentials, error) {
	return s[host], nil
}

// CredentialsSources tries each of its members in turn, returning the first
// non-nil credentials or error.
type CredentialsSources []CredentialsSource

var _ CredentialsSource = CredentialsSources(nil)

func (c CredentialsSources) ForHost(ctx context.Context, host svchost.Hostname) (Credentials, error) {
	for _, source := range c {
		creds, err := source.ForHost(ctx, host)
		if creds != nil || err != nil {
			return creds, err
		}
	}
	return nil, nil
}

// CachingCredentialsSource wraps source and remembers its answer for each
// host, including the absence of credentials. Errors are not cached.
//
// Cached entries never expire, so the result should not outlive any
// time-limited credentials it may hold.
func CachingCredentialsSource(source CredentialsSource) CredentialsSource {
	return &cachingCredentialsSource{
		source: source,
		cache:  map[svchost.Hostname]Credentials{},
	}
}

type cachingCredentialsSource struct {
	source CredentialsSource
	cache  map[svchost.Hostname]Credentials
	mu     sync.Mutex
}

func (s *cachingCredentialsSource) ForHost(ctx context.Context, host svchost.Hostname) (Credentials, error) {
	s.mu.Lock()
	if creds, cached := s.cache[host]; cached {
		s.mu.Unlock()
		return creds, nil
	}
	s.mu.Unlock()

	creds, err := s.source.ForHost(ctx, host)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache[host] = creds
	s.mu.Unlock()
	return creds, nil
}
