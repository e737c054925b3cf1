// Copyright (c) The OpenTofu Authors
// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package disco discovers the OpenSearch URL templates that a host
// publishes for its services.
//
// A host publishes a JSON object at a well-known path, mapping service
// identifiers of the form "name.vN" to URL templates:
//
//	{
//	  "search.v1": "https://{region}.example.com/search?q={searchTerms}&page={startPage?}",
//	  "suggest.v1": "/suggest?q={searchTerms}"
//	}
//
// Templates starting with "/" are relative to the host that published them.
package disco

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"sync"
	"time"

	cleanhttp "github.com/hashicorp/go-cleanhttp"

	"github.com/opentofu/ostemplate"
	"github.com/opentofu/ostemplate/svchost"
)

const (
	discoPath = "/.well-known/opensearch.json"

	// Used only for the default HTTP client.
	maxRedirects = 3
	discoTimeout = 11 * time.Second

	maxDiscoDocBytes = 1 * 1024 * 1024
)

// Disco discovers service templates for hostnames and caches the results
// by hostname.
type Disco struct {
	// must lock "mu" while interacting with these maps
	aliases   map[svchost.Hostname]svchost.Hostname
	hostCache map[svchost.Hostname]*Host
	mu        sync.Mutex

	credsSrc   CredentialsSource
	httpClient *http.Client
}

// ErrServiceDiscoveryNetworkRequest is returned when the discovery request
// could not be made at all.
type ErrServiceDiscoveryNetworkRequest struct {
	err error
}

func (e ErrServiceDiscoveryNetworkRequest) Error() string {
	return fmt.Sprintf("failed to request discovery document: %s", e.err)
}

func (e ErrServiceDiscoveryNetworkRequest) Unwrap() error {
	return e.err
}

// New returns a discovery object configured with the given options.
//
// Without [WithHTTPClient], requests use a pooled client with a short
// timeout and a small redirect limit.
func New(options ...DiscoOption) *Disco {
	ret := &Disco{
		aliases:   make(map[svchost.Hostname]svchost.Hostname),
		hostCache: make(map[svchost.Hostname]*Host),
	}
	for _, opt := range options {
		opt.applyOption(ret)
	}

	if ret.httpClient == nil {
		client := cleanhttp.DefaultPooledClient()
		client.Timeout = discoTimeout
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) > maxRedirects {
				return errors.New("too many redirects")
			}
			return nil
		}
		ret.httpClient = client
	}

	return ret
}

// CredentialsForHost returns the credentials to use for discovery requests
// to the given host or the target of its alias, or nil if there are none.
func (d *Disco) CredentialsForHost(ctx context.Context, hostname svchost.Hostname) (Credentials, error) {
	if d.credsSrc == nil {
		return nil, nil
	}
	d.mu.Lock()
	if target, ok := d.aliases[hostname]; ok {
		hostname = target
	}
	d.mu.Unlock()
	return d.credsSrc.ForHost(ctx, hostname)
}

// ForceHostServices records a fixed set of service templates for the given
// host, so that no network request is made for it.
func (d *Disco) ForceHostServices(hostname svchost.Hostname, services map[string]any) {
	if services == nil {
		services = map[string]any{}
	}

	d.mu.Lock()
	d.hostCache[hostname] = &Host{
		discoURL: &url.URL{
			Scheme: "https",
			Host:   hostname.String(),
			Path:   discoPath,
		},
		hostname: hostname.ForDisplay(),
		services: services,
	}
	d.mu.Unlock()
}

// Alias makes discovery and credentials lookups for alias use target
// instead.
func (d *Disco) Alias(alias, target svchost.Hostname) {
	d.mu.Lock()
	d.aliases[alias] = target
	d.mu.Unlock()
}

// Discover returns the services published by the given host, which must be
// in comparison form. A host that publishes no discovery document yields a
// non-nil Host with no services.
//
// Concurrent calls for the same uncached host may each make a request; the
// last one to finish is cached.
func (d *Disco) Discover(ctx context.Context, hostname svchost.Hostname) (*Host, error) {
	trace := discoTraceFromContext(ctx)

	d.mu.Lock()
	if host, cached := d.hostCache[hostname]; cached {
		d.mu.Unlock()
		trace.discoveryHostCached(ctx, hostname)
		return host, nil
	}
	d.mu.Unlock()

	ctx = trace.discoveryStart(ctx, hostname)
	host, err := d.discover(ctx, hostname)
	if err != nil {
		trace.discoveryFailure(ctx, hostname, err)
		return nil, err
	}
	trace.discoverySuccess(ctx, hostname)

	d.mu.Lock()
	d.hostCache[hostname] = host
	d.mu.Unlock()

	return host, nil
}

// DiscoverServiceURL discovers the given host and renders the template of
// one of its services.
func (d *Disco) DiscoverServiceURL(ctx context.Context, hostname svchost.Hostname, serviceID string, params ostemplate.Params) (*url.URL, error) {
	host, err := d.Discover(ctx, hostname)
	if err != nil {
		return nil, err
	}
	return host.ServiceURL(serviceID, params)
}

// discover makes the discovery request. d.mu must not be held.
func (d *Disco) discover(ctx context.Context, hostname svchost.Hostname) (*Host, error) {
	d.mu.Lock()
	if target, ok := d.aliases[hostname]; ok {
		hostname = target
	}
	d.mu.Unlock()

	discoURL := &url.URL{
		Scheme: "https",
		Host:   hostname.String(),
		Path:   discoPath,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, discoURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("invalid discovery request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	// Failing to obtain credentials just makes the request anonymous.
	if creds, err := d.CredentialsForHost(ctx, hostname); err == nil && creds != nil {
		creds.PrepareRequest(req)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, ErrServiceDiscoveryNetworkRequest{err}
	}
	defer resp.Body.Close()

	host := &Host{
		// The request URL may differ from discoURL after redirects.
		discoURL: resp.Request.URL,
		hostname: hostname.ForDisplay(),
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return host, nil
	default:
		return nil, fmt.Errorf("failed to request discovery document: %s", resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, fmt.Errorf("discovery URL has a malformed Content-Type %q", contentType)
	}
	if mediaType != "application/json" {
		return nil, fmt.Errorf("discovery URL returned an unsupported Content-Type %q", mediaType)
	}

	// ContentLength is -1 for chunked responses, which the LimitReader
	// below still bounds.
	if resp.ContentLength > maxDiscoDocBytes {
		return nil, fmt.Errorf(
			"discovery doc response is too large (got %d bytes; limit %d)",
			resp.ContentLength, maxDiscoDocBytes,
		)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDiscoDocBytes))
	if err != nil {
		return nil, fmt.Errorf("error reading discovery document body: %w", err)
	}

	var services map[string]any
	if err := json.Unmarshal(body, &services); err != nil {
		return nil, fmt.Errorf("failed to decode discovery document as a JSON object: %w", err)
	}
	host.services = services

	return host, nil
}

// Forget removes any cached result for the given hostname.
func (d *Disco) Forget(hostname svchost.Hostname) {
	d.mu.Lock()
	delete(d.hostCache, hostname)
	d.mu.Unlock()
}

// ForgetAll removes all cached results.
func (d *Disco) ForgetAll() {
	d.mu.Lock()
	d.hostCache = make(map[svchost.Hostname]*Host)
	d.mu.Unlock()
}

// ForgetAlias removes an alias along with any cached result for it.
func (d *Disco) ForgetAlias(alias svchost.Hostname) {
	d.mu.Lock()
	delete(d.aliases, alias)
	delete(d.hostCache, alias)
	d.mu.Unlock()
}
