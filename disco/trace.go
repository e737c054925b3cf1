// Copyright (c) The OpenTofu Authors
// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package disco

import (
	"context"

	"github.com/opentofu/ostemplate/svchost"
)

// DiscoTrace receives notifications about discovery requests, for callers
// that want to log them or record telemetry. Attach one to a context with
// [ContextWithDiscoTrace] and pass that context to [Disco.Discover].
//
// Any of the fields may be nil, in which case that event is not reported.
type DiscoTrace struct {
	// DiscoveryStart is called before a discovery request. The context it
	// returns, which must be ctx or a child of it, is used for the request
	// and passed to the DiscoverySuccess or DiscoveryFailure call that
	// follows.
	DiscoveryStart func(ctx context.Context, host svchost.Hostname) context.Context

	DiscoverySuccess func(ctx context.Context, host svchost.Hostname)
	DiscoveryFailure func(ctx context.Context, host svchost.Hostname, err error)

	// DiscoveryHostCached is called instead of the other three when the
	// result comes from the cache.
	DiscoveryHostCached func(ctx context.Context, host svchost.Hostname)
}

func ContextWithDiscoTrace(parent context.Context, trace *DiscoTrace) context.Context {
	return context.WithValue(parent, discoTraceKey, trace)
}

func (t *DiscoTrace) discoveryStart(ctx context.Context, host svchost.Hostname) context.Context {
	if t.DiscoveryStart == nil {
		return ctx
	}
	return t.DiscoveryStart(ctx, host)
}

func (t *DiscoTrace) discoverySuccess(ctx context.Context, host svchost.Hostname) {
	if t.DiscoverySuccess != nil {
		t.DiscoverySuccess(ctx, host)
	}
}

func (t *DiscoTrace) discoveryFailure(ctx context.Context, host svchost.Hostname, err error) {
	if t.DiscoveryFailure != nil {
		t.DiscoveryFailure(ctx, host, err)
	}
}

func (t *DiscoTrace) discoveryHostCached(ctx context.Context, host svchost.Hostname) {
	if t.DiscoveryHostCached != nil {
		t.DiscoveryHostCached(ctx, host)
	}
}

func discoTraceFromContext(ctx context.Context) *DiscoTrace {
	if trace, ok := ctx.Value(discoTraceKey).(*DiscoTrace); ok && trace != nil {
		return trace
	}
	return noTrace
}

type discoTraceKeyType struct{}

var discoTraceKey discoTraceKeyType

var noTrace = &DiscoTrace{}
