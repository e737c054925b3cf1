// Copyright (c) The OpenTofu Authors
// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package disco

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/opentofu/ostemplate"
	"github.com/opentofu/ostemplate/svchost"
)

// traceRecorder records trace events as lines of the form
// "event host[: error]".
type traceRecorder struct {
	events []string
}

type startedHostKey struct{}

func (r *traceRecorder) trace() *DiscoTrace {
	return &DiscoTrace{
		DiscoveryStart: func(ctx context.Context, host svchost.Hostname) context.Context {
			r.events = append(r.events, "start "+host.ForDisplay())
			return context.WithValue(ctx, startedHostKey{}, host)
		},
		DiscoverySuccess: func(ctx context.Context, host svchost.Hostname) {
			r.finish(ctx, "success", host, nil)
		},
		DiscoveryFailure: func(ctx context.Context, host svchost.Hostname, err error) {
			r.finish(ctx, "failure", host, err)
		},
		DiscoveryHostCached: func(ctx context.Context, host svchost.Hostname) {
			r.events = append(r.events, "cached "+host.ForDisplay())
		},
	}
}

func (r *traceRecorder) finish(ctx context.Context, event string, host svchost.Hostname, err error) {
	line := event + " " + host.ForDisplay()
	if ctx.Value(startedHostKey{}) != host {
		line += " (context not derived from DiscoveryStart)"
	}
	if err != nil {
		line += ": " + err.Error()
	}
	r.events = append(r.events, line)
}

// take returns the events recorded so far and resets the recorder.
func (r *traceRecorder) take() []string {
	events := r.events
	r.events = nil
	return events
}

func TestDiscoTrace(t *testing.T) {
	status := http.StatusServiceUnavailable
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"search.v1": "/search?q={searchTerms}&page={startPage?}"}`))
	}))
	defer server.Close()
	hostname := svchost.Hostname(strings.TrimPrefix(server.URL, "https://"))
	alias := svchost.MustForComparison("search.invalid")
	forced := svchost.MustForComparison("forced.example.com")

	rec := &traceRecorder{}
	ctx := ContextWithDiscoTrace(t.Context(), rec.trace())

	d := New(WithHTTPClient(server.Client()))
	d.Alias(alias, hostname)
	d.ForceHostServices(forced, map[string]any{
		"search.v1": "https://{region}.forced.example.com/?q={searchTerms}",
	})

	checkEvents := func(t *testing.T, want ...string) {
		t.Helper()
		if diff := cmp.Diff(want, rec.take()); diff != "" {
			t.Error("wrong trace events\n" + diff)
		}
	}
	checkURL := func(t *testing.T, got interface{ String() string }, want string) {
		t.Helper()
		if got.String() != want {
			t.Errorf("wrong URL\ngot:  %s\nwant: %s", got, want)
		}
	}

	// The steps share the discovery cache, so they run in order.

	// A failed discovery is reported and not cached.
	_, err := d.DiscoverServiceURL(ctx, hostname, "search.v1", ostemplate.Params{"searchTerms": "x"})
	if err == nil {
		t.Fatal("unexpected success; want error")
	}
	checkEvents(t,
		"start "+hostname.ForDisplay(),
		"failure "+hostname.ForDisplay()+": failed to request discovery document: 503 Service Unavailable",
	)

	// Once the server recovers, discovery succeeds and the URL renders.
	status = http.StatusOK
	u, err := d.DiscoverServiceURL(ctx, hostname, "search.v1", ostemplate.Params{"searchTerms": "go lang", "startPage": 2})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	checkURL(t, u, server.URL+"/search?q=go+lang&page=2")
	checkEvents(t,
		"start "+hostname.ForDisplay(),
		"success "+hostname.ForDisplay(),
	)

	// A render failure on a cached host is not a discovery failure.
	_, err = d.DiscoverServiceURL(ctx, hostname, "search.v1", nil)
	var missing *ostemplate.ErrMissingParameter
	if !errors.As(err, &missing) {
		t.Fatalf("wrong error %T: %v", err, err)
	}
	checkEvents(t, "cached "+hostname.ForDisplay())

	// An alias is discovered and cached under its own name, with templates
	// resolved against the target host.
	u, err = d.DiscoverServiceURL(ctx, alias, "search.v1", ostemplate.Params{"searchTerms": "a"})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	checkURL(t, u, server.URL+"/search?q=a&page=")
	checkEvents(t,
		"start search.invalid",
		"success search.invalid",
	)
	if _, err := d.Discover(ctx, alias); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	checkEvents(t, "cached search.invalid")

	// Forced services never touch the network.
	u, err = d.DiscoverServiceURL(ctx, forced, "search.v1", ostemplate.Params{"region": "EU", "searchTerms": "b"})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	checkURL(t, u, "https://EU.forced.example.com/?q=b")
	checkEvents(t, "cached forced.example.com")

	// Forgetting everything, including forced services, starts over.
	d.ForgetAll()
	if _, err := d.Discover(ctx, hostname); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	checkEvents(t,
		"start "+hostname.ForDisplay(),
		"success "+hostname.ForDisplay(),
	)
}
