// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package disco

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/opentofu/ostemplate/svchost"
)

type countingSource struct {
	creds Credentials
	err   error
	calls int
}

func (s *countingSource) ForHost(context.Context, svchost.Hostname) (Credentials, error) {
	s.calls++
	return s.creds, s.err
}

func TestBearerToken(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "https://example.com/", nil)
	BearerToken("abc").PrepareRequest(req)
	if got, want := req.Header.Get("Authorization"), "Bearer abc"; got != want {
		t.Errorf("wrong Authorization header %q; want %q", got, want)
	}
}

func TestCredentialsSources(t *testing.T) {
	a := svchost.MustForComparison("a.example.com")
	b := svchost.MustForComparison("b.example.com")
	failing := svchost.MustForComparison("failing.example.com")
	boom := errors.New("boom")

	sources := CredentialsSources{
		StaticCredentials{a: BearerToken("first")},
		&countingSource{err: boom},
		StaticCredentials{a: BearerToken("shadowed"), b: BearerToken("second")},
	}

	tests := []struct {
		host  svchost.Hostname
		want  Credentials
		isErr bool
	}{
		{a, BearerToken("first"), false},
		{b, nil, true},
		{failing, nil, true},
	}
	for _, test := range tests {
		t.Run(test.host.String(), func(t *testing.T) {
			got, err := sources.ForHost(t.Context(), test.host)
			if test.isErr {
				if !errors.Is(err, boom) {
					t.Fatalf("wrong error: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if got != test.want {
				t.Errorf("wrong credentials %#v; want %#v", got, test.want)
			}
		})
	}

	got, err := CredentialsSources(nil).ForHost(t.Context(), a)
	if got != nil || err != nil {
		t.Errorf("empty sources returned %#v, %v", got, err)
	}
}

func TestCachingCredentialsSource(t *testing.T) {
	host := svchost.MustForComparison("example.com")

	t.Run("caches credentials", func(t *testing.T) {
		inner := &countingSource{creds: BearerToken("abc")}
		src := CachingCredentialsSource(inner)
		for range 3 {
			got, err := src.ForHost(t.Context(), host)
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if got != BearerToken("abc") {
				t.Errorf("wrong credentials %#v", got)
			}
		}
		if inner.calls != 1 {
			t.Errorf("inner source called %d times; want 1", inner.calls)
		}
	})

	t.Run("caches absence", func(t *testing.T) {
		inner := &countingSource{}
		src := CachingCredentialsSource(inner)
		src.ForHost(t.Context(), host)
		src.ForHost(t.Context(), host)
		if inner.calls != 1 {
			t.Errorf("inner source called %d times; want 1", inner.calls)
		}
	})

	t.Run("does not cache errors", func(t *testing.T) {
		inner := &countingSource{err: errors.New("unavailable")}
		src := CachingCredentialsSource(inner)
		for range 2 {
			if _, err := src.ForHost(t.Context(), host); err == nil {
				t.Fatal("unexpected success")
			}
		}
		if inner.calls != 2 {
			t.Errorf("inner source called %d times; want 2", inner.calls)
		}
	})
}
