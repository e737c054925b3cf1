// Copyright (c) The OpenTofu Authors
// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package disco

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	version "github.com/hashicorp/go-version"

	"github.com/opentofu/ostemplate"
)

// Host is the set of service templates discovered for one host.
type Host struct {
	discoURL *url.URL
	hostname string
	services map[string]any
}

// ErrServiceNotProvided is returned when the service is not provided.
type ErrServiceNotProvided struct {
	hostname string
	service  string
}

func (e *ErrServiceNotProvided) Error() string {
	if e.hostname == "" {
		return fmt.Sprintf("host does not provide a %s service", e.service)
	}
	return fmt.Sprintf("host %s does not provide a %s service", e.hostname, e.service)
}

// ErrVersionNotSupported is returned when the host provides the service,
// but not in the requested version.
type ErrVersionNotSupported struct {
	hostname string
	service  string
	version  uint64
}

func (e *ErrVersionNotSupported) Error() string {
	if e.hostname == "" {
		return fmt.Sprintf("host does not support %s version %d", e.service, e.version)
	}
	return fmt.Sprintf("host %s does not support %s version %d", e.hostname, e.service, e.version)
}

// ServiceIDs returns the identifiers of all services the host publishes, in
// lexical order.
func (h *Host) ServiceIDs() []string {
	if h == nil {
		return nil
	}
	ids := make([]string, 0, len(h.services))
	for id := range h.services {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ServiceTemplate returns the compiled URL template for the given service
// identifier, which should be of the form "servicename.vN".
func (h *Host) ServiceTemplate(id string) (*ostemplate.Template, error) {
	svcName, ver, err := parseServiceID(id)
	if err != nil {
		return nil, err
	}

	if h == nil || h.services == nil {
		return nil, &ErrServiceNotProvided{service: svcName}
	}

	raw, ok := h.services[id]
	if !ok {
		for serviceID := range h.services {
			if strings.HasPrefix(serviceID, svcName+".") {
				return nil, &ErrVersionNotSupported{
					hostname: h.hostname,
					service:  svcName,
					version:  ver,
				}
			}
		}
		return nil, &ErrServiceNotProvided{hostname: h.hostname, service: svcName}
	}

	text, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("service %s must be declared with a URL template string in the discovery document", id)
	}
	tmpl, err := ostemplate.Compile(h.absTemplate(text))
	if err != nil {
		return nil, fmt.Errorf("invalid URL template for service %s: %w", id, err)
	}
	return tmpl, nil
}

// ServiceURL renders the template of the given service with params.
//
// A non-nil result is always an absolute URL with a scheme of either HTTPS
// or HTTP and no embedded credentials.
func (h *Host) ServiceURL(id string, params ostemplate.Params) (*url.URL, error) {
	tmpl, err := h.ServiceTemplate(id)
	if err != nil {
		return nil, err
	}
	u, err := tmpl.RenderURL(params)
	if err != nil {
		return nil, fmt.Errorf("failed to render URL for service %s: %w", id, err)
	}

	if u.Scheme != "https" && u.Scheme != "http" {
		return nil, fmt.Errorf("unsupported scheme %s", u.Scheme)
	}
	if u.User != nil {
		return nil, fmt.Errorf("embedded username/password information is not permitted")
	}

	// Fragment part is irrelevant, since we're not a browser.
	u.Fragment = ""
	u.RawFragment = ""

	return u, nil
}

// absTemplate makes a root-relative template absolute, using the scheme and
// authority of the discovery document.
func (h *Host) absTemplate(text string) string {
	if !strings.HasPrefix(text, "/") || strings.HasPrefix(text, "//") || h.discoURL == nil {
		return text
	}
	return h.discoURL.Scheme + "://" + h.discoURL.Host + text
}

func parseServiceID(id string) (string, uint64, error) {
	name, ver, ok := strings.Cut(id, ".")
	if !ok || name == "" {
		return "", 0, fmt.Errorf("invalid service ID format (i.e. service.vN): %s", id)
	}
	if !strings.HasPrefix(ver, "v") || strings.ContainsAny(ver, ".-+") {
		return "", 0, fmt.Errorf("invalid service version: must be \"v\" followed by an integer major version number")
	}
	v, err := version.NewVersion(ver)
	if err != nil {
		return "", 0, fmt.Errorf("invalid service version: %w", err)
	}
	return name, uint64(v.Segments64()[0]), nil
}
