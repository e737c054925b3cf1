// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"fmt"

	"braces.dev/errtrace"
	"github.com/spf13/cobra"

	"github.com/opentofu/ostemplate"
	"github.com/opentofu/ostemplate/disco"
	"github.com/opentofu/ostemplate/svchost"
)

func (a *app) newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check TEMPLATE",
		Short: "Compile a template and list its parameters",
		Long: `Compile a template and print one line per template parameter, giving the
URL component it appears in and its name. Optional parameters end in "?".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, err := ostemplate.Compile(args[0])
			if err != nil {
				return errtrace.Wrap(err)
			}
			placeholders := tmpl.Placeholders()
			a.logger.Debug("compiled template", "template", tmpl.String(), "parameters", len(placeholders))

			out := cmd.OutOrStdout()
			for _, p := range placeholders {
				name := p.Name
				if p.Optional {
					name += "?"
				}
				fmt.Fprintf(out, "%s\t%s\n", p.Component, name)
			}
			return nil
		},
	}
}

func (a *app) newRenderCommand() *cobra.Command {
	var pf paramFlags
	cmd := &cobra.Command{
		Use:   "render TEMPLATE",
		Short: "Render a template with the given parameters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, err := ostemplate.Compile(args[0])
			if err != nil {
				return errtrace.Wrap(err)
			}
			params, err := pf.params(cmd.InOrStdin())
			if err != nil {
				return err
			}
			a.logger.Debug("rendering template", "template", tmpl.String(), "parameters", len(params))

			s, err := tmpl.Render(params)
			if err != nil {
				return errtrace.Wrap(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		},
	}
	pf.addFlags(cmd.Flags())
	return cmd
}

func (a *app) newDiscoverCommand() *cobra.Command {
	var (
		pf    paramFlags
		token string
	)
	cmd := &cobra.Command{
		Use:   "discover HOSTNAME [SERVICE]",
		Short: "Look up the templates a host publishes",
		Long: `Fetch the discovery document of a host. Without SERVICE, print the
identifiers of the services it publishes. With SERVICE, given as "name.vN",
render that service's template with the given parameters.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			hostname, err := svchost.ForComparison(args[0])
			if err != nil {
				return errtrace.Wrap(err)
			}

			var opts []disco.DiscoOption
			if a.httpClient != nil {
				opts = append(opts, disco.WithHTTPClient(a.httpClient))
			}
			if token != "" {
				opts = append(opts, disco.WithCredentials(disco.StaticCredentials{
					hostname: disco.BearerToken(token),
				}))
			}
			d := disco.New(opts...)

			ctx := disco.ContextWithDiscoTrace(cmd.Context(), a.discoTrace())
			host, err := d.Discover(ctx, hostname)
			if err != nil {
				return errtrace.Wrap(err)
			}

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				for _, id := range host.ServiceIDs() {
					fmt.Fprintln(out, id)
				}
				return nil
			}

			params, err := pf.params(cmd.InOrStdin())
			if err != nil {
				return err
			}
			u, err := host.ServiceURL(args[1], params)
			if err != nil {
				return errtrace.Wrap(err)
			}
			fmt.Fprintln(out, u)
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "Bearer token to send with the discovery request")
	pf.addFlags(cmd.Flags())
	return cmd
}

func (a *app) discoTrace() *disco.DiscoTrace {
	return &disco.DiscoTrace{
		DiscoveryStart: func(ctx context.Context, host svchost.Hostname) context.Context {
			a.logger.Debug("discovering services", "host", host.ForDisplay())
			return ctx
		},
		DiscoverySuccess: func(ctx context.Context, host svchost.Hostname) {
			a.logger.Debug("discovery succeeded", "host", host.ForDisplay())
		},
		DiscoveryFailure: func(ctx context.Context, host svchost.Hostname, err error) {
			a.logger.Warn("discovery failed", "host", host.ForDisplay(), "error", err)
		},
	}
}
