// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

// Command ostemplate compiles and renders OpenSearch URL templates, and
// looks up the templates that a host publishes.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"braces.dev/errtrace"
	"github.com/phsym/console-slog"
	"github.com/spf13/cobra"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// app holds the state shared by all subcommands.
type app struct {
	verbose bool
	logger  *slog.Logger

	// httpClient overrides the discovery client when non-nil.
	httpClient *http.Client
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{logger: slog.New(slog.DiscardHandler)}
	return a.run(args, stdin, stdout, stderr)
}

func (a *app) run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := a.newRootCommand()
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.Execute(); err != nil {
		if a.verbose {
			fmt.Fprintf(stderr, "Error: %s\n", errtrace.FormatString(err))
		} else {
			fmt.Fprintf(stderr, "Error: %s\n", err)
		}
		return 1
	}
	return 0
}

func (a *app) newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ostemplate",
		Short: "Compile and render OpenSearch URL templates",
		Long: `ostemplate compiles OpenSearch URL templates such as

  https://{region}.example.com/search?q={searchTerms}&page={startPage?}

and renders them with parameter values, encoding each value for the part
of the URL it appears in.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.logger = newLogger(cmd.ErrOrStderr(), a.verbose)
		},
	}
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging and error traces")

	cmd.AddCommand(a.newCheckCommand())
	cmd.AddCommand(a.newRenderCommand())
	cmd.AddCommand(a.newDiscoverCommand())

	return cmd
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(console.NewHandler(w, &console.HandlerOptions{
		Level:      level,
		TimeFormat: time.RFC3339Nano,
	}))
}
