// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"io"
	"strconv"
	"strings"

	"braces.dev/errtrace"
	"github.com/spf13/pflag"
	ctyjson "github.com/zclconf/go-cty/cty/json"

	"github.com/opentofu/ostemplate"
)

// paramFlags collects template parameters from the command line. Later
// flags override earlier ones; --param and --int override --params-json.
type paramFlags struct {
	strs []string
	ints []string
	json string
}

func (f *paramFlags) addFlags(fs *pflag.FlagSet) {
	fs.StringArrayVarP(&f.strs, "param", "p", nil, "Set a string parameter as `name=value` (repeatable)")
	fs.StringArrayVar(&f.ints, "int", nil, "Set an integer parameter as `name=123` (repeatable)")
	fs.StringVar(&f.json, "params-json", "", "Read parameters from a JSON object, or from standard input if \"-\"")
}

func (f *paramFlags) params(stdin io.Reader) (ostemplate.Params, error) {
	params := ostemplate.Params{}

	if f.json != "" {
		src := []byte(f.json)
		if f.json == "-" {
			var err error
			if src, err = io.ReadAll(stdin); err != nil {
				return nil, errtrace.Errorf("reading parameters from standard input: %w", err)
			}
		}
		ty, err := ctyjson.ImpliedType(src)
		if err != nil {
			return nil, errtrace.Errorf("invalid --params-json: %w", err)
		}
		v, err := ctyjson.Unmarshal(src, ty)
		if err != nil {
			return nil, errtrace.Errorf("invalid --params-json: %w", err)
		}
		if params, err = ostemplate.ParamsFromCty(v); err != nil {
			return nil, errtrace.Wrap(err)
		}
	}

	for _, kv := range f.strs {
		name, value, err := splitParam("--param", kv)
		if err != nil {
			return nil, err
		}
		params[name] = value
	}
	for _, kv := range f.ints {
		name, value, err := splitParam("--int", kv)
		if err != nil {
			return nil, err
		}
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, errtrace.Errorf("invalid --int value for %q: %w", name, err)
		}
		params[name] = n
	}

	return params, nil
}

func splitParam(flag, kv string) (string, string, error) {
	name, value, ok := strings.Cut(kv, "=")
	if !ok || name == "" {
		return "", "", errtrace.Errorf("invalid %s %q: must be name=value", flag, kv)
	}
	return name, value, nil
}
