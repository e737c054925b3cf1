// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package ostemplate

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Params is the set of values substituted into a template by
// [Template.Render], keyed by template parameter name.
//
// Values may be strings or any Go integer type. A nil value is the same as
// an absent one.
type Params map[string]any

func (p Params) lookup(name string) (any, bool) {
	v, ok := p[name]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// textValue returns the text form of a parameter value, if it has one.
func textValue(v any) (string, bool) {
	if s, ok := v.(string); ok {
		return s, true
	}
	return integerValue(v)
}

// integerValue returns the decimal form of v if v has a Go integer type.
func integerValue(v any) (string, bool) {
	switch v := v.(type) {
	case int:
		return strconv.Itoa(v), true
	case int8:
		return strconv.FormatInt(int64(v), 10), true
	case int16:
		return strconv.FormatInt(int64(v), 10), true
	case int32:
		return strconv.FormatInt(int64(v), 10), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uint:
		return strconv.FormatUint(uint64(v), 10), true
	case uint8:
		return strconv.FormatUint(uint64(v), 10), true
	case uint16:
		return strconv.FormatUint(uint64(v), 10), true
	case uint32:
		return strconv.FormatUint(uint64(v), 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	default:
		return "", false
	}
}

// ParamsFromCty converts an object or map value into a [Params].
//
// String attributes become strings and whole numbers become int64 values.
// Null attributes are omitted, so they count as absent when rendering.
// Sensitivity marks are discarded; the caller decides whether a rendered
// URL may be shown.
func ParamsFromCty(v cty.Value) (Params, error) {
	v, _ = v.UnmarkDeep()
	if v.IsNull() {
		return Params{}, nil
	}
	if !v.IsWhollyKnown() {
		return nil, errors.New("template parameters must all be known")
	}
	ty := v.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return nil, fmt.Errorf("template parameters must be an object or a map, not %s", ty.FriendlyName())
	}

	ret := make(Params)
	for it := v.ElementIterator(); it.Next(); {
		k, ev := it.Element()
		name := k.AsString()
		if ev.IsNull() {
			continue
		}
		switch ev.Type() {
		case cty.String:
			ret[name] = ev.AsString()
		case cty.Number:
			var n int64
			if err := gocty.FromCtyValue(ev, &n); err != nil {
				return nil, fmt.Errorf("template parameter %q: %w", name, err)
			}
			ret[name] = n
		default:
			return nil, fmt.Errorf("template parameter %q must be a string or a whole number, not %s", name, ev.Type().FriendlyName())
		}
	}
	return ret, nil
}
