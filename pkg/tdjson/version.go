package tdjson

import (
	"errors"
	"fmt"
)

// Version is populated at build time via ldflags.
var Version = "v0.0.0-in-progress"

// WrapperVersion returns the version of this module.
func WrapperVersion() string {
	return Version
}

// NativeVersion asks the native library for its version. "getOption" may be
// executed synchronously for the "version" option.
func (c *Client) NativeVersion() (string, error) {
	obj, err := c.Execute(Object{"@type": "getOption", "name": "version"})
	if err != nil {
		return "", err
	}
	if obj == nil {
		return "", errors.New("tdjson: native version unavailable")
	}
	if err := obj.Err(); err != nil {
		return "", err
	}
	v, ok := obj["value"].(string)
	if !ok {
		return "", fmt.Errorf("tdjson: unexpected version response %q", obj.Type())
	}
	return v, nil
}
