// Package script loads request scripts for the CLI.
//
// A script is a YAML (or JSON, which is valid YAML) document:
//
//	requests:
//	  - "@type": getOption
//	    name: version
//	  - "@type": setTdlibParameters
//	    database_directory: ./tdlib-db
//	    use_message_database: true
package script

import (
	"context"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/tdlib-go/tdjson-go/pkg/tdjson"
)

// Script is the on-disk format.
type Script struct {
	Requests []map[string]any `yaml:"requests"`
}

// Loader reads scripts from a filesystem.
type Loader struct {
	fs fs.FS
}

// NewLoader returns a Loader reading from fsys.
func NewLoader(fsys fs.FS) *Loader {
	return &Loader{fs: fsys}
}

// Load reads the script at path and returns its requests in order.
func (l *Loader) Load(ctx context.Context, path string) ([]tdjson.Object, error) {
	data, err := fs.ReadFile(l.fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return Parse(data)
}

// Parse decodes a script document.
func Parse(data []byte) ([]tdjson.Object, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	reqs := make([]tdjson.Object, 0, len(s.Requests))
	for i, r := range s.Requests {
		obj, err := normalize(r)
		if err != nil {
			return nil, fmt.Errorf("request %d: %w", i, err)
		}
		req := obj.(map[string]any)
		if t, _ := req["@type"].(string); t == "" {
			return nil, fmt.Errorf("request %d: @type is required", i)
		}
		reqs = append(reqs, tdjson.Object(req))
	}
	return reqs, nil
}

// ParseRequest decodes a single inline request, given as JSON or YAML.
func ParseRequest(text string) (tdjson.Object, error) {
	var r map[string]any
	if err := yaml.Unmarshal([]byte(text), &r); err != nil {
		return nil, fmt.Errorf("parsing request: %w", err)
	}
	obj, err := normalize(r)
	if err != nil {
		return nil, err
	}
	req, _ := obj.(map[string]any)
	if t, _ := req["@type"].(string); t == "" {
		return nil, fmt.Errorf("@type is required")
	}
	return tdjson.Object(req), nil
}

// normalize turns YAML-decoded values into JSON-encodable ones. yaml.v3
// produces map[string]any for string keys, but nested maps with non-string
// keys decode as map[any]any.
func normalize(v any) (any, error) {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			n, err := normalize(val)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			key, ok := k.(string)
			if !ok {
				key = fmt.Sprint(k)
			}
			n, err := normalize(val)
			if err != nil {
				return nil, err
			}
			out[key] = n
		}
		return out, nil
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			n, err := normalize(val)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	}
	return v, nil
}
