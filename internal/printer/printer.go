// Package printer writes received TDLib objects to the CLI output.
package printer

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/tdlib-go/tdjson-go/pkg/tdjson"
)

const (
	// FormatJSON writes one JSON object per line.
	FormatJSON = "json"
	// FormatMsgpack writes each object as a 4-byte big-endian length followed
	// by its msgpack encoding.
	FormatMsgpack = "msgpack"
)

// Printer writes objects to an output stream.
type Printer interface {
	Print(obj tdjson.Object) error
}

// New returns the printer for format.
func New(format string, w io.Writer) (Printer, error) {
	switch format {
	case FormatJSON, "":
		return NewJSON(w), nil
	case FormatMsgpack:
		return NewMsgpack(w), nil
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}

type jsonPrinter struct {
	enc *json.Encoder
}

// NewJSON returns a JSON lines printer.
func NewJSON(w io.Writer) Printer {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return jsonPrinter{enc: enc}
}

func (p jsonPrinter) Print(obj tdjson.Object) error {
	if err := p.enc.Encode(obj); err != nil {
		return fmt.Errorf("could not encode object: %w", err)
	}
	return nil
}

type msgpackPrinter struct {
	w io.Writer
}

// NewMsgpack returns a length-prefixed msgpack printer.
func NewMsgpack(w io.Writer) Printer {
	return msgpackPrinter{w: w}
}

func (p msgpackPrinter) Print(obj tdjson.Object) error {
	data, err := msgpack.Marshal(plain(map[string]any(obj)))
	if err != nil {
		return fmt.Errorf("could not encode object: %w", err)
	}

	var size [4]byte
	binary.BigEndian.PutUint32(size[:], uint32(len(data)))
	if _, err := p.w.Write(size[:]); err != nil {
		return err
	}
	_, err = p.w.Write(data)
	return err
}

// ReadMsgpack reads one object written by the msgpack printer.
func ReadMsgpack(r io.Reader) (map[string]any, error) {
	var size [4]byte
	if _, err := io.ReadFull(r, size[:]); err != nil {
		return nil, err
	}
	data := make([]byte, binary.BigEndian.Uint32(size[:]))
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}

	var out map[string]any
	if err := msgpack.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("could not decode object: %w", err)
	}
	return out, nil
}

// plain replaces json.Number values with int64 or float64 so msgpack writes
// them as numbers rather than strings.
func plain(v any) any {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case tdjson.Object:
		return plain(map[string]any(x))
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = plain(val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = plain(val)
		}
		return out
	}
	return v
}
