package tdjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Object is a decoded TDLib JSON object. Numbers are kept as json.Number so
// 64-bit identifiers survive the round trip.
type Object map[string]any

// Type returns the "@type" field, or "" when it is missing.
func (o Object) Type() string {
	s, _ := o["@type"].(string)
	return s
}

// Extra returns the "@extra" field echoed back by TDLib.
func (o Object) Extra() (any, bool) {
	v, ok := o["@extra"]
	return v, ok
}

// Err returns a *TDError when o is a TDLib "error" object, nil otherwise.
func (o Object) Err() error {
	if o.Type() != "error" {
		return nil
	}
	e := &TDError{}
	switch code := o["code"].(type) {
	case json.Number:
		n, _ := code.Int64()
		e.Code = int(n)
	case float64:
		e.Code = int(code)
	case int:
		e.Code = code
	}
	e.Message, _ = o["message"].(string)
	return e
}

func encodeRequest(request any) ([]byte, error) {
	data, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	return data, nil
}

func decodeObject(data []byte) (Object, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var o Object
	if err := dec.Decode(&o); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecoding, err)
	}
	if o == nil {
		return nil, fmt.Errorf("%w: not a JSON object", ErrDecoding)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after object", ErrDecoding)
	}
	return o, nil
}

// requestType names a request for logging without touching its payload.
func requestType(request any) string {
	switch r := request.(type) {
	case Object:
		return r.Type()
	case map[string]any:
		return Object(r).Type()
	case json.RawMessage:
		return rawType(r)
	}
	return fmt.Sprintf("%T", request)
}

func rawType(data []byte) string {
	var head struct {
		Type string `json:"@type"`
	}
	if json.Unmarshal(data, &head) != nil {
		return ""
	}
	return head.Type
}

// extraKey normalizes an "@extra" value so a request value and its decoded
// echo compare equal.
func extraKey(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}
