package tdjson

import (
	"errors"
	"fmt"

	"github.com/tdlib-go/tdjson-go/internal/bindings"
)

var (
	// ErrUnsupportedPlatform is returned by Open when no default library file
	// name is known for the running OS and Config.LibraryPath is empty.
	ErrUnsupportedPlatform = errors.New("tdjson: unsupported platform, set Config.LibraryPath")

	// ErrLibraryLoad matches every *LoadError.
	ErrLibraryLoad = errors.New("tdjson: cannot load library")

	// ErrEncoding reports a request value that cannot be serialized to JSON.
	// The client stays usable.
	ErrEncoding = errors.New("tdjson: cannot encode request")

	// ErrDecoding reports native output that is not a JSON object. This
	// indicates a broken native library; the client stays usable but further
	// output should be treated as suspect.
	ErrDecoding = errors.New("tdjson: cannot decode response")

	// ErrClientClosed is returned by every operation on a closed client.
	ErrClientClosed = errors.New("tdjson: client closed")

	// ErrInvalidTimeout is returned by Receive for negative timeouts.
	ErrInvalidTimeout = errors.New("tdjson: invalid timeout")

	// ErrCGONotEnabled signals that this binary cannot load native code.
	ErrCGONotEnabled = bindings.ErrCGONotEnabled
)

// LoadError describes a failure to load or link the native library.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("tdjson: load library: %v", e.Err)
	}
	return fmt.Sprintf("tdjson: load library %q: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrLibraryLoad) hold for any LoadError.
func (e *LoadError) Is(target error) bool { return target == ErrLibraryLoad }

// TDError is a TDLib "error" object returned in place of a response.
type TDError struct {
	Code    int
	Message string
}

func (e *TDError) Error() string {
	return fmt.Sprintf("tdlib: error %d: %s", e.Code, e.Message)
}

// remapError converts bindings errors into public API errors.
func remapError(path string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, bindings.ErrOpen),
		errors.Is(err, bindings.ErrSymbol),
		errors.Is(err, bindings.ErrCGONotEnabled):
		return &LoadError{Path: path, Err: err}
	case errors.Is(err, bindings.ErrCreateClient):
		return fmt.Errorf("tdjson: create client: %w", err)
	}
	return err
}
