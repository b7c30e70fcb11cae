package bindings

import "errors"

// Handle is an opaque identifier for one native client instance, as returned
// by td_json_client_create. The zero value never refers to a live client.
type Handle uintptr

// Symbol names resolved from the native library.
const (
	symCreate  = "td_json_client_create"
	symSend    = "td_json_client_send"
	symReceive = "td_json_client_receive"
	symExecute = "td_json_client_execute"
	symDestroy = "td_json_client_destroy"
	symLogLvl  = "td_set_log_verbosity_level"
)

var (
	// ErrOpen reports that the shared library could not be located or loaded.
	ErrOpen = errors.New("tdjson/internal/bindings: cannot open library")

	// ErrSymbol reports that a required function is missing from the library.
	ErrSymbol = errors.New("tdjson/internal/bindings: missing symbol")

	// ErrCreateClient reports that td_json_client_create returned NULL.
	ErrCreateClient = errors.New("tdjson/internal/bindings: client creation failed")

	// ErrCGONotEnabled signals that the package was compiled without a way to
	// load native code on this platform.
	ErrCGONotEnabled = errors.New("tdjson/internal/bindings: native loading not available (cgo disabled or unsupported platform)")
)

// withNUL returns a copy of data terminated by a zero byte.
func withNUL(data []byte) []byte {
	buf := make([]byte, len(data)+1)
	copy(buf, data)
	return buf
}

func zero(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}
