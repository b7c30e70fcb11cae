// Package bindings contains all native bindings to the tdjson library.
//
// # Design Principles
//
// 1. Isolation: ALL cgo code lives in this package. No other package should
//    import "C".
//
// 2. Minimal Surface: only the td_json_client_* functions and
//    td_set_log_verbosity_level are bound.
//
// 3. Runtime Loading: the library is opened with dlopen (LoadDLL on Windows)
//    from a path chosen at run time, so the module builds without TDLib
//    headers or import libraries.
//
// 4. Memory Management: request text is copied into C memory for the
//    duration of one call and zeroed before it is freed. Response text is
//    owned by TDLib and copied out immediately.
//
// # Threading
//
// No locking happens here. td_json_client_receive must not be called
// concurrently for the same client; callers serialize access.
package bindings
