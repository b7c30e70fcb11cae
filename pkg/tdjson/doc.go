// Package tdjson binds the TDLib JSON client library (tdjson) to Go.
//
// A Client owns one native client handle. Requests are JSON-serializable
// values (usually Object); responses and updates come back as Object:
//
//	client, err := tdjson.Open(tdjson.Config{LogLevel: 1})
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	if err := client.Send(tdjson.Object{"@type": "getAuthorizationState"}); err != nil {
//	    return err
//	}
//	for {
//	    update, err := client.Receive(time.Second)
//	    if err != nil {
//	        return err
//	    }
//	    if update == nil {
//	        continue // nothing within the timeout
//	    }
//	    fmt.Println(update.Type())
//	}
//
// Without an explicit Config.LibraryPath the library is looked up as
// libtdjson.dylib, tdjson.dll or libtdjson.so depending on the OS.
//
// # Threading
//
// The Client does no locking. Receive blocks the calling goroutine (and its
// OS thread) for up to the given timeout. Callers sharing a Client between
// goroutines must synchronize access themselves.
//
// # Builds
//
// Loading native code requires cgo on Unix; on Windows/amd64 the DLL is
// loaded through golang.org/x/sys/windows. In other builds Open fails with an
// error matching both ErrLibraryLoad and ErrCGONotEnabled, while OpenNative
// keeps working with a Go implementation of Native such as package loopback.
package tdjson
