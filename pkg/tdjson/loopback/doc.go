// Package loopback provides an in-process implementation of tdjson.Native
// that echoes every sent request back as a response. It lets code built on
// tdjson.Client run in tests and in cgo-free builds without the native
// library.
package loopback
