package tdjson

import "runtime"

// ZeroizeBytes overwrites buf with zeros. The client uses it on encoded
// requests and raw responses once they are no longer needed, since they may
// hold login codes or passwords.
func ZeroizeBytes(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
	// Prevent dead store elimination per golang/go#33325
	runtime.KeepAlive(buf)
}
