//go:build windows && amd64

package bindings

import (
	"fmt"
	"math"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Library is a loaded tdjson DLL. Libraries are cached per path and never
// released for the same reason as on Unix: TDLib threads outlive the clients.
type Library struct {
	path string
	dll  *windows.DLL

	create  *windows.Proc
	send    *windows.Proc
	receive *windows.Proc
	execute *windows.Proc
	destroy *windows.Proc
	logLvl  *windows.Proc
}

var (
	mu     sync.Mutex
	loaded = map[string]*Library{}
)

// Load opens the DLL at path and resolves the tdjson entry points.
func Load(path string) (*Library, error) {
	mu.Lock()
	defer mu.Unlock()

	if lib, ok := loaded[path]; ok {
		return lib, nil
	}

	dll, err := windows.LoadDLL(path)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrOpen, path, err)
	}

	lib := &Library{path: path, dll: dll}
	required := []struct {
		name string
		dst  **windows.Proc
	}{
		{symCreate, &lib.create},
		{symSend, &lib.send},
		{symReceive, &lib.receive},
		{symExecute, &lib.execute},
		{symDestroy, &lib.destroy},
	}
	for _, r := range required {
		p, err := dll.FindProc(r.name)
		if err != nil {
			_ = dll.Release()
			return nil, fmt.Errorf("%w %s in %q", ErrSymbol, r.name, path)
		}
		*r.dst = p
	}
	if p, err := dll.FindProc(symLogLvl); err == nil {
		lib.logLvl = p
	}

	loaded[path] = lib
	return lib, nil
}

// Path returns the path the library was loaded from.
func (l *Library) Path() string { return l.path }

// CreateClient creates a new native client instance.
func (l *Library) CreateClient() (Handle, error) {
	r, _, _ := l.create.Call()
	if r == 0 {
		return 0, ErrCreateClient
	}
	return Handle(r), nil
}

// Send queues a JSON request and zeroes the request buffer afterwards.
func (l *Library) Send(h Handle, request []byte) {
	buf := withNUL(request)
	defer zero(buf)
	l.send.Call(uintptr(h), uintptr(unsafe.Pointer(&buf[0])))
}

// Receive waits up to timeout seconds for an update or response. On amd64
// the Windows calling convention passes the double in XMM1, which the syscall
// trampoline loads from the second integer slot.
func (l *Library) Receive(h Handle, timeout float64) ([]byte, bool) {
	r, _, _ := l.receive.Call(uintptr(h), uintptr(math.Float64bits(timeout)))
	return goText(r)
}

// Execute runs a request synchronously.
func (l *Library) Execute(h Handle, request []byte) ([]byte, bool) {
	buf := withNUL(request)
	defer zero(buf)
	r, _, _ := l.execute.Call(uintptr(h), uintptr(unsafe.Pointer(&buf[0])))
	return goText(r)
}

// Destroy destroys the native client instance.
func (l *Library) Destroy(h Handle) {
	if h == 0 {
		return
	}
	l.destroy.Call(uintptr(h))
}

// SetLogVerbosityLevel sets the process-wide native log level. It reports
// false when the DLL does not export td_set_log_verbosity_level.
func (l *Library) SetLogVerbosityLevel(level int) bool {
	if l.logLvl == nil {
		return false
	}
	l.logLvl.Call(uintptr(level))
	return true
}

func goText(p uintptr) ([]byte, bool) {
	if p == 0 {
		return nil, false
	}
	return []byte(windows.BytePtrToString((*byte)(unsafe.Pointer(p)))), true
}
