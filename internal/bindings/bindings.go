//go:build cgo && !windows

package bindings

/*
#cgo linux LDFLAGS: -ldl
#include <dlfcn.h>
#include <stdio.h>
#include <stdlib.h>
#include <string.h>

typedef void *(*tdjson_create_fn)(void);
typedef void (*tdjson_send_fn)(void *, const char *);
typedef const char *(*tdjson_receive_fn)(void *, double);
typedef const char *(*tdjson_execute_fn)(void *, const char *);
typedef void (*tdjson_destroy_fn)(void *);
typedef void (*tdjson_log_fn)(int);

typedef struct {
	void *dl;
	tdjson_create_fn create;
	tdjson_send_fn send;
	tdjson_receive_fn receive;
	tdjson_execute_fn execute;
	tdjson_destroy_fn destroy;
	tdjson_log_fn set_log_verbosity_level;
} tdjson_lib;

// dlerror state is per thread, so it is read in the same call as dlopen.
static void *tdjson_dlopen(const char *path, char *errbuf, size_t n) {
	void *dl = dlopen(path, RTLD_NOW | RTLD_LOCAL);
	if (dl == NULL) {
		const char *msg = dlerror();
		snprintf(errbuf, n, "%s", msg != NULL ? msg : "unknown error");
	}
	return dl;
}

static void *tdjson_create(tdjson_lib *l) { return l->create(); }
static void tdjson_send(tdjson_lib *l, void *c, const char *r) { l->send(c, r); }
static const char *tdjson_receive(tdjson_lib *l, void *c, double t) { return l->receive(c, t); }
static const char *tdjson_execute(tdjson_lib *l, void *c, const char *r) { return l->execute(c, r); }
static void tdjson_destroy(tdjson_lib *l, void *c) { l->destroy(c); }

static int tdjson_set_log(tdjson_lib *l, int level) {
	if (l->set_log_verbosity_level == NULL) {
		return 0;
	}
	l->set_log_verbosity_level(level);
	return 1;
}
*/
import "C"

import (
	"fmt"
	"sync"
	"unsafe"
)

// Library is a loaded tdjson shared object. Libraries are cached per path and
// stay mapped for the lifetime of the process: TDLib keeps worker threads alive
// past td_json_client_destroy, so unmapping the code is never safe.
type Library struct {
	path string
	c    *C.tdjson_lib
}

var (
	mu     sync.Mutex
	loaded = map[string]*Library{}
)

// Load opens the shared library at path and resolves the tdjson entry points.
func Load(path string) (*Library, error) {
	mu.Lock()
	defer mu.Unlock()

	if lib, ok := loaded[path]; ok {
		return lib, nil
	}

	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))

	var errbuf [256]C.char
	dl := C.tdjson_dlopen(cPath, &errbuf[0], C.size_t(len(errbuf)))
	if dl == nil {
		return nil, fmt.Errorf("%w %q: %s", ErrOpen, path, C.GoString(&errbuf[0]))
	}

	c := (*C.tdjson_lib)(C.calloc(1, C.sizeof_tdjson_lib))
	if c == nil {
		C.dlclose(dl)
		return nil, fmt.Errorf("%w %q: out of memory", ErrOpen, path)
	}
	c.dl = dl

	for _, name := range []string{symCreate, symSend, symReceive, symExecute, symDestroy} {
		p := lookup(dl, name)
		if p == nil {
			C.dlclose(dl)
			C.free(unsafe.Pointer(c))
			return nil, fmt.Errorf("%w %s in %q", ErrSymbol, name, path)
		}
		switch name {
		case symCreate:
			c.create = C.tdjson_create_fn(p)
		case symSend:
			c.send = C.tdjson_send_fn(p)
		case symReceive:
			c.receive = C.tdjson_receive_fn(p)
		case symExecute:
			c.execute = C.tdjson_execute_fn(p)
		case symDestroy:
			c.destroy = C.tdjson_destroy_fn(p)
		}
	}
	// Removed from the C API in TDLib 1.8; callers fall back to a request.
	if p := lookup(dl, symLogLvl); p != nil {
		c.set_log_verbosity_level = C.tdjson_log_fn(p)
	}

	lib := &Library{path: path, c: c}
	loaded[path] = lib
	return lib, nil
}

func lookup(dl unsafe.Pointer, name string) unsafe.Pointer {
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))
	return C.dlsym(dl, cName)
}

// Path returns the path the library was loaded from.
func (l *Library) Path() string { return l.path }

// CreateClient creates a new native client instance.
func (l *Library) CreateClient() (Handle, error) {
	p := C.tdjson_create(l.c)
	if p == nil {
		return 0, ErrCreateClient
	}
	return Handle(uintptr(p)), nil
}

// Send queues a JSON request. The request is copied into C memory, and both
// copies are zeroed once the native side has parsed it.
func (l *Library) Send(h Handle, request []byte) {
	buf := withNUL(request)
	cReq := C.CBytes(buf)
	zero(buf)
	defer freeZeroed(cReq, len(buf))

	C.tdjson_send(l.c, unsafe.Pointer(uintptr(h)), (*C.char)(cReq))
}

// Receive waits up to timeout seconds for an update or response. The second
// result is false when nothing arrived.
func (l *Library) Receive(h Handle, timeout float64) ([]byte, bool) {
	res := C.tdjson_receive(l.c, unsafe.Pointer(uintptr(h)), C.double(timeout))
	return goText(res)
}

// Execute runs a request synchronously. The second result is false when the
// library refused to execute the request.
func (l *Library) Execute(h Handle, request []byte) ([]byte, bool) {
	buf := withNUL(request)
	cReq := C.CBytes(buf)
	zero(buf)
	defer freeZeroed(cReq, len(buf))

	res := C.tdjson_execute(l.c, unsafe.Pointer(uintptr(h)), (*C.char)(cReq))
	return goText(res)
}

// Destroy destroys the native client instance. h must not be used afterwards.
func (l *Library) Destroy(h Handle) {
	if h == 0 {
		return
	}
	C.tdjson_destroy(l.c, unsafe.Pointer(uintptr(h)))
}

// SetLogVerbosityLevel sets the process-wide native log level. It reports
// false when the library does not export td_set_log_verbosity_level.
func (l *Library) SetLogVerbosityLevel(level int) bool {
	return C.tdjson_set_log(l.c, C.int(level)) != 0
}

// goText copies a NUL-terminated string owned by the library. The native
// buffer is only valid until the next call on the same thread.
func goText(p *C.char) ([]byte, bool) {
	if p == nil {
		return nil, false
	}
	return C.GoBytes(unsafe.Pointer(p), C.int(C.strlen(p))), true
}

func freeZeroed(p unsafe.Pointer, n int) {
	C.memset(p, 0, C.size_t(n))
	C.free(p)
}
