//go:build (!cgo && !windows) || (windows && !amd64)

package bindings

// Stub implementation for builds that cannot load native code. The package
// still compiles so that callers can fall back to a pure Go implementation;
// Load always fails with ErrCGONotEnabled.

type Library struct {
	path string
}

func Load(path string) (*Library, error) {
	return nil, ErrCGONotEnabled
}

func (l *Library) Path() string { return l.path }

func (l *Library) CreateClient() (Handle, error) { return 0, ErrCGONotEnabled }

func (l *Library) Send(Handle, []byte) {}

func (l *Library) Receive(Handle, float64) ([]byte, bool) { return nil, false }

func (l *Library) Execute(Handle, []byte) ([]byte, bool) { return nil, false }

func (l *Library) Destroy(Handle) {}

func (l *Library) SetLogVerbosityLevel(int) bool { return false }
