//go:build cgo && !windows

package bindings

import (
	"errors"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// buildFakeLibrary compiles testdata/fake_tdjson.c into a shared library.
func buildFakeLibrary(t *testing.T, withLogAPI bool) string {
	t.Helper()
	cc, err := exec.LookPath("cc")
	if err != nil {
		t.Skip("no C compiler available")
	}

	out := filepath.Join(t.TempDir(), "libtdjson.so")
	args := []string{"-shared", "-fPIC", "-o", out, filepath.Join("testdata", "fake_tdjson.c")}
	if withLogAPI {
		args = append(args, "-DWITH_LOG_API")
	}
	if msg, err := exec.Command(cc, args...).CombinedOutput(); err != nil {
		t.Fatalf("compile fake library: %v\n%s", err, msg)
	}
	return out
}

func TestLoadReportsDlopenError(t *testing.T) {
	for range 50 {
		_, err := Load("/nonexistent/libtdjson.so")
		if !errors.Is(err, ErrOpen) {
			t.Fatalf("expected ErrOpen, got %v", err)
		}
		if strings.Contains(err.Error(), "unknown error") {
			t.Fatalf("dlopen reason lost: %v", err)
		}
	}
}

func TestLoadWithoutTDSymbols(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("libc.so.6 is linux specific")
	}
	_, err := Load("libc.so.6")
	if !errors.Is(err, ErrSymbol) {
		t.Fatalf("expected ErrSymbol, got %v", err)
	}
	if !strings.Contains(err.Error(), symCreate) {
		t.Fatalf("error does not name the missing symbol: %v", err)
	}
}

func TestLoadCachesByPath(t *testing.T) {
	path := buildFakeLibrary(t, false)
	a, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	b, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if a != b {
		t.Fatal("second Load returned a different library")
	}
	if a.Path() != path {
		t.Fatalf("Path = %q", a.Path())
	}
}

func TestNativeRoundTrip(t *testing.T) {
	lib, err := Load(buildFakeLibrary(t, false))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	h, err := lib.CreateClient()
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}

	if text, ok := lib.Receive(h, 0); ok || text != nil {
		t.Fatalf("Receive on empty queue = %q, %v", text, ok)
	}

	req := []byte(`{"@type":"getMe"}`)
	lib.Send(h, req)
	if string(req) != `{"@type":"getMe"}` {
		t.Fatalf("Send modified the caller buffer: %q", req)
	}
	text, ok := lib.Receive(h, 1)
	if !ok || string(text) != `{"@type":"getMe"}` {
		t.Fatalf("Receive = %q, %v", text, ok)
	}

	text, ok = lib.Execute(h, []byte(`{"@type":"getOption","name":"version"}`))
	if !ok || !strings.Contains(string(text), "fake-1.8") {
		t.Fatalf("Execute getOption = %q, %v", text, ok)
	}
	if text, ok := lib.Execute(h, []byte(`{"@type":"getMe"}`)); ok || text != nil {
		t.Fatalf("Execute of an asynchronous request = %q, %v", text, ok)
	}

	lib.Destroy(0)
	if text, _ := lib.Execute(0, []byte(`{"@type":"getDestroyCount"}`)); !strings.Contains(string(text), `"value":0`) {
		t.Fatalf("Destroy(0) reached the library: %s", text)
	}
	lib.Destroy(h)
	if text, _ := lib.Execute(0, []byte(`{"@type":"getDestroyCount"}`)); !strings.Contains(string(text), `"value":1`) {
		t.Fatalf("Destroy did not reach the library: %s", text)
	}
}

func TestSetLogVerbosityLevel(t *testing.T) {
	t.Run("symbol missing", func(t *testing.T) {
		lib, err := Load(buildFakeLibrary(t, false))
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if lib.SetLogVerbosityLevel(3) {
			t.Fatal("SetLogVerbosityLevel reported success without the symbol")
		}
	})

	t.Run("symbol exported", func(t *testing.T) {
		lib, err := Load(buildFakeLibrary(t, true))
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if !lib.SetLogVerbosityLevel(5) {
			t.Fatal("SetLogVerbosityLevel reported failure")
		}
		text, _ := lib.Execute(0, []byte(`{"@type":"getLogVerbosityLevel"}`))
		if !strings.Contains(string(text), `"verbosity_level":5,"legacy_calls":1`) {
			t.Fatalf("unexpected level report %s", text)
		}
	})
}
