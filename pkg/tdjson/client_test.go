package tdjson_test

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/tdlib-go/tdjson-go/pkg/tdjson"
	"github.com/tdlib-go/tdjson-go/pkg/tdjson/logging"
	"github.com/tdlib-go/tdjson-go/pkg/tdjson/loopback"
)

// A fresh loopback library hands out handle 1 to its first client.
const firstHandle = tdjson.Handle(1)

func openLoopback(t *testing.T, cfg tdjson.Config) (*tdjson.Client, *loopback.Library) {
	t.Helper()
	lib := loopback.New()
	if cfg.Logger == nil {
		cfg.Logger = logging.Noop
	}
	client, err := tdjson.OpenNative(lib, cfg)
	if err != nil {
		t.Fatalf("OpenNative failed: %v", err)
	}
	return client, lib
}

func TestCloseDestroysHandleOnce(t *testing.T) {
	client, lib := openLoopback(t, tdjson.Config{})

	if err := client.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := client.Close(); !errors.Is(err, tdjson.ErrClientClosed) {
		t.Fatalf("second Close = %v, want ErrClientClosed", err)
	}
	if got := lib.DestroyCount(firstHandle); got != 1 {
		t.Fatalf("handle destroyed %d times, want 1", got)
	}
}

func TestOperationsAfterCloseFail(t *testing.T) {
	client, _ := openLoopback(t, tdjson.Config{})
	if err := client.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if err := client.Send(tdjson.Object{"@type": "getMe"}); !errors.Is(err, tdjson.ErrClientClosed) {
		t.Errorf("Send after Close = %v", err)
	}
	if _, err := client.Receive(0); !errors.Is(err, tdjson.ErrClientClosed) {
		t.Errorf("Receive after Close = %v", err)
	}
	if _, err := client.Execute(tdjson.Object{"@type": "getOption"}); !errors.Is(err, tdjson.ErrClientClosed) {
		t.Errorf("Execute after Close = %v", err)
	}
	if _, err := client.Do(context.Background(), tdjson.Object{"@type": "getMe"}); !errors.Is(err, tdjson.ErrClientClosed) {
		t.Errorf("Do after Close = %v", err)
	}
}

func TestReceiveIdleReturnsAbsent(t *testing.T) {
	client, _ := openLoopback(t, tdjson.Config{})
	defer client.Close()

	obj, err := client.Receive(0)
	if err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	if obj != nil {
		t.Fatalf("Receive on idle client = %v, want nil", obj)
	}
}

func TestReceiveNegativeTimeout(t *testing.T) {
	client, _ := openLoopback(t, tdjson.Config{})
	defer client.Close()

	if _, err := client.Receive(-time.Second); !errors.Is(err, tdjson.ErrInvalidTimeout) {
		t.Fatalf("Receive(-1s) = %v, want ErrInvalidTimeout", err)
	}
}

func TestSendReceiveRoundTrip(t *testing.T) {
	client, _ := openLoopback(t, tdjson.Config{})
	defer client.Close()

	values := []tdjson.Object{
		{"@type": "getMe"},
		{
			"@type":   "sendMessage",
			"chat_id": json.Number("-1001234567890123"),
			"big":     json.Number("9007199254740993"),
			"ratio":   json.Number("1.5"),
			"flags":   []any{true, false, nil},
			"content": map[string]any{
				"@type": "inputMessageText",
				"text":  map[string]any{"text": "привет, 世界 \"quoted\"\n"},
			},
		},
		{},
	}

	for _, v := range values {
		if err := client.Send(v); err != nil {
			t.Fatalf("Send(%v) failed: %v", v, err)
		}
		got, err := client.Receive(time.Second)
		if err != nil {
			t.Fatalf("Receive failed: %v", err)
		}
		if !reflect.DeepEqual(got, v) {
			t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", got, v)
		}
	}
}

func TestSendEncodingErrorKeepsClientUsable(t *testing.T) {
	client, _ := openLoopback(t, tdjson.Config{})
	defer client.Close()

	cyclic := map[string]any{"@type": "cyclic"}
	cyclic["self"] = cyclic

	for name, req := range map[string]any{
		"cycle":   cyclic,
		"channel": tdjson.Object{"ch": make(chan int)},
		"func":    tdjson.Object{"fn": func() {}},
	} {
		if err := client.Send(req); !errors.Is(err, tdjson.ErrEncoding) {
			t.Errorf("%s: Send = %v, want ErrEncoding", name, err)
		}
		if _, err := client.Execute(req); !errors.Is(err, tdjson.ErrEncoding) {
			t.Errorf("%s: Execute = %v, want ErrEncoding", name, err)
		}
	}

	if err := client.Send(tdjson.Object{"@type": "getMe"}); err != nil {
		t.Fatalf("Send after encoding error failed: %v", err)
	}
	obj, err := client.Receive(time.Second)
	if err != nil || obj.Type() != "getMe" {
		t.Fatalf("Receive after encoding error = %v, %v", obj, err)
	}
}

func TestReceiveDecodingError(t *testing.T) {
	client, lib := openLoopback(t, tdjson.Config{})
	defer client.Close()

	for _, raw := range []string{"not json", "[1,2]", "null", `{"a":1} {"b":2}`, `"text"`} {
		lib.Inject(firstHandle, []byte(raw))
		if _, err := client.Receive(time.Second); !errors.Is(err, tdjson.ErrDecoding) {
			t.Errorf("Receive(%q) = %v, want ErrDecoding", raw, err)
		}
	}

	lib.Inject(firstHandle, []byte(`{"@type":"updateOption"}`))
	obj, err := client.Receive(time.Second)
	if err != nil || obj.Type() != "updateOption" {
		t.Fatalf("Receive after decoding error = %v, %v", obj, err)
	}
}

func TestExecute(t *testing.T) {
	client, lib := openLoopback(t, tdjson.Config{})
	defer client.Close()

	obj, err := client.Execute(tdjson.Object{"@type": "getMe"})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if obj != nil {
		t.Fatalf("Execute of asynchronous-only request = %v, want nil", obj)
	}

	lib.AllowSynchronous("getTextEntities")
	obj, err = client.Execute(tdjson.Object{"@type": "getTextEntities", "text": "@telegram"})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if obj.Type() != "getTextEntities" || obj["text"] != "@telegram" {
		t.Fatalf("Execute = %v", obj)
	}
}

func TestNativeVersion(t *testing.T) {
	client, lib := openLoopback(t, tdjson.Config{})
	defer client.Close()
	lib.Version = "1.8.42"

	v, err := client.NativeVersion()
	if err != nil {
		t.Fatalf("NativeVersion failed: %v", err)
	}
	if v != "1.8.42" {
		t.Fatalf("NativeVersion = %q, want 1.8.42", v)
	}
}

func TestLogLevelApplied(t *testing.T) {
	for _, legacy := range []bool{true, false} {
		lib := loopback.New()
		lib.LegacyLogAPI = legacy

		client, err := tdjson.OpenNative(lib, tdjson.Config{LogLevel: 3, Logger: logging.Noop})
		if err != nil {
			t.Fatalf("OpenNative failed: %v", err)
		}
		if got := lib.LogLevel(); got != 3 {
			t.Errorf("legacy=%v: log level = %d, want 3", legacy, got)
		}
		_ = client.Close()
	}
}

func TestOpenNativeNil(t *testing.T) {
	if _, err := tdjson.OpenNative(nil, tdjson.Config{}); !errors.Is(err, tdjson.ErrLibraryLoad) {
		t.Fatalf("OpenNative(nil) = %v, want ErrLibraryLoad", err)
	}
}

func TestOpenMissingLibrary(t *testing.T) {
	client, err := tdjson.Open(tdjson.Config{LibraryPath: "/nonexistent/libtdjson.so", Logger: logging.Noop})
	if !errors.Is(err, tdjson.ErrLibraryLoad) {
		t.Fatalf("Open = %v, want ErrLibraryLoad", err)
	}
	var loadErr *tdjson.LoadError
	if !errors.As(err, &loadErr) || loadErr.Path != "/nonexistent/libtdjson.so" {
		t.Fatalf("Open error %v does not carry the library path", err)
	}
	if client != nil {
		t.Fatalf("expected nil client, got %+v", client)
	}
}
